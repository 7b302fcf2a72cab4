package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/dumpling/pkg/domain"
)

// Verb is the action of a command line.
type Verb string

const (
	VerbNext     Verb = "next"
	VerbBack     Verb = "back"
	VerbReset    Verb = "reset"
	VerbAnswer   Verb = "answer"
	VerbCustom   Verb = "custom"
	VerbSet      Verb = "set"
	VerbContact  Verb = "contact"
	VerbGenerate Verb = "generate"
	VerbDeliver  Verb = "deliver"
	VerbHelp     Verb = "help"
	VerbQuit     Verb = "quit"
)

var aliases = map[string]Verb{
	"n": VerbNext, "next": VerbNext,
	"b": VerbBack, "back": VerbBack,
	"reset":  VerbReset,
	"answer": VerbAnswer, "a": VerbAnswer,
	"custom": VerbCustom, "c": VerbCustom,
	"set":     VerbSet,
	"contact": VerbContact, "email": VerbContact,
	"generate": VerbGenerate, "g": VerbGenerate, "cook": VerbGenerate,
	"deliver": VerbDeliver, "d": VerbDeliver,
	"help": VerbHelp, "h": VerbHelp, "?": VerbHelp,
	"quit": VerbQuit, "q": VerbQuit, "exit": VerbQuit,
}

// Command is a parsed command line.
type Command struct {
	Verb Verb
	// Text is the raw remainder after the verb.
	Text string
}

// ParseCommand reads a command line. An empty line means next, and a line
// that starts with no known verb is an answer.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Verb: VerbNext}
	}
	head, rest, _ := strings.Cut(line, " ")
	if verb, ok := aliases[strings.ToLower(head)]; ok {
		return Command{Verb: verb, Text: strings.TrimSpace(rest)}
	}
	return Command{Verb: VerbAnswer, Text: line}
}

var (
	errNoChoice     = errors.New("this step has nothing to choose")
	errNoControls   = errors.New("this step has no controls")
	errNoCustom     = errors.New("this step does not take a custom answer")
	errUnknownInput = errors.New("unknown choice")
)

// resolveOption maps a 1-based number, a value or a label (case-insensitive)
// to the option value of a question or timeline step.
func resolveOption(step domain.ContentStep, input string) (string, error) {
	var opts []domain.Option
	switch s := step.(type) {
	case domain.QuestionStep:
		opts = s.Options
	case domain.TimelineStep:
		opts = s.Options
	default:
		return "", errNoChoice
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(opts) {
			return "", fmt.Errorf("%w: pick a number between 1 and %d", errUnknownInput, len(opts))
		}
		return opts[n-1].Value, nil
	}
	for _, o := range opts {
		if strings.EqualFold(o.Value, input) || (o.Label != "" && strings.EqualFold(o.Label, input)) {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("%w %q", errUnknownInput, input)
}

// applyControls parses "name=value" pairs onto base, checking them against the
// controls of step.
func applyControls(step domain.ControlsStep, base domain.ControlValue, text string) (domain.ControlValue, error) {
	out := base.Clone()
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return out, errors.New("usage: set name=value ...")
	}

	specs := make(map[string]domain.ControlSpec, len(step.Controls))
	for _, ctl := range step.Controls {
		specs[ctl.Name] = ctl
	}

	for _, field := range fields {
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			return base, fmt.Errorf("expected name=value, got %q", field)
		}
		name = strings.ToLower(name)
		spec, ok := specs[name]
		if !ok {
			return base, fmt.Errorf("unknown control %q", name)
		}

		switch spec.Type {
		case domain.ControlRange:
			n, err := strconv.Atoi(value)
			if err != nil || n < spec.Min || n > spec.Max {
				return base, fmt.Errorf("%s must be a number between %d and %d", name, spec.Min, spec.Max)
			}
			if name == "temperature" {
				out.Temperature = n
			}
		case domain.ControlChoice:
			choice, err := pick(spec, value)
			if err != nil {
				return base, err
			}
			switch name {
			case "shape":
				out.Shape = choice
			case "flavor":
				out.Flavor = choice
			case "enhancer":
				out.Enhancer = choice
			}
		case domain.ControlToggle:
			var selected []string
			for _, v := range strings.Split(value, ",") {
				if v = strings.TrimSpace(v); v == "" {
					continue
				}
				choice, err := pick(spec, v)
				if err != nil {
					return base, err
				}
				selected = append(selected, choice)
			}
			if name == "dietary" {
				out.Dietary = selected
			}
		}
	}
	return out, nil
}

func pick(spec domain.ControlSpec, value string) (string, error) {
	// multi-word choices are typed with dashes or underscores
	normalized := strings.NewReplacer("_", " ", "-", " ").Replace(value)
	for _, c := range spec.Choices {
		if strings.EqualFold(c, value) || strings.EqualFold(c, normalized) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%s must be one of %s", spec.Name, strings.Join(spec.Choices, ", "))
}

// parseChannels reads a delivery channel list; none means every channel.
func parseChannels(text string) ([]domain.Channel, error) {
	var out []domain.Channel
	for _, f := range strings.FieldsFunc(text, func(r rune) bool { return r == ' ' || r == ',' }) {
		ch := domain.Channel(strings.ToLower(f))
		switch ch {
		case domain.ChannelPrint, domain.ChannelSave, domain.ChannelEmail:
			out = append(out, ch)
		default:
			return nil, fmt.Errorf("unknown channel %q (print, save, email)", f)
		}
	}
	return out, nil
}
