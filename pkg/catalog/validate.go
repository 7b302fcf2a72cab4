package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// ValidationError lists every problem found in a catalog.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid catalog: " + strings.Join(e.Issues, "; ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints of every step and the cross-step rules:
// content identifiers are unique, option values are unique per step, and a
// question's custom option is one of its options.
func Validate(c *domain.Catalog) error {
	var issues []string
	add := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if len(c.Content) == 0 {
		add("content must contain at least one step")
	}

	for i, step := range c.Intro {
		if err := validate.Struct(step); err != nil {
			for _, msg := range fieldIssues(err) {
				add("intro[%d] (%s): %s", i, step.Kind(), msg)
			}
		}
	}

	seen := make(map[int]int, len(c.Content))
	for i, step := range c.Content {
		if err := validate.Struct(step); err != nil {
			for _, msg := range fieldIssues(err) {
				add("content[%d] (%s): %s", i, step.Kind(), msg)
			}
		}

		id := step.StepID()
		if prev, dup := seen[id]; dup {
			add("content[%d]: id %d already used by content[%d]", i, id, prev)
		} else {
			seen[id] = i
		}

		switch s := step.(type) {
		case domain.QuestionStep:
			checkOptions(i, s.Options, add)
			if s.CustomOption != "" && !s.HasOption(s.CustomOption) {
				add("content[%d]: custom option %q is not one of the options", i, s.CustomOption)
			}
		case domain.TimelineStep:
			checkOptions(i, s.Options, add)
		case domain.ControlsStep:
			for _, ctl := range s.Controls {
				switch ctl.Type {
				case domain.ControlRange:
					if ctl.Min >= ctl.Max {
						add("content[%d]: control %q needs min < max", i, ctl.Name)
					}
				case domain.ControlChoice:
					if len(ctl.Choices) == 0 {
						add("content[%d]: control %q needs choices", i, ctl.Name)
					}
				case domain.ControlToggle:
				}
			}
		case domain.ExplanationStep:
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func checkOptions(i int, opts []domain.Option, add func(string, ...any)) {
	values := make(map[string]bool, len(opts))
	for _, o := range opts {
		if values[o.Value] {
			add("content[%d]: duplicate option %q", i, o.Value)
		}
		values[o.Value] = true
	}
}

func fieldIssues(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return out
}
