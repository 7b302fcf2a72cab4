package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/dumpling/pkg/adapters/printer"
	"github.com/aretw0/dumpling/pkg/domain"
)

// RenderMarkdown returns the markdown of the step under the cursor.
func RenderMarkdown(frame Frame) string {
	v := frame.View
	var b strings.Builder

	if v.Result != nil {
		b.WriteString(printer.Card(v.Result))
		b.WriteString("\n_deliver_ to print, save or email it, _reset_ to fold another.\n")
		return b.String()
	}
	if frame.State != nil && frame.State.Generating {
		b.WriteString("_Folding your dumplings..._\n")
		return b.String()
	}

	fmt.Fprintf(&b, "`%3.0f%%` ", v.Progress*100)
	if v.TitleVisible && v.Title != "" {
		fmt.Fprintf(&b, "**%s**", v.Title)
	}
	b.WriteString("\n\n")

	switch {
	case v.IntroStep != nil:
		renderIntro(&b, v.IntroStep)
	case v.ContentStep != nil:
		renderContent(&b, frame.State, v.ContentStep)
		if !v.CanAdvance {
			b.WriteString("\n_Answer to continue._\n")
		}
	case v.Completed:
		b.WriteString("## Ready to cook\n\nEvery step is done. Type _generate_ to fold your recipe, or _back_ to review.\n")
	}
	return b.String()
}

func renderIntro(b *strings.Builder, step domain.IntroStep) {
	switch s := step.(type) {
	case domain.HeroIntro:
		fmt.Fprintf(b, "# %s\n\n", s.Title)
		if s.Subtitle != "" {
			fmt.Fprintf(b, "### %s\n\n", s.Subtitle)
		}
		fmt.Fprintf(b, "%s\n\n", s.Description)
		fmt.Fprintf(b, "[%s]\n", s.CTA)
	case domain.ExplanationIntro:
		fmt.Fprintf(b, "## %s\n\n%s\n\n[%s]\n", s.Title, s.Description, s.CTA)
	case domain.QuoteIntro:
		fmt.Fprintf(b, "> %s\n", s.Quote)
		if s.Author != "" {
			fmt.Fprintf(b, ">\n> %s\n", s.Author)
		}
		fmt.Fprintf(b, "\n[%s]\n", s.CTA)
	}
}

func renderContent(b *strings.Builder, state *domain.State, step domain.ContentStep) {
	var answers domain.Answers
	var custom domain.CustomAnswers
	var controls domain.Controls
	if state != nil {
		answers, custom, controls = state.Answers, state.CustomAnswers, state.Controls
	}

	switch s := step.(type) {
	case domain.QuestionStep:
		if s.Subtitle != "" {
			fmt.Fprintf(b, "%s\n\n", s.Subtitle)
		}
		renderOptions(b, s.Options, answers[s.ID])
		if s.CustomOption != "" {
			fmt.Fprintf(b, "\n_custom <text>_ to answer %q in your own words.", s.CustomOption)
			if text := custom[s.ID]; text != "" {
				fmt.Fprintf(b, " Current: %q", text)
			}
			b.WriteString("\n")
		}
	case domain.TimelineStep:
		if s.Description != "" {
			fmt.Fprintf(b, "%s\n\n", s.Description)
		}
		renderOptions(b, s.Options, answers[s.ID])
	case domain.ExplanationStep:
		fmt.Fprintf(b, "%s\n", s.Description)
	case domain.ControlsStep:
		if s.Description != "" {
			fmt.Fprintf(b, "%s\n\n", s.Description)
		}
		current := controls[s.ID]
		for _, ctl := range s.Controls {
			fmt.Fprintf(b, "- **%s** (%s): %s\n", ctl.Name, describeControl(ctl), controlValue(current, ctl.Name))
		}
		b.WriteString("\n_set name=value_ to adjust.\n")
	}
}

func renderOptions(b *strings.Builder, opts []domain.Option, selected string) {
	for i, o := range opts {
		mark := " "
		if o.Value == selected {
			mark = "x"
		}
		label := o.Label
		if label == "" {
			label = o.Value
		}
		fmt.Fprintf(b, "%d. [%s] %s", i+1, mark, label)
		if o.Description != "" {
			fmt.Fprintf(b, " - %s", o.Description)
		}
		b.WriteString("\n")
	}
}

func describeControl(ctl domain.ControlSpec) string {
	switch ctl.Type {
	case domain.ControlRange:
		return fmt.Sprintf("%d-%d", ctl.Min, ctl.Max)
	case domain.ControlChoice, domain.ControlToggle:
		return strings.Join(ctl.Choices, "|")
	}
	return string(ctl.Type)
}

func controlValue(v domain.ControlValue, name string) string {
	switch name {
	case "temperature":
		return fmt.Sprint(v.Temperature)
	case "shape":
		return v.Shape
	case "flavor":
		return v.Flavor
	case "enhancer":
		return v.Enhancer
	case "dietary":
		return strings.Join(v.Dietary, ",")
	}
	return ""
}
