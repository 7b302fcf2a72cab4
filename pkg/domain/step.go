package domain

import "strings"

// IntroKind identifies the variant of an intro card.
type IntroKind string

const (
	IntroHero        IntroKind = "hero"
	IntroExplanation IntroKind = "explanation"
	IntroQuote       IntroKind = "quote"
)

// ContentKind identifies the variant of a content step.
type ContentKind string

const (
	ContentQuestion    ContentKind = "question"
	ContentExplanation ContentKind = "explanation"
	ContentControls    ContentKind = "controls"
	ContentTimeline    ContentKind = "timeline"
)

// Title is a heading made of one or more parts.
// Multi-part titles are rendered joined by single spaces.
type Title []string

// String joins the title parts.
func (t Title) String() string {
	return strings.Join(t, " ")
}

// IntroStep is one card of the intro phase.
// The set of implementations is closed: HeroIntro, ExplanationIntro and QuoteIntro.
type IntroStep interface {
	Kind() IntroKind
	Heading() Title
	introStep()
}

// HeroIntro is the opening card.
type HeroIntro struct {
	Title       Title  `json:"title" yaml:"title" validate:"required,min=1"`
	Subtitle    string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Description string `json:"description" yaml:"description"`
	CTA         string `json:"cta" yaml:"cta" validate:"required"`
}

func (HeroIntro) Kind() IntroKind  { return IntroHero }
func (h HeroIntro) Heading() Title { return h.Title }
func (HeroIntro) introStep()       {}

// ExplanationIntro explains the concept before the questions start.
type ExplanationIntro struct {
	Title       Title  `json:"title" yaml:"title" validate:"required,min=1"`
	Description string `json:"description" yaml:"description" validate:"required"`
	CTA         string `json:"cta" yaml:"cta" validate:"required"`
}

func (ExplanationIntro) Kind() IntroKind  { return IntroExplanation }
func (e ExplanationIntro) Heading() Title { return e.Title }
func (ExplanationIntro) introStep()       {}

// QuoteIntro is a full-screen quote. Its heading is the quote itself.
type QuoteIntro struct {
	Quote  string `json:"quote" yaml:"quote" validate:"required"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
	CTA    string `json:"cta" yaml:"cta" validate:"required"`
}

func (QuoteIntro) Kind() IntroKind  { return IntroQuote }
func (q QuoteIntro) Heading() Title { return Title{q.Quote} }
func (QuoteIntro) introStep()       {}

// Option is a selectable answer of a question or timeline step.
type Option struct {
	Value       string `json:"value" yaml:"value" validate:"required"`
	Label       string `json:"label,omitempty" yaml:"label,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ControlType is the widget family of a control.
type ControlType string

const (
	ControlRange  ControlType = "range"
	ControlChoice ControlType = "choice"
	ControlToggle ControlType = "toggle"
)

// ControlSpec describes one adjustable control of a controls step.
type ControlSpec struct {
	Name    string      `json:"name" yaml:"name" validate:"required"`
	Type    ControlType `json:"type" yaml:"type" validate:"required,oneof=range choice toggle"`
	Min     int         `json:"min,omitempty" yaml:"min,omitempty"`
	Max     int         `json:"max,omitempty" yaml:"max,omitempty"`
	Choices []string    `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// ContentStep is one step of the content phase.
// The set of implementations is closed: QuestionStep, ExplanationStep,
// ControlsStep and TimelineStep.
type ContentStep interface {
	Kind() ContentKind
	StepID() int
	contentStep()
}

// QuestionStep asks the user to pick one option.
// When CustomOption is set, picking it requires a free-text answer as well.
type QuestionStep struct {
	ID           int      `json:"id" yaml:"id"`
	Question     string   `json:"question" yaml:"question" validate:"required"`
	Subtitle     string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Options      []Option `json:"options" yaml:"options" validate:"required,min=1,dive"`
	CustomOption string   `json:"custom_option,omitempty" yaml:"custom_option,omitempty"`
}

func (QuestionStep) Kind() ContentKind { return ContentQuestion }
func (q QuestionStep) StepID() int     { return q.ID }
func (QuestionStep) contentStep()      {}

// HasOption reports whether value is one of the step's options.
func (q QuestionStep) HasOption(value string) bool {
	return hasOption(q.Options, value)
}

// ExplanationStep is an informational interlude.
type ExplanationStep struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title" validate:"required"`
	Description string `json:"description" yaml:"description"`
}

func (ExplanationStep) Kind() ContentKind { return ContentExplanation }
func (e ExplanationStep) StepID() int     { return e.ID }
func (ExplanationStep) contentStep()      {}

// ControlsStep lets the user tune the recipe parameters.
type ControlsStep struct {
	ID          int           `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title" validate:"required"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Controls    []ControlSpec `json:"controls" yaml:"controls" validate:"dive"`
}

func (ControlsStep) Kind() ContentKind { return ContentControls }
func (c ControlsStep) StepID() int     { return c.ID }
func (ControlsStep) contentStep()      {}

// TimelineStep asks the user to place the moment on a timeline.
type TimelineStep struct {
	ID          int      `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Options     []Option `json:"options" yaml:"options" validate:"required,min=1,dive"`
}

func (TimelineStep) Kind() ContentKind { return ContentTimeline }
func (t TimelineStep) StepID() int     { return t.ID }
func (TimelineStep) contentStep()      {}

// HasOption reports whether value is one of the step's options.
func (t TimelineStep) HasOption(value string) bool {
	return hasOption(t.Options, value)
}

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}
