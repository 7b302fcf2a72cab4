package domain

import "encoding/json"

// Catalog is the immutable, ordered set of steps a wizard walks through.
// It is loaded once at startup and shared read-only by every session.
type Catalog struct {
	Intro   []IntroStep
	Content []ContentStep
}

type taggedStep struct {
	Kind string `json:"kind"`
	Step any    `json:"step"`
}

// MarshalJSON tags every step with its kind, since the variants share no fields.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	out := struct {
		Intro   []taggedStep `json:"intro"`
		Content []taggedStep `json:"content"`
	}{
		Intro:   make([]taggedStep, 0, len(c.Intro)),
		Content: make([]taggedStep, 0, len(c.Content)),
	}
	for _, s := range c.Intro {
		out.Intro = append(out.Intro, taggedStep{Kind: string(s.Kind()), Step: s})
	}
	for _, s := range c.Content {
		out.Content = append(out.Content, taggedStep{Kind: string(s.Kind()), Step: s})
	}
	return json.Marshal(out)
}

// IntroCount returns the number of intro cards.
func (c *Catalog) IntroCount() int { return len(c.Intro) }

// ContentCount returns the number of content steps.
func (c *Catalog) ContentCount() int { return len(c.Content) }

// Total returns the number of steps across both phases.
func (c *Catalog) Total() int { return len(c.Intro) + len(c.Content) }

// IntroAt returns the intro card at index i.
func (c *Catalog) IntroAt(i int) (IntroStep, bool) {
	if i < 0 || i >= len(c.Intro) {
		return nil, false
	}
	return c.Intro[i], true
}

// ContentAt returns the content step at index i.
func (c *Catalog) ContentAt(i int) (ContentStep, bool) {
	if i < 0 || i >= len(c.Content) {
		return nil, false
	}
	return c.Content[i], true
}

// StepByID finds a content step by its identifier.
func (c *Catalog) StepByID(id int) (ContentStep, bool) {
	for _, s := range c.Content {
		if s.StepID() == id {
			return s, true
		}
	}
	return nil, false
}
