package runtime

import (
	"strings"

	"github.com/aretw0/dumpling/pkg/domain"
)

// Navigator moves a Position through the two-phase step sequence of a Catalog.
//
// All operations are total: moves that would leave the valid range are absorbed
// as no-ops, and moves issued in the wrong phase are ignored. A Navigator is not
// safe for concurrent use; it belongs to the single session that owns the Position.
type Navigator struct {
	catalog *domain.Catalog
	pos     *domain.Position
}

// NewNavigator binds a navigator to a catalog and a position it will mutate.
func NewNavigator(catalog *domain.Catalog, pos *domain.Position) *Navigator {
	return &Navigator{catalog: catalog, pos: pos}
}

// Position returns a copy of the current cursor.
func (n *Navigator) Position() domain.Position {
	return *n.pos
}

// Phase returns the active phase.
func (n *Navigator) Phase() domain.Phase {
	return n.pos.Phase()
}

// AdvanceIntro moves to the next intro card, or enters the content phase
// from the last one.
func (n *Navigator) AdvanceIntro() {
	if n.pos.Started {
		return
	}
	if n.pos.IntroIndex < n.catalog.IntroCount()-1 {
		n.pos.IntroIndex++
		return
	}
	n.pos.Started = true
	n.pos.ContentIndex = 0
}

// RetreatIntro moves to the previous intro card. It never goes below zero.
func (n *Navigator) RetreatIntro() {
	if n.pos.Started {
		return
	}
	if n.pos.IntroIndex > 0 {
		n.pos.IntroIndex--
	}
}

// AdvanceContent moves to the next content step.
// The index may reach ContentCount(), the submit position, and stops there.
func (n *Navigator) AdvanceContent() {
	if !n.pos.Started {
		return
	}
	if n.pos.ContentIndex < n.catalog.ContentCount() {
		n.pos.ContentIndex++
	}
}

// RetreatContent moves to the previous content step. It never goes below zero.
func (n *Navigator) RetreatContent() {
	if !n.pos.Started {
		return
	}
	if n.pos.ContentIndex > 0 {
		n.pos.ContentIndex--
	}
}

// Advance dispatches to AdvanceIntro or AdvanceContent depending on the phase.
// It does not consult IsAdvanceAllowed; gating is the caller's decision.
func (n *Navigator) Advance() {
	if n.pos.Started {
		n.AdvanceContent()
		return
	}
	n.AdvanceIntro()
}

// Retreat dispatches to RetreatIntro or RetreatContent depending on the phase.
func (n *Navigator) Retreat() {
	if n.pos.Started {
		n.RetreatContent()
		return
	}
	n.RetreatIntro()
}

// Reset returns to the first intro card.
func (n *Navigator) Reset() {
	*n.pos = domain.Position{}
}

// Completed reports whether every content step has been passed.
func (n *Navigator) Completed() bool {
	return n.pos.Started && n.pos.ContentIndex >= n.catalog.ContentCount()
}

// IsAdvanceAllowed reports whether the content step at idx may be left forward
// given the recorded answers. Out-of-range indices are never blocked.
func (n *Navigator) IsAdvanceAllowed(idx int, answers domain.Answers, custom domain.CustomAnswers) bool {
	step, ok := n.catalog.ContentAt(idx)
	if !ok {
		return true
	}

	switch s := step.(type) {
	case domain.QuestionStep:
		answer, ok := answers[s.ID]
		if !ok {
			return false
		}
		if s.CustomOption != "" && answer == s.CustomOption {
			return strings.TrimSpace(custom[s.ID]) != ""
		}
		return true
	case domain.TimelineStep:
		_, ok := answers[s.ID]
		return ok
	case domain.ExplanationStep, domain.ControlsStep:
		return true
	}
	return true
}

// Progress returns the completed fraction of the whole sequence in [0, 1].
func (n *Navigator) Progress(hasResult bool) float64 {
	if hasResult {
		return 1
	}
	total := n.catalog.Total()
	if total == 0 {
		return 0
	}
	if !n.pos.Started {
		return float64(n.pos.IntroIndex) / float64(total)
	}
	done := n.catalog.IntroCount() + n.pos.ContentIndex
	if done > total {
		done = total
	}
	return float64(done) / float64(total)
}

// Title returns the heading of the current step, or "" when there is none.
func (n *Navigator) Title() string {
	if !n.pos.Started {
		step, ok := n.catalog.IntroAt(n.pos.IntroIndex)
		if !ok {
			return ""
		}
		return step.Heading().String()
	}

	step, ok := n.catalog.ContentAt(n.pos.ContentIndex)
	if !ok {
		return ""
	}
	switch s := step.(type) {
	case domain.QuestionStep:
		return s.Question
	case domain.ExplanationStep:
		return s.Title
	case domain.ControlsStep:
		return s.Title
	case domain.TimelineStep:
		return s.Title
	}
	return ""
}

// TitleVisible reports whether the title bar should be shown.
func (n *Navigator) TitleVisible(hasResult, generating bool) bool {
	if hasResult || generating {
		return false
	}
	if n.pos.Started {
		return true
	}
	step, ok := n.catalog.IntroAt(n.pos.IntroIndex)
	if !ok {
		return true
	}
	return step.Kind() != domain.IntroQuote
}

// CurrentIntro returns the intro card under the cursor, if in the intro phase.
func (n *Navigator) CurrentIntro() (domain.IntroStep, bool) {
	if n.pos.Started {
		return nil, false
	}
	return n.catalog.IntroAt(n.pos.IntroIndex)
}

// CurrentContent returns the content step under the cursor, if in the content phase.
func (n *Navigator) CurrentContent() (domain.ContentStep, bool) {
	if !n.pos.Started {
		return nil, false
	}
	return n.catalog.ContentAt(n.pos.ContentIndex)
}
