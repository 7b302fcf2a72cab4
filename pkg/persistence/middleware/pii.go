package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/ports"
)

// Mask replaces personal data in stored states.
const Mask = "***"

// DefaultPIIPatterns match email addresses and phone numbers in free text.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d ()-]{7,}\d`,
}

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks personal data before it reaches the store: the contact
// address is replaced entirely and any match of patterns inside custom answers
// is replaced by Mask. Loads are passed through, so a masked contact cannot be
// used by the email channel afterwards.
func NewPIIMiddleware(patterns []string) Middleware {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: compiled}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	// The caller keeps using state, so mask a copy.
	masked := state.Snapshot()
	if masked.Contact != "" {
		masked.Contact = Mask
	}
	for id, text := range masked.CustomAnswers {
		for _, p := range m.patterns {
			text = p.ReplaceAllString(text, Mask)
		}
		masked.CustomAnswers[id] = text
	}
	return m.next.Save(ctx, sessionID, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
