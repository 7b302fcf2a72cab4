// Package generator provides a deterministic ports.RecipeGenerator.
//
// The same submission always produces the same name, description, ingredients
// and image; only the recipe id and timestamp vary between calls.
package generator

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/ports"
	"github.com/google/uuid"
)

const (
	DefaultImageBaseURL = "https://images.dumpling.local/recipes"
	DefaultShareBaseURL = "https://dumpling.local/r"
)

var (
	fillings = []string{"shiitake", "napa cabbage", "chive", "pork belly", "shrimp", "tofu", "pumpkin", "kimchi"}
	folds    = map[string]string{
		"crescent": "Crescent",
		"pleated":  "Pleated",
		"round":    "Moon",
		"bundle":   "Purse",
	}
	heat = []string{"Whispered", "Gentle", "Warm", "Blazing"}
)

// Generator builds recipes from the answers of a finished session.
type Generator struct {
	imageBase string
	shareBase string
	newID     func() string
	now       func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithImageBaseURL sets the base of the generated image URL.
func WithImageBaseURL(base string) Option {
	return func(g *Generator) { g.imageBase = strings.TrimRight(base, "/") }
}

// WithShareBaseURL sets the base of the QR payload.
func WithShareBaseURL(base string) Option {
	return func(g *Generator) { g.shareBase = strings.TrimRight(base, "/") }
}

// WithIDFunc overrides recipe id generation.
func WithIDFunc(fn func() string) Option {
	return func(g *Generator) { g.newID = fn }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		imageBase: DefaultImageBaseURL,
		shareBase: DefaultShareBaseURL,
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ ports.RecipeGenerator = (*Generator)(nil)

// Generate implements ports.RecipeGenerator.
func (g *Generator) Generate(ctx context.Context, sub ports.Submission) (*domain.RecipeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := resolve(sub)
	if len(words) == 0 {
		return nil, fmt.Errorf("submission %s has no answers", sub.SessionID)
	}
	ctl := firstControls(sub.Controls)
	seed := fingerprint(words, ctl)

	name := fmt.Sprintf("%s %s %s Dumplings", heatWord(ctl.Temperature), capitalize(words[0]), foldWord(ctl.Shape))
	id := g.newID()

	return &domain.RecipeResult{
		ID:          id,
		Name:        name,
		Description: describe(words, ctl),
		Ingredients: ingredients(seed, ctl),
		ImageURL:    fmt.Sprintf("%s/%s-%08x.png", g.imageBase, slug(name), seed),
		QRPayload:   g.shareBase + "/" + url.PathEscape(id),
		CreatedAt:   g.now(),
	}, nil
}

// resolve returns the answer of every step in id order, with custom text
// taking the place of the selected option when present.
func resolve(sub ports.Submission) []string {
	ids := make([]int, 0, len(sub.Answers))
	for id := range sub.Answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	words := make([]string, 0, len(ids))
	for _, id := range ids {
		w := sub.Answers[id]
		if custom := strings.TrimSpace(sub.CustomAnswers[id]); custom != "" {
			w = custom
		}
		words = append(words, w)
	}
	return words
}

func firstControls(c domain.Controls) domain.ControlValue {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return domain.ControlValue{Temperature: 5}
	}
	sort.Ints(ids)
	return c[ids[0]]
}

func fingerprint(words []string, ctl domain.ControlValue) uint32 {
	h := fnv.New32a()
	for _, w := range words {
		_, _ = h.Write([]byte(strings.ToLower(w)))
		_, _ = h.Write([]byte{0})
	}
	fmt.Fprintf(h, "%d|%s|%s|%s|%s", ctl.Temperature, ctl.Shape, ctl.Flavor, ctl.Enhancer, strings.Join(ctl.Dietary, ","))
	return h.Sum32()
}

func heatWord(t int) string {
	switch {
	case t <= 2:
		return heat[0]
	case t <= 5:
		return heat[1]
	case t <= 8:
		return heat[2]
	default:
		return heat[3]
	}
}

func foldWord(shape string) string {
	if w, ok := folds[strings.ToLower(shape)]; ok {
		return w
	}
	return "Pleated"
}

func describe(words []string, ctl domain.ControlValue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Born from %s", strings.ToLower(words[0]))
	if len(words) > 1 {
		fmt.Fprintf(&b, " with a taste of %s", strings.ToLower(words[1]))
	}
	fmt.Fprintf(&b, ", folded at heat %d/10.", ctl.Temperature)
	if len(words) > 3 {
		fmt.Fprintf(&b, " Best shared with %s.", strings.ToLower(words[len(words)-1]))
	}
	return b.String()
}

func ingredients(seed uint32, ctl domain.ControlValue) []string {
	out := []string{"dumpling wrappers", fillings[seed%uint32(len(fillings))], "spring onion", "soy sauce"}

	vegan := false
	for _, d := range ctl.Dietary {
		if d == "vegan" {
			vegan = true
		}
	}
	if vegan {
		for i, ing := range out {
			if ing == "pork belly" || ing == "shrimp" {
				out[i] = "smoked tofu"
			}
		}
	}
	if ctl.Enhancer != "" {
		out = append(out, ctl.Enhancer)
	}
	if ctl.Flavor == "fiery" || ctl.Temperature > 8 {
		out = append(out, "dried chili")
	}
	return out
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
