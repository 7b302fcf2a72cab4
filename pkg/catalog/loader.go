package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"reflect"

	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// document is the raw shape of a catalog file before variant decoding.
type document struct {
	Intro   []map[string]any `yaml:"intro"`
	Content []map[string]any `yaml:"content"`
}

// Default returns the embedded dumpling catalog.
func Default() (*domain.Catalog, error) {
	return Parse(defaultCatalog)
}

// MustDefault is like Default but panics on error.
// The embedded catalog is covered by tests, so this only fails on a broken build.
func MustDefault() *domain.Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads and validates a catalog file.
func Load(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*domain.Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	c := &domain.Catalog{
		Intro:   make([]domain.IntroStep, 0, len(doc.Intro)),
		Content: make([]domain.ContentStep, 0, len(doc.Content)),
	}

	for i, raw := range doc.Intro {
		step, err := decodeIntro(raw)
		if err != nil {
			return nil, fmt.Errorf("intro[%d]: %w", i, err)
		}
		c.Intro = append(c.Intro, step)
	}
	for i, raw := range doc.Content {
		step, err := decodeContent(raw)
		if err != nil {
			return nil, fmt.Errorf("content[%d]: %w", i, err)
		}
		c.Content = append(c.Content, step)
	}

	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeIntro(raw map[string]any) (domain.IntroStep, error) {
	kind, fields, err := splitKind(raw)
	if err != nil {
		return nil, err
	}

	switch domain.IntroKind(kind) {
	case domain.IntroHero:
		var s domain.HeroIntro
		err := decode(fields, &s)
		return s, err
	case domain.IntroExplanation:
		var s domain.ExplanationIntro
		err := decode(fields, &s)
		return s, err
	case domain.IntroQuote:
		var s domain.QuoteIntro
		err := decode(fields, &s)
		return s, err
	}
	return nil, fmt.Errorf("unknown intro kind %q", kind)
}

func decodeContent(raw map[string]any) (domain.ContentStep, error) {
	kind, fields, err := splitKind(raw)
	if err != nil {
		return nil, err
	}

	switch domain.ContentKind(kind) {
	case domain.ContentQuestion:
		var s domain.QuestionStep
		err := decode(fields, &s)
		return s, err
	case domain.ContentExplanation:
		var s domain.ExplanationStep
		err := decode(fields, &s)
		return s, err
	case domain.ContentControls:
		var s domain.ControlsStep
		err := decode(fields, &s)
		return s, err
	case domain.ContentTimeline:
		var s domain.TimelineStep
		err := decode(fields, &s)
		return s, err
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}

func splitKind(raw map[string]any) (string, map[string]any, error) {
	kind, ok := raw["kind"].(string)
	if !ok || kind == "" {
		return "", nil, fmt.Errorf("missing kind")
	}
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != "kind" {
			fields[k] = v
		}
	}
	return kind, fields, nil
}

// decode maps a raw record onto a step variant using its yaml tags.
func decode(fields map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "yaml",
		ErrorUnused: true,
		DecodeHook:  titleHook,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(fields)
}

var titleType = reflect.TypeOf(domain.Title{})

// titleHook accepts both a scalar string and a list of strings for titles.
func titleHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != titleType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.Title{data.(string)}, nil
}
