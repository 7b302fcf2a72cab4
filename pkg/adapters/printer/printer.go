// Package printer renders recipes as printable markdown cards.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/ports"
)

// MIMEType of the rendered card.
const MIMEType = "text/markdown"

// Sink receives the rendered card while its temporary file exists.
// The file is removed as soon as the sink returns.
type Sink func(ctx context.Context, path string, doc *ports.Document) error

// WriterSink copies the card file to w.
func WriterSink(w io.Writer) Sink {
	return func(ctx context.Context, path string, _ *ports.Document) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	}
}

// Renderer implements ports.DocumentRenderer.
type Renderer struct {
	dir  string
	sink Sink
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDir sets the directory for temporary card files. Defaults to os.TempDir().
func WithDir(dir string) Option {
	return func(r *Renderer) { r.dir = dir }
}

// WithSink sets the print surface.
func WithSink(s Sink) Option {
	return func(r *Renderer) { r.sink = s }
}

// New creates a Renderer. Without a sink the card is rendered and discarded.
func New(opts ...Option) *Renderer {
	r := &Renderer{sink: WriterSink(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.DocumentRenderer = (*Renderer)(nil)

// Render writes the card to a temporary file, passes it to the sink and
// removes the file on every path out of the call.
func (r *Renderer) Render(ctx context.Context, result *domain.RecipeResult) (*ports.Document, error) {
	if result == nil {
		return nil, domain.ErrNoResult
	}
	doc := &ports.Document{
		Title:    result.Name,
		MIMEType: MIMEType,
		Body:     []byte(Card(result)),
	}

	f, err := os.CreateTemp(r.dir, "recipe-*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to create print file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(doc.Body); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write print file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close print file: %w", err)
	}

	if err := r.sink(ctx, path, doc); err != nil {
		return nil, fmt.Errorf("print failed: %w", err)
	}
	return doc, nil
}

// Card returns the markdown recipe card.
func Card(result *domain.RecipeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", result.Name)
	if result.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", result.Description)
	}
	if len(result.Ingredients) > 0 {
		b.WriteString("## Ingredients\n\n")
		for _, ing := range result.Ingredients {
			fmt.Fprintf(&b, "- %s\n", ing)
		}
		b.WriteString("\n")
	}
	if result.ImageURL != "" {
		fmt.Fprintf(&b, "![%s](%s)\n\n", result.Name, result.ImageURL)
	}
	if result.QRPayload != "" {
		fmt.Fprintf(&b, "Scan to share: <%s>\n", result.QRPayload)
	}
	return b.String()
}
