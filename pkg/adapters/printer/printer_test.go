package printer_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/aretw0/dumpling/pkg/adapters/printer"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recipe = &domain.RecipeResult{
	ID:          "r-1",
	Name:        "Warm Joy Crescent Dumplings",
	Description: "Born from joy.",
	Ingredients: []string{"dumpling wrappers", "chive"},
	ImageURL:    "https://img.test/r-1.png",
	QRPayload:   "https://share.test/r-1",
}

func TestRender_WritesCardAndRemovesFile(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	var seen string

	r := printer.New(printer.WithDir(dir), printer.WithSink(func(ctx context.Context, path string, doc *ports.Document) error {
		seen = path
		_, err := os.Stat(path)
		require.NoError(t, err, "file must exist while the sink runs")
		return printer.WriterSink(&out)(ctx, path, doc)
	}))

	doc, err := r.Render(context.Background(), recipe)
	require.NoError(t, err)

	assert.Equal(t, recipe.Name, doc.Title)
	assert.Equal(t, printer.MIMEType, doc.MIMEType)
	assert.Equal(t, string(doc.Body), out.String())
	assert.Contains(t, out.String(), "# Warm Joy Crescent Dumplings")
	assert.Contains(t, out.String(), "- chive")
	assert.Contains(t, out.String(), "<https://share.test/r-1>")

	_, err = os.Stat(seen)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRender_RemovesFileOnSinkFailure(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("printer offline")

	r := printer.New(printer.WithDir(dir), printer.WithSink(func(context.Context, string, *ports.Document) error {
		return boom
	}))

	_, err := r.Render(context.Background(), recipe)
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRender_NilResult(t *testing.T) {
	_, err := printer.New(printer.WithDir(t.TempDir())).Render(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoResult)
}

func TestCard_OmitsEmptySections(t *testing.T) {
	card := printer.Card(&domain.RecipeResult{Name: "Plain"})
	assert.Equal(t, "# Plain\n\n", card)
}
