package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/dumpling/pkg/catalog"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	assert.Equal(t, 4, c.IntroCount())
	assert.Equal(t, 6, c.ContentCount())

	hero, ok := c.Intro[0].(domain.HeroIntro)
	require.True(t, ok)
	assert.Equal(t, "TRANSFORM EMOTIONS", hero.Title.String())
	assert.Equal(t, "READY TO FOLD?", c.Intro[3].Heading().String())

	q, ok := c.Content[0].(domain.QuestionStep)
	require.True(t, ok)
	assert.Equal(t, "Other", q.CustomOption)

	ctl, ok := c.Content[4].(domain.ControlsStep)
	require.True(t, ok)
	assert.Len(t, ctl.Controls, 5)
	assert.Equal(t, domain.ControlRange, ctl.Controls[0].Type)
	assert.Equal(t, 10, ctl.Controls[0].Max)
}

func TestParse_ScalarAndListTitles(t *testing.T) {
	c, err := catalog.Parse([]byte(`
intro:
  - kind: explanation
    title: Single
    description: d
    cta: Go
  - kind: explanation
    title: [Two, Parts]
    description: d
    cta: Go
content:
  - kind: explanation
    id: 1
    title: Only
`))
	require.NoError(t, err)
	assert.Equal(t, domain.Title{"Single"}, c.Intro[0].Heading())
	assert.Equal(t, "Two Parts", c.Intro[1].Heading().String())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "Unknown Kind",
			yaml: "content:\n  - kind: poll\n    id: 1\n",
			want: `unknown content kind "poll"`,
		},
		{
			name: "Missing Kind",
			yaml: "content:\n  - id: 1\n    title: x\n",
			want: "missing kind",
		},
		{
			name: "Unknown Field",
			yaml: "content:\n  - kind: explanation\n    id: 1\n    title: x\n    colour: red\n",
			want: "colour",
		},
		{
			name: "Custom Option Not Listed",
			yaml: "content:\n  - kind: question\n    id: 1\n    question: q\n    options: [{value: A}]\n    custom_option: Other\n",
			want: `custom option "Other" is not one of the options`,
		},
		{
			name: "Duplicate Ids",
			yaml: "content:\n  - kind: explanation\n    id: 1\n    title: a\n  - kind: explanation\n    id: 1\n    title: b\n",
			want: "id 1 already used",
		},
		{
			name: "Required Field",
			yaml: "content:\n  - kind: timeline\n    id: 2\n    options: [{value: A}]\n",
			want: "TimelineStep.Title",
		},
		{
			name: "Empty Content",
			yaml: "intro: []\n",
			want: "at least one step",
		},
		{
			name: "Bad Range",
			yaml: "content:\n  - kind: controls\n    id: 1\n    title: t\n    controls: [{name: heat, type: range, min: 5, max: 5}]\n",
			want: "needs min < max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CollectsAllIssues(t *testing.T) {
	err := catalog.Validate(&domain.Catalog{
		Content: []domain.ContentStep{
			domain.QuestionStep{ID: 1, Question: "q", Options: []domain.Option{{Value: "A"}, {Value: "A"}}},
			domain.ExplanationStep{ID: 1},
		},
	})
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 3)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content:\n  - kind: explanation\n    id: 1\n    title: x\n"), 0o644))

	c, err := catalog.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ContentCount())

	_, err = catalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
