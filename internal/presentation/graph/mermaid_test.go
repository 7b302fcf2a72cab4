package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/dumpling/internal/presentation/graph"
	"github.com/aretw0/dumpling/pkg/catalog"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	c := catalog.MustDefault()
	out := graph.GenerateMermaid(c, nil)

	for _, want := range []string{
		"graph TD",
		`intro_0(("TRANSFORM EMOTIONS"))`,
		`intro_2["We fold what we cannot say into what we can share."]`,
		"intro_0 --> intro_1",
		"intro_3 -. start .-> step_1",
		`step_1[/"1. Which emotion is filling you right now?"/]`,
		`step_1 -- "answered" --> step_2`,
		"step_2 --> step_3",
		`step_5[["5. Tune your dumpling"]]`,
		`step_6 -- "answered" --> submit`,
		`submit(("generate"))`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	c := catalog.MustDefault()
	pos := domain.Position{Started: true, ContentIndex: 2}
	out := graph.GenerateMermaid(c, graph.OverlayFor(c, pos))

	assert.Contains(t, out, "class intro_3 visited;")
	assert.Contains(t, out, "class step_2 visited;")
	assert.Contains(t, out, "class step_3 current;")
	assert.NotContains(t, out, "class step_4 visited;")
	assert.Equal(t, 1, strings.Count(out, "current;"))
}

func TestNodeID(t *testing.T) {
	c := catalog.MustDefault()
	assert.Equal(t, "intro_1", graph.NodeID(c, domain.Position{IntroIndex: 1}))
	assert.Equal(t, "step_4", graph.NodeID(c, domain.Position{Started: true, ContentIndex: 3}))
	assert.Equal(t, graph.SubmitNode, graph.NodeID(c, domain.Position{Started: true, ContentIndex: c.ContentCount()}))
}
