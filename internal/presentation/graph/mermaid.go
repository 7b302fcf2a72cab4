package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/dumpling/pkg/domain"
)

// Overlay marks the progress of a session on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// SubmitNode is the id of the node after the last content step.
const SubmitNode = "submit"

// NodeID returns the graph id of the step at pos.
func NodeID(c *domain.Catalog, pos domain.Position) string {
	if !pos.Started {
		return fmt.Sprintf("intro_%d", pos.IntroIndex)
	}
	step, ok := c.ContentAt(pos.ContentIndex)
	if !ok {
		return SubmitNode
	}
	return fmt.Sprintf("step_%d", step.StepID())
}

// OverlayFor marks every step before pos as visited and pos as current.
func OverlayFor(c *domain.Catalog, pos domain.Position) *Overlay {
	o := &Overlay{Current: NodeID(c, pos)}
	introDone := pos.IntroIndex
	if pos.Started {
		introDone = c.IntroCount()
	}
	for i := 0; i < introDone; i++ {
		o.Visited = append(o.Visited, fmt.Sprintf("intro_%d", i))
	}
	if pos.Started {
		for i := 0; i < pos.ContentIndex && i < c.ContentCount(); i++ {
			step, _ := c.ContentAt(i)
			o.Visited = append(o.Visited, fmt.Sprintf("step_%d", step.StepID()))
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the catalog's step sequence.
// Shapes follow the step kind:
// - Hero and submit: ((Circle))
// - Question and timeline (answer required): [/Parallelogram/]
// - Controls: [[Subroutine]]
// - Everything else: [Rectangle]
// Edges leaving a step that gates advancing are labelled "answered".
func GenerateMermaid(c *domain.Catalog, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	prev := ""
	for i, step := range c.Intro {
		id := fmt.Sprintf("intro_%d", i)
		opener, closer := "[", "]"
		if step.Kind() == domain.IntroHero {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label(step.Heading().String()), closer)
		if prev != "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		}
		prev = id
	}

	gated := false
	for i, step := range c.Content {
		id := fmt.Sprintf("step_%d", step.StepID())
		opener, closer := "[", "]"
		switch step.(type) {
		case domain.QuestionStep, domain.TimelineStep:
			opener, closer = "[/", "/]"
		case domain.ControlsStep:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%d. %s\"%s\n", id, opener, step.StepID(), label(stepTitle(step)), closer)

		switch {
		case prev == "":
		case i == 0:
			fmt.Fprintf(&sb, "    %s -. start .-> %s\n", prev, id)
		case gated:
			fmt.Fprintf(&sb, "    %s -- \"answered\" --> %s\n", prev, id)
		default:
			fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		}
		_, question := step.(domain.QuestionStep)
		_, timeline := step.(domain.TimelineStep)
		gated = question || timeline
		prev = id
	}

	fmt.Fprintf(&sb, "    %s((\"generate\"))\n", SubmitNode)
	if prev != "" {
		if gated {
			fmt.Fprintf(&sb, "    %s -- \"answered\" --> %s\n", prev, SubmitNode)
		} else {
			fmt.Fprintf(&sb, "    %s --> %s\n", prev, SubmitNode)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on both themes
		sb.WriteString("    classDef visited fill:#fef3c7,stroke:#b45309,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#fb923c,stroke:#c2410c,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
		}
	}
	return sb.String()
}

func stepTitle(step domain.ContentStep) string {
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
	return string(step.Kind())
}

// label escapes double quotes, which would end a Mermaid label.
func label(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
