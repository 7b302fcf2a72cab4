package runner_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/dumpling"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(lines ...string) *bytes.Buffer {
	return bytes.NewBufferString(strings.Join(lines, "\n") + "\n")
}

func run(t *testing.T, r *runner.Runner) *domain.State {
	t.Helper()
	type outcome struct {
		state *domain.State
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		s, err := r.Run(context.Background())
		done <- outcome{s, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		return res.state
	case <-time.After(5 * time.Second):
		t.Fatal("runner timed out")
		return nil
	}
}

func TestRunner_FullWalk(t *testing.T) {
	wiz, err := dumpling.New()
	require.NoError(t, err)

	in := script(
		"", "", "", "", // intro cards
		"2",                   // Sadness
		"",                    // explanation
		"custom smoky tears",  // flavor in own words
		"night",               // timeline
		"set temperature=9 shape=crescent dietary=vegan",
		"",
		"Friends",
		"generate",
		"contact cook@example.com",
		"deliver",
		"y",
		"quit",
	)
	out := &bytes.Buffer{}

	r := runner.NewRunner(wiz,
		runner.WithSessionID("walk"),
		runner.WithHandler(runner.NewTextHandler(in, out)),
	)
	state := run(t, r)

	require.NotNil(t, state.Result)
	assert.Equal(t, "Blazing Sadness Crescent Dumplings", state.Result.Name)
	assert.Equal(t, "Other", state.Answers[3])
	assert.Equal(t, "smoky tears", state.CustomAnswers[3])
	assert.Equal(t, []string{"vegan"}, state.Controls[5].Dietary)
	assert.Equal(t, "cook@example.com", state.Contact)

	text := out.String()
	assert.Contains(t, text, "TRANSFORM EMOTIONS")
	assert.Contains(t, text, "Which emotion is filling you right now?")
	assert.Contains(t, text, "Ready to cook")
	assert.Contains(t, text, "# Blazing Sadness Crescent Dumplings")
	assert.Contains(t, text, "Send the recipe by email to cook@example.com?")
	assert.Contains(t, text, "[ok] email: Recipe emailed to cook@example.com")
	assert.Contains(t, text, "[ok] print: Recipe sent to the printer")
}

func TestRunner_BlockedAdvanceIsReported(t *testing.T) {
	wiz, err := dumpling.New()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	r := runner.NewRunner(wiz,
		runner.WithSessionID("blocked"),
		runner.WithHandler(runner.NewTextHandler(script("", "", "", "", "", "9", "quit"), out)),
	)
	state := run(t, r)

	assert.True(t, state.Position.Started)
	assert.Equal(t, 0, state.Position.ContentIndex)
	assert.Contains(t, out.String(), "Answer this step before moving on.")
	assert.Contains(t, out.String(), "unknown choice")
}

func TestRunner_ResumesSession(t *testing.T) {
	wiz, err := dumpling.New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = wiz.Start(ctx, "resume")
	require.NoError(t, err)
	_, err = wiz.Next(ctx, "resume")
	require.NoError(t, err)

	r := runner.NewRunner(wiz,
		runner.WithSessionID("resume"),
		runner.WithHandler(runner.NewTextHandler(script("next"), &bytes.Buffer{})),
	)
	state := run(t, r)
	assert.Equal(t, 2, state.Position.IntroIndex)
}

func TestRunner_DeclinedEmailDelivery(t *testing.T) {
	wiz, err := dumpling.New()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	r := runner.NewRunner(wiz,
		runner.WithSessionID("declined"),
		runner.WithHandler(runner.NewTextHandler(script(
			"", "", "", "", "1", "", "2", "1", "", "1", "generate", "deliver email", "n",
		), out)),
	)
	state := run(t, r)

	require.NotNil(t, state.Result)
	assert.Contains(t, out.String(), "Delivery cancelled.")
	recipes, err := wiz.Recipes(context.Background(), "declined")
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestRunner_Headless(t *testing.T) {
	wiz, err := dumpling.New()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	r := runner.NewRunner(wiz,
		runner.WithHeadless(true),
		runner.WithHandler(runner.NewJSONHandler(script(`"next"`, "back"), out)),
	)
	state := run(t, r)
	assert.Equal(t, domain.Position{}, state.Position)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"intro_index":1`)
}
