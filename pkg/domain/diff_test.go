package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	base := func() *State {
		s := NewState("sess-1")
		s.Answers[1] = "Joy"
		return s
	}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		d := Diff(nil, base())
		require.NotNil(t, d)
		assert.Equal(t, "sess-1", d.SessionID)
		require.NotNil(t, d.Position)
		require.NotNil(t, d.Status)
		assert.Equal(t, StatusActive, *d.Status)
		require.Contains(t, d.Answers, 1)
		assert.Equal(t, "Joy", *d.Answers[1])
	})

	t.Run("No Changes", func(t *testing.T) {
		a := base()
		assert.Nil(t, Diff(a, a.Snapshot()))
	})

	t.Run("Position Change", func(t *testing.T) {
		a := base()
		b := a.Snapshot()
		b.Position.IntroIndex = 2
		d := Diff(a, b)
		require.NotNil(t, d)
		require.NotNil(t, d.Position)
		assert.Equal(t, 2, d.Position.IntroIndex)
		assert.Nil(t, d.Status)
		assert.Empty(t, d.Answers)
	})

	t.Run("Answer Modified And Deleted", func(t *testing.T) {
		a := base()
		a.Answers[2] = "Morning"
		b := a.Snapshot()
		b.Answers[1] = "Anger"
		delete(b.Answers, 2)
		d := Diff(a, b)
		require.NotNil(t, d)
		assert.Equal(t, "Anger", *d.Answers[1])
		v, ok := d.Answers[2]
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("Controls Changed Sorted", func(t *testing.T) {
		a := base()
		b := a.Snapshot()
		b.Controls[9] = ControlValue{Temperature: 3}
		b.Controls[4] = ControlValue{Shape: "moon"}
		d := Diff(a, b)
		require.NotNil(t, d)
		assert.Equal(t, []int{4, 9}, d.ControlsChanged)
	})

	t.Run("Result Set And Cleared", func(t *testing.T) {
		a := base()
		b := a.Snapshot()
		b.Result = &RecipeResult{ID: "r1", Name: "Joyful Gyoza"}
		b.Status = StatusCompleted
		d := Diff(a, b)
		require.NotNil(t, d)
		assert.Equal(t, "r1", d.Result.ID)
		assert.Equal(t, StatusCompleted, *d.Status)

		c := NewState("sess-1")
		d = Diff(b, c)
		require.NotNil(t, d)
		assert.True(t, d.ResultCleared)
	})
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Answers Omitted", func(t *testing.T) {
		s1 := NewState("s")
		s2 := s1.Snapshot()
		s2.Position.Started = true
		diff := Diff(s1, s2)
		require.NotNil(t, diff)

		bytes, err := json.Marshal(diff)
		require.NoError(t, err)
		assert.False(t, strings.Contains(string(bytes), `"answers"`), string(bytes))
	})

	t.Run("Deletions as Null", func(t *testing.T) {
		s1 := NewState("s")
		s1.Answers[3] = "Spicy"
		s2 := s1.Snapshot()
		delete(s2.Answers, 3)
		diff := Diff(s1, s2)
		require.NotNil(t, diff)

		bytes, err := json.Marshal(diff)
		require.NoError(t, err)
		assert.Contains(t, string(bytes), `"3":null`)
	})
}
