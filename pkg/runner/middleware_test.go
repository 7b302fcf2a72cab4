package runner

import (
	"context"
	"testing"

	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockIOHandler struct {
	system []string
	inputs []string
}

func (m *mockIOHandler) Output(context.Context, Frame) error { return nil }

func (m *mockIOHandler) Input(context.Context) (string, error) {
	if len(m.inputs) == 0 {
		return "", nil
	}
	v := m.inputs[0]
	m.inputs = m.inputs[1:]
	return v, nil
}

func (m *mockIOHandler) SystemOutput(_ context.Context, msg string) error {
	m.system = append(m.system, msg)
	return nil
}

func TestConfirmationPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("allow", func(t *testing.T) {
		h := &mockIOHandler{inputs: []string{"Yes"}}
		ok, err := ConfirmationPolicy(h)(ctx, "a@b.co", []domain.Channel{domain.ChannelEmail})
		require.NoError(t, err)
		assert.True(t, ok)
		require.Len(t, h.system, 1)
		assert.Contains(t, h.system[0], "a@b.co")
	})

	t.Run("deny", func(t *testing.T) {
		h := &mockIOHandler{inputs: []string{"nope"}}
		ok, err := ConfirmationPolicy(h)(ctx, "a@b.co", nil)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("local channels are not asked", func(t *testing.T) {
		h := &mockIOHandler{}
		ok, err := ConfirmationPolicy(h)(ctx, "", []domain.Channel{domain.ChannelPrint, domain.ChannelSave})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, h.system)
	})
}

func TestMultiPolicy(t *testing.T) {
	deny := func(context.Context, string, []domain.Channel) (bool, error) { return false, nil }
	ok, err := MultiPolicy(AutoApprovePolicy(), deny)(context.Background(), "", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = MultiPolicy(AutoApprovePolicy(), AutoApprovePolicy())(context.Background(), "", nil)
	require.NoError(t, err)
	assert.True(t, ok)
}
