package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(underlying)

	ctx := context.Background()
	state := domain.NewState("pii")
	state.Contact = "jdoe@example.com"
	state.CustomAnswers[1] = "call me at +1 (555) 123-4567 or mail jdoe@example.com"
	state.CustomAnswers[3] = "bittersweet"

	require.NoError(t, secure.Save(ctx, "pii", state))

	assert.Equal(t, "jdoe@example.com", state.Contact, "caller state must not be modified")

	stored, err := underlying.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, stored.Contact)
	assert.Equal(t, "call me at *** or mail ***", stored.CustomAnswers[1])
	assert.Equal(t, "bittersweet", stored.CustomAnswers[3])
}

func TestChain_OrderAndComposition(t *testing.T) {
	underlying := NewMockStore()
	key := generateKey(t)
	store := middleware.Chain(underlying,
		middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	ctx := context.Background()
	state := domain.NewState("c1")
	state.Contact = "a@b.io"
	require.NoError(t, store.Save(ctx, "c1", state))

	raw, err := underlying.Load(ctx, "c1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Envelope)

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Contact)
}
