package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/dumpling/pkg/adapters/memory"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/persistence/middleware"
	"github.com/aretw0/dumpling/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	ctx := context.Background()
	state := domain.NewState("s1")
	state.Contact = "me@example.com"
	state.CustomAnswers[1] = "my secret sadness"

	require.NoError(t, secure.Save(ctx, "s1", state))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, stored.Contact)
	assert.Empty(t, stored.CustomAnswers)
	assert.NotEmpty(t, stored.Envelope)
	assert.Equal(t, "s1", stored.SessionID)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", loaded.Contact)
	assert.Equal(t, "my secret sadness", loaded.CustomAnswers[1])
	assert.Empty(t, loaded.Envelope)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore())
	ports.RunStateStoreContract(t, secure)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	state := domain.NewState("rot")
	state.Answers[1] = "Joy"
	require.NoError(t, oldStore.Save(ctx, "rot", state))

	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err, "fallback key must decrypt old data")
	assert.Equal(t, "Joy", loaded.Answers[1])

	loaded.Answers[1] = "Sadness"
	require.NoError(t, newStore.Save(ctx, "rot", loaded))

	_, err = oldStore.Load(ctx, "rot")
	assert.Error(t, err, "old key alone must not decrypt data sealed with the new key")
}

func TestEncryptionMiddleware_RefusesPlainState(t *testing.T) {
	underlying := NewMockStore()
	require.NoError(t, underlying.Save(context.Background(), "plain", domain.NewState("plain")))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(context.Background(), "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKeys(t *testing.T) {
	a := hex.EncodeToString(generateKey(t))
	b := hex.EncodeToString(generateKey(t))

	cfg, err := middleware.ParseKeys(a + ", " + b)
	require.NoError(t, err)
	assert.Equal(t, a, hex.EncodeToString(cfg.ActiveKey))
	require.Len(t, cfg.FallbackKeys, 1)
	assert.Equal(t, b, hex.EncodeToString(cfg.FallbackKeys[0]))

	_, err = middleware.ParseKeys("")
	assert.Error(t, err)
	_, err = middleware.ParseKeys("zz")
	assert.Error(t, err)
	_, err = middleware.ParseKeys(strings.Repeat("ab", 16))
	assert.Error(t, err)
}
