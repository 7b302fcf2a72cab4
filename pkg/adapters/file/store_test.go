package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/dumpling/pkg/adapters/file"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StateStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Overwrite(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	state := domain.NewState("s1")
	require.NoError(t, store.Save(ctx, "s1", state))

	state.Position.IntroIndex = 2
	require.NoError(t, store.Save(ctx, "s1", state))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Position.IntroIndex)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_LoadRestoresMaps(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)

	doc := `{"session_id":"legacy","position":{"intro_index":1}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.json"), []byte(doc), 0o644))

	loaded, err := store.Load(context.Background(), "legacy")
	require.NoError(t, err)
	assert.NotNil(t, loaded.Answers)
	assert.NotNil(t, loaded.CustomAnswers)
	assert.NotNil(t, loaded.Controls)
}

func TestFileStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", domain.NewState("b")))
	require.NoError(t, store.Save(ctx, "a", domain.NewState("a")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-c-123.json"), []byte("{}"), 0o644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_EmptyID(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, "", domain.NewState("")), file.ErrEmptySessionID)
	_, err := store.Load(ctx, "")
	assert.ErrorIs(t, err, file.ErrEmptySessionID)
	assert.ErrorIs(t, store.Delete(ctx, ""), file.ErrEmptySessionID)
}
