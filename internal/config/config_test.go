package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/dumpling/internal/config"
	"github.com/aretw0/dumpling/internal/logging"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func lookup(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv(lookup(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := config.FromEnv(lookup(map[string]string{
		"DUMPLING_STORE":            "redis",
		"DUMPLING_REDIS_ADDR":       "cache:6380",
		"DUMPLING_REDIS_DB":         "3",
		"DUMPLING_REDIS_TTL":        "2h",
		"DUMPLING_MASK_PII":         "true",
		"DUMPLING_PORT":             " 9090 ",
		"DUMPLING_LOG_LEVEL":        "",
		"DUMPLING_GENERATE_TIMEOUT": "5s",
	}))
	require.NoError(t, err)

	assert.Equal(t, config.StoreRedis, cfg.Store)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 2*time.Hour, cfg.RedisTTL)
	assert.True(t, cfg.MaskPII)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel, "empty values keep the default")
	assert.Equal(t, 5*time.Second, cfg.GenerateTimeout)
}

func TestFromEnv_ReportsEveryBadValue(t *testing.T) {
	_, err := config.FromEnv(lookup(map[string]string{
		"DUMPLING_PORT":      "eighty",
		"DUMPLING_MASK_PII":  "maybe",
		"DUMPLING_REDIS_TTL": "forever",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DUMPLING_PORT")
	assert.Contains(t, err.Error(), "DUMPLING_MASK_PII")
	assert.Contains(t, err.Error(), "DUMPLING_REDIS_TTL")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "DUMPLING_STORE=redis\nDUMPLING_HISTORY_LIMIT=7\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("DUMPLING_STORE", "file")
	t.Cleanup(func() { _ = os.Unsetenv("DUMPLING_HISTORY_LIMIT") })

	cfg, err := config.Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, config.StoreFile, cfg.Store, "environment wins over the file")
	assert.Equal(t, 7, cfg.HistoryLimit)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"unknown store", func(c *config.Config) { c.Store = "sqlite" }, "unknown store"},
		{"file without dir", func(c *config.Config) { c.Store = config.StoreFile; c.SessionDir = "" }, "session dir"},
		{"redis without addr", func(c *config.Config) { c.Store = config.StoreRedis; c.RedisAddr = "" }, "address"},
		{"bad port", func(c *config.Config) { c.Port = 70000 }, "out of range"},
		{"zero history", func(c *config.Config) { c.HistoryLimit = 0 }, "history limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOpenBackend_File(t *testing.T) {
	cfg := config.Default()
	cfg.Store = config.StoreFile
	cfg.SessionDir = t.TempDir()

	b, err := cfg.OpenBackend()
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, b.Store.Save(ctx, "s1", domain.NewState("s1")))
	assert.FileExists(t, filepath.Join(cfg.SessionDir, "s1.json"))
	assert.Nil(t, b.Locker)
	assert.Nil(t, b.Recorder)
}

func TestOpenBackend_RedisEncryptedAndMasked(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Store = config.StoreRedis
	cfg.RedisAddr = mr.Addr()
	cfg.EncryptionKeys = testKey
	cfg.MaskPII = true

	b, err := cfg.OpenBackend()
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.Locker)
	require.NotNil(t, b.Recorder)

	ctx := context.Background()
	state := domain.NewState("s1")
	state.Contact = "ana@example.com"
	require.NoError(t, b.Store.Save(ctx, "s1", state))

	raw, err := mr.Get("dumpling:session:s1")
	require.NoError(t, err)
	assert.False(t, strings.Contains(raw, "example.com"), "stored value must be opaque")

	loaded, err := b.Store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEqual(t, "ana@example.com", loaded.Contact)
	assert.Equal(t, "ana@example.com", state.Contact, "caller state is untouched")
}

func TestOpenBackend_BadKeys(t *testing.T) {
	cfg := config.Default()
	cfg.EncryptionKeys = "not-hex"
	_, err := cfg.OpenBackend()
	assert.ErrorContains(t, err, "invalid encryption keys")
}

func TestNewWizard(t *testing.T) {
	cfg := config.Default()
	var printed strings.Builder

	w, b, err := cfg.NewWizard(logging.NewNop(), &printed)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, cfg.HistoryLimit, w.Monitor().Limit())
	assert.Equal(t, 6, w.Catalog().ContentCount())

	cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, _, err = cfg.NewWizard(logging.NewNop(), nil)
	assert.ErrorContains(t, err, "failed to read catalog")
}

func TestFlags_ApplyOnlyChanged(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := config.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--store", "file", "--mask-pii", "--history-limit=5"}))

	fromEnv := config.Default()
	fromEnv.Store = config.StoreRedis
	fromEnv.LogLevel = "debug"

	cfg := flags.Apply(fromEnv)
	assert.Equal(t, config.StoreFile, cfg.Store, "flag wins over environment")
	assert.True(t, cfg.MaskPII)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, "debug", cfg.LogLevel, "unset flags keep the environment value")
}
