// Package config resolves the runtime settings of the dumpling commands.
//
// Values come from, in increasing priority: built-in defaults, a .env file,
// DUMPLING_* environment variables, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/dumpling/pkg/observability"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DUMPLING_"

// Config holds every setting a command may need.
type Config struct {
	CatalogPath string
	Store       string
	SessionDir  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// EncryptionKeys is a comma-separated list of hex AES-256 keys.
	// The first one encrypts; the others only decrypt.
	EncryptionKeys string
	MaskPII        bool

	NotifyURL string
	PrintDir  string

	LogLevel        string
	Port            int
	HistoryLimit    int
	GenerateTimeout time.Duration
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Store:           StoreMemory,
		SessionDir:      ".dumpling/sessions",
		RedisAddr:       "localhost:6379",
		LogLevel:        "info",
		Port:            8080,
		HistoryLimit:    observability.DefaultHistoryLimit,
		GenerateTimeout: 30 * time.Second,
	}
}

// Load reads envFile (when it exists) into the process environment and returns
// the defaults overlaid with DUMPLING_* variables. Variables already set in the
// environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv overlays the defaults with the variables found by lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	r := envReader{lookup: lookup}

	r.strVar("CATALOG", &cfg.CatalogPath)
	r.strVar("STORE", &cfg.Store)
	r.strVar("SESSION_DIR", &cfg.SessionDir)
	r.strVar("REDIS_ADDR", &cfg.RedisAddr)
	r.strVar("REDIS_PASSWORD", &cfg.RedisPassword)
	r.intVar("REDIS_DB", &cfg.RedisDB)
	r.durationVar("REDIS_TTL", &cfg.RedisTTL)
	r.strVar("ENCRYPTION_KEYS", &cfg.EncryptionKeys)
	r.boolVar("MASK_PII", &cfg.MaskPII)
	r.strVar("NOTIFY_URL", &cfg.NotifyURL)
	r.strVar("PRINT_DIR", &cfg.PrintDir)
	r.strVar("LOG_LEVEL", &cfg.LogLevel)
	r.intVar("PORT", &cfg.Port)
	r.intVar("HISTORY_LIMIT", &cfg.HistoryLimit)
	r.durationVar("GENERATE_TIMEOUT", &cfg.GenerateTimeout)

	if len(r.errs) > 0 {
		return cfg, errors.Join(r.errs...)
	}
	return cfg, nil
}

// Validate checks the values that cannot be caught by flag parsing.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want memory, file or redis)", c.Store))
	}
	if c.Store == StoreFile && c.SessionDir == "" {
		errs = append(errs, errors.New("file store needs a session dir"))
	}
	if c.Store == StoreRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("redis store needs an address"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.HistoryLimit < 1 {
		errs = append(errs, fmt.Errorf("history limit must be positive, got %d", c.HistoryLimit))
	}
	return errors.Join(errs...)
}

// LogValue hides secrets when the config is logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("catalog", c.CatalogPath),
		slog.String("store", c.Store),
		slog.String("session_dir", c.SessionDir),
		slog.String("redis_addr", c.RedisAddr),
		slog.Bool("encrypted", c.EncryptionKeys != ""),
		slog.Bool("mask_pii", c.MaskPII),
		slog.Bool("notify", c.NotifyURL != ""),
		slog.String("log_level", c.LogLevel),
	)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) get(key string) (string, bool) {
	v, ok := r.lookup(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *envReader) strVar(key string, dst *string) {
	if v, ok := r.get(key); ok && v != "" {
		*dst = v
	}
}

func (r *envReader) intVar(key string, dst *int) {
	v, ok := r.get(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = n
}

func (r *envReader) boolVar(key string, dst *bool) {
	v, ok := r.get(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = b
}

func (r *envReader) durationVar(key string, dst *time.Duration) {
	v, ok := r.get(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = d
}
