package config

import (
	"github.com/spf13/pflag"
)

// Flags binds the settings to command-line flags.
type Flags struct {
	fs     *pflag.FlagSet
	values Config
}

// BindFlags registers one flag per setting on fs, with the built-in defaults
// shown in the help text. Port is left to the commands that listen.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs, values: Default()}
	v := &f.values

	fs.StringVar(&v.CatalogPath, "catalog", v.CatalogPath, "YAML step catalog (default: embedded)")
	fs.StringVar(&v.Store, "store", v.Store, "session store: memory, file or redis")
	fs.StringVar(&v.SessionDir, "session-dir", v.SessionDir, "directory of the file store")
	fs.StringVar(&v.RedisAddr, "redis-addr", v.RedisAddr, "redis address")
	fs.StringVar(&v.RedisPassword, "redis-password", v.RedisPassword, "redis password")
	fs.IntVar(&v.RedisDB, "redis-db", v.RedisDB, "redis database")
	fs.DurationVar(&v.RedisTTL, "redis-ttl", v.RedisTTL, "session expiry in redis (0 keeps them)")
	fs.StringVar(&v.EncryptionKeys, "encryption-keys", v.EncryptionKeys, "comma-separated hex AES-256 keys, active first")
	fs.BoolVar(&v.MaskPII, "mask-pii", v.MaskPII, "mask contact and personal data before storing")
	fs.StringVar(&v.NotifyURL, "notify-url", v.NotifyURL, "email function endpoint")
	fs.StringVar(&v.PrintDir, "print-dir", v.PrintDir, "directory for temporary print files")
	fs.StringVar(&v.LogLevel, "log-level", v.LogLevel, "debug, info, warn or error")
	fs.IntVar(&v.HistoryLimit, "history-limit", v.HistoryLimit, "generation attempts kept in memory")
	fs.DurationVar(&v.GenerateTimeout, "generate-timeout", v.GenerateTimeout, "bound of one generation (0 disables)")
	return f
}

// Apply returns cfg with the flags set on the command line copied over it.
func (f *Flags) Apply(cfg Config) Config {
	v := f.values
	f.fs.VisitAll(func(fl *pflag.Flag) {
		if !fl.Changed {
			return
		}
		switch fl.Name {
		case "catalog":
			cfg.CatalogPath = v.CatalogPath
		case "store":
			cfg.Store = v.Store
		case "session-dir":
			cfg.SessionDir = v.SessionDir
		case "redis-addr":
			cfg.RedisAddr = v.RedisAddr
		case "redis-password":
			cfg.RedisPassword = v.RedisPassword
		case "redis-db":
			cfg.RedisDB = v.RedisDB
		case "redis-ttl":
			cfg.RedisTTL = v.RedisTTL
		case "encryption-keys":
			cfg.EncryptionKeys = v.EncryptionKeys
		case "mask-pii":
			cfg.MaskPII = v.MaskPII
		case "notify-url":
			cfg.NotifyURL = v.NotifyURL
		case "print-dir":
			cfg.PrintDir = v.PrintDir
		case "log-level":
			cfg.LogLevel = v.LogLevel
		case "history-limit":
			cfg.HistoryLimit = v.HistoryLimit
		case "generate-timeout":
			cfg.GenerateTimeout = v.GenerateTimeout
		}
	})
	return cfg
}
