package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/dumpling"
	"github.com/aretw0/dumpling/pkg/adapters/file"
	"github.com/aretw0/dumpling/pkg/adapters/memory"
	"github.com/aretw0/dumpling/pkg/adapters/notify"
	"github.com/aretw0/dumpling/pkg/adapters/printer"
	"github.com/aretw0/dumpling/pkg/adapters/redis"
	"github.com/aretw0/dumpling/pkg/catalog"
	"github.com/aretw0/dumpling/pkg/domain"
	"github.com/aretw0/dumpling/pkg/observability"
	"github.com/aretw0/dumpling/pkg/persistence/middleware"
	"github.com/aretw0/dumpling/pkg/ports"
)

// Backend is the persistence side of a configuration: the session store with
// its middlewares applied, plus the redis collaborators when redis is used.
type Backend struct {
	Store    ports.StateStore
	Locker   ports.DistributedLocker
	Recorder ports.RecipeRecorder
	closer   io.Closer
}

// Close releases the backend connections.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// OpenBackend builds the configured store.
func (c Config) OpenBackend() (*Backend, error) {
	b := &Backend{}
	var base ports.StateStore

	switch c.Store {
	case StoreMemory, "":
		base = memory.NewStore()
	case StoreFile:
		base = file.New(c.SessionDir)
	case StoreRedis:
		client := redis.NewClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
		store := redis.NewFromClient(client, redis.WithTTL(c.RedisTTL))
		base = store
		b.Locker = redis.NewLocker(client, redis.DefaultPrefix)
		b.Recorder = redis.NewRecorder(client, redis.DefaultPrefix)
		b.closer = store
	default:
		return nil, fmt.Errorf("unknown store %q", c.Store)
	}

	var mws []middleware.Middleware
	if c.MaskPII {
		mws = append(mws, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	if c.EncryptionKeys != "" {
		keys, err := middleware.ParseKeys(c.EncryptionKeys)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("invalid encryption keys: %w", err)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(keys))
	}
	b.Store = middleware.Chain(base, mws...)
	return b, nil
}

// LoadCatalog returns the configured catalog, or the embedded one when no path is set.
func (c Config) LoadCatalog() (*domain.Catalog, error) {
	if c.CatalogPath == "" {
		return catalog.Default()
	}
	return catalog.Load(c.CatalogPath)
}

// WizardOptions translates the configuration into wizard options over b.
// The print channel writes cards to printOut.
func (c Config) WizardOptions(b *Backend, logger *slog.Logger, printOut io.Writer) ([]dumpling.Option, error) {
	cat, err := c.LoadCatalog()
	if err != nil {
		return nil, err
	}

	opts := []dumpling.Option{
		dumpling.WithCatalog(cat),
		dumpling.WithStore(b.Store),
		dumpling.WithLogger(logger),
		dumpling.WithMonitor(observability.NewGenerationMonitor(c.HistoryLimit)),
		dumpling.WithGenerateTimeout(c.GenerateTimeout),
	}
	if b.Locker != nil {
		opts = append(opts, dumpling.WithLocker(b.Locker))
	}
	if b.Recorder != nil {
		opts = append(opts, dumpling.WithRecorder(b.Recorder))
	}
	if c.NotifyURL != "" {
		opts = append(opts, dumpling.WithNotifier(notify.NewWebhook(c.NotifyURL)))
	}

	printOpts := []printer.Option{}
	if printOut != nil {
		printOpts = append(printOpts, printer.WithSink(printer.WriterSink(printOut)))
	}
	if c.PrintDir != "" {
		printOpts = append(printOpts, printer.WithDir(c.PrintDir))
	}
	opts = append(opts, dumpling.WithRenderer(printer.New(printOpts...)))
	return opts, nil
}

// NewWizard opens the backend and builds a wizard from it. The caller closes
// the returned backend when done. extra options are applied last.
func (c Config) NewWizard(logger *slog.Logger, printOut io.Writer, extra ...dumpling.Option) (*dumpling.Wizard, *Backend, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	b, err := c.OpenBackend()
	if err != nil {
		return nil, nil, err
	}
	opts, err := c.WizardOptions(b, logger, printOut)
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	w, err := dumpling.New(append(opts, extra...)...)
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	return w, b, nil
}
