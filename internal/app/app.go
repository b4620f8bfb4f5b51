// Package app assembles the storefront from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/persist"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/store"
)

type App struct {
	Config config.Config
	Log    *slog.Logger

	KV       kv.Store
	Store    *store.Store
	Sync     *persist.Sync
	Notify   *notify.Queue
	Catalog  *catalog.Loader
	Search   *search.Service
	Checkout *checkout.Service
	Auth     *auth.Service
	Events   events.Publisher

	closers []func() error
}

func openKV(ctx context.Context, cfg config.Config) (kv.Store, func() error, error) {
	if cfg.StorageDriver == kv.DriverMemory {
		return kv.NewMemoryStore(), func() error { return nil }, nil
	}
	s, err := kv.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func newPublisher(cfg config.Config, log *slog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
}

// New opens storage, restores the persisted session and wires every service.
// The catalog is not fetched; call Catalog.Load when products are needed.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{Config: cfg, Log: log}

	kvs, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.KV = kvs
	a.closers = append(a.closers, closeKV)

	a.Events = newPublisher(cfg, log)
	a.closers = append(a.closers, a.Events.Close)

	a.Store = store.New(log)
	a.Sync = persist.New(a.Store, kvs, log)
	a.Sync.Restore(ctx)
	a.Sync.Start()
	a.closers = append(a.closers, func() error { a.Sync.Stop(); return nil })

	unsubscribe := a.Store.Subscribe(events.CartListener(a.Events, log))
	a.closers = append(a.closers, func() error { unsubscribe(); return nil })

	a.Notify = notify.NewQueue(log, cfg.NotificationDuration)
	a.closers = append(a.closers, func() error { a.Notify.ClearAll(); return nil })

	var index *search.ESIndex
	if cfg.ESURL != "" {
		index, err = search.NewESIndex(search.ESConfig{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		}, log)
		if err != nil {
			log.Warn("search_index_unavailable", "error", err)
			index = nil
		}
	}

	a.Catalog = &catalog.Loader{
		Client:     catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout),
		Store:      a.Store,
		Notify:     a.Notify,
		Selector:   catalog.BeautySelector,
		PriceScale: cfg.CatalogPriceScale,
		Limit:      cfg.CatalogLimit,
		Log:        log.With("component", "catalog"),
	}
	if index != nil {
		a.Catalog.Index = index
	}

	a.Search = &search.Service{
		Store:  a.Store,
		Recent: search.NewRecentSearches(ctx, kvs, log),
		Index:  index,
		Log:    log.With("component", "search"),
	}

	a.Checkout = &checkout.Service{
		Store:     a.Store,
		Notify:    a.Notify,
		Payer:     checkout.SimulatedPayer{Delay: cfg.PaymentDelay},
		Publisher: a.Events,
		Log:       log.With("component", "checkout"),
	}

	a.Auth = &auth.Service{
		Store:     a.Store,
		Sync:      a.Sync,
		KV:        kvs,
		Notify:    a.Notify,
		Publisher: a.Events,
		Tokens: auth.Tokens{
			Secret: cfg.SessionSecret,
			TTL:    cfg.SessionTTL,
			Issuer: cfg.ServiceName,
		},
		Log: log.With("component", "auth"),
	}

	log.Info("app_ready",
		"storage", cfg.StorageDriver,
		"search_index", index != nil,
		"events", len(cfg.KafkaBrokers) > 0,
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
