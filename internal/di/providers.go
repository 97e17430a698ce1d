package di

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"

	"github.com/dshills/codeoverview/internal/auth"
	"github.com/dshills/codeoverview/internal/cache"
	"github.com/dshills/codeoverview/internal/client"
	"github.com/dshills/codeoverview/internal/config"
	"github.com/dshills/codeoverview/internal/logging"
	"github.com/dshills/codeoverview/internal/providers"
	"github.com/dshills/codeoverview/internal/redact"
	"github.com/dshills/codeoverview/internal/store"
)

// ErrStoreNotConfigured is returned when the store has no project or
// credentials.
var ErrStoreNotConfigured = errors.New("document store is not configured: set store.projectId and either store.accessToken or store.apiKey, store.email and store.password")

// NewRuntime constructs the container used by the commands: the given config
// and every service derived from it.
func NewRuntime(cfg config.Config) *Runtime {
	return New(
		provideConfig(cfg),
		provideLogger,
		provideHTTPClient,
		provideCache,
		provideGenerator,
		provideStore,
		provideRedactor,
		provideReviewClient,
	)
}

func provideConfig(cfg config.Config) Module {
	return func(i Injector) error {
		do.ProvideValue(i, cfg)
		return nil
	}
}

func provideLogger(i Injector) error {
	do.Provide(i, func(i Injector) (*logrus.Logger, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	})
	return nil
}

func provideHTTPClient(i Injector) error {
	do.Provide(i, func(Injector) (*http.Client, error) {
		return &http.Client{Timeout: 60 * time.Second}, nil
	})
	return nil
}

func provideCache(i Injector) error {
	do.Provide(i, func(i Injector) (*cache.Cache, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		return cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	})
	return nil
}

func provideGenerator(i Injector) error {
	do.Provide(i, func(i Injector) (providers.Generator, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		c, err := do.Invoke[*cache.Cache](i)
		if err != nil {
			return nil, err
		}
		gen, err := providers.New(cfg.Provider, cfg.Model)
		if err != nil {
			return nil, err
		}
		return providers.NewCached(gen, cfg.Model, c), nil
	})
	return nil
}

func provideStore(i Injector) error {
	do.Provide(i, func(i Injector) (*store.Client, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		if !cfg.Store.Configured() {
			return nil, ErrStoreNotConfigured
		}
		httpCli, err := do.Invoke[*http.Client](i)
		if err != nil {
			return nil, err
		}
		ts, err := auth.NewTokenSource(context.Background(), cfg.Store.Credentials(), httpCli)
		if err != nil {
			return nil, err
		}
		opts := []store.Option{store.WithHTTPClient(httpCli)}
		if cfg.Store.Collection != "" {
			opts = append(opts, store.WithCollection(cfg.Store.Collection))
		}
		if cfg.Store.BaseURL != "" {
			opts = append(opts, store.WithBaseURL(cfg.Store.BaseURL))
		}
		return store.New(cfg.Store.ProjectID, ts, opts...)
	})
	return nil
}

func provideRedactor(i Injector) error {
	do.Provide(i, func(i Injector) (*redact.Redactor, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		r := redact.New(cfg.Privacy.RedactPaths)
		r.Enabled = cfg.Privacy.RedactSecrets
		return r, nil
	})
	return nil
}

func provideReviewClient(i Injector) error {
	do.Provide(i, func(i Injector) (*client.Client, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		r, err := do.Invoke[*redact.Redactor](i)
		if err != nil {
			return nil, err
		}
		return client.New(cfg.Endpoints.Generate,
			client.WithChatURL(cfg.Endpoints.Chat),
			client.WithRedactor(r),
		), nil
	})
	return nil
}
