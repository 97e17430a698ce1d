package di

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"

	"github.com/dshills/codeoverview/internal/cache"
	"github.com/dshills/codeoverview/internal/client"
	"github.com/dshills/codeoverview/internal/config"
	"github.com/dshills/codeoverview/internal/providers"
	"github.com/dshills/codeoverview/internal/store"
)

// ResolveConfig retrieves the effective configuration.
func ResolveConfig(i Injector) (config.Config, error) {
	cfg, err := do.Invoke[config.Config](i)
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve config dependency: %w", err)
	}
	return cfg, nil
}

// ResolveLogger retrieves the logger.
func ResolveLogger(i Injector) (*logrus.Logger, error) {
	l, err := do.Invoke[*logrus.Logger](i)
	if err != nil {
		return nil, fmt.Errorf("resolve logger dependency: %w", err)
	}
	return l, nil
}

// ResolveCache retrieves the completion cache.
func ResolveCache(i Injector) (*cache.Cache, error) {
	c, err := do.Invoke[*cache.Cache](i)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dependency: %w", err)
	}
	return c, nil
}

// ResolveGenerator retrieves the generation model client.
func ResolveGenerator(i Injector) (providers.Generator, error) {
	g, err := do.Invoke[providers.Generator](i)
	if err != nil {
		return nil, fmt.Errorf("resolve generator dependency: %w", err)
	}
	return g, nil
}

// ResolveStore retrieves the document store client.
func ResolveStore(i Injector) (*store.Client, error) {
	s, err := do.Invoke[*store.Client](i)
	if err != nil {
		return nil, fmt.Errorf("resolve store dependency: %w", err)
	}
	return s, nil
}

// ResolveClient retrieves the endpoint client.
func ResolveClient(i Injector) (*client.Client, error) {
	c, err := do.Invoke[*client.Client](i)
	if err != nil {
		return nil, fmt.Errorf("resolve client dependency: %w", err)
	}
	return c, nil
}
