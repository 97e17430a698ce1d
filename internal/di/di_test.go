package di

import (
	"errors"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codeoverview/internal/config"
	"github.com/dshills/codeoverview/internal/providers"
)

func TestRuntime_InvokeRunsModules(t *testing.T) {
	type service struct{ name string }

	rt := New(func(i Injector) error {
		do.ProvideValue(i, &service{name: "svc"})
		return nil
	})

	var got *service
	err := rt.Invoke(func(i Injector) error {
		var err error
		got, err = do.Invoke[*service](i)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "svc", got.name)
}

func TestRuntime_ModuleError(t *testing.T) {
	boom := errors.New("boom")
	called := false
	err := New(func(Injector) error { return boom }).Invoke(func(Injector) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Provider = "ollama"
	cfg.Cache.Dir = t.TempDir()
	cfg.Log.Level = "warn"
	return cfg
}

func TestNewRuntime_ResolvesServices(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.ProjectID = "proj"
	cfg.Store.AccessToken = "token"

	err := NewRuntime(cfg).Invoke(func(i Injector) error {
		got, err := ResolveConfig(i)
		require.NoError(t, err)
		assert.Equal(t, cfg, got)

		logger, err := ResolveLogger(i)
		require.NoError(t, err)
		assert.Equal(t, "warning", logger.GetLevel().String())

		c, err := ResolveCache(i)
		require.NoError(t, err)
		assert.False(t, c.Enabled())

		gen, err := ResolveGenerator(i)
		require.NoError(t, err)
		assert.Equal(t, "ollama", gen.Name())
		_, cached := gen.(*providers.Cached)
		assert.False(t, cached, "disabled cache leaves the generator unwrapped")

		st, err := ResolveStore(i)
		require.NoError(t, err)
		assert.NotNil(t, st)

		cl, err := ResolveClient(i)
		require.NoError(t, err)
		assert.NotNil(t, cl)
		return nil
	})
	require.NoError(t, err)
}

func TestNewRuntime_CachedGenerator(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = true

	err := NewRuntime(cfg).Invoke(func(i Injector) error {
		gen, err := ResolveGenerator(i)
		require.NoError(t, err)
		assert.IsType(t, &providers.Cached{}, gen)
		return nil
	})
	require.NoError(t, err)
}

func TestNewRuntime_StoreNotConfigured(t *testing.T) {
	err := NewRuntime(testConfig(t)).Invoke(func(i Injector) error {
		_, err := ResolveStore(i)
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestNewRuntime_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Provider = "nope"
	err := NewRuntime(cfg).Invoke(func(i Injector) error {
		_, err := ResolveGenerator(i)
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}
