package di

import (
	"github.com/samber/do/v2"
)

// Injector is the dependency container handed to modules and handlers.
type Injector = do.Injector

// Module registers one or more providers.
type Module func(Injector) error

// Runtime builds a fresh injector from its modules for every invocation.
type Runtime struct {
	modules []Module
}

// New creates a runtime with the given modules.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke registers every module on a new injector, runs fn with it, and shuts
// the injector down afterwards.
func (r *Runtime) Invoke(fn func(Injector) error) error {
	injector := do.New()
	defer func() { _ = injector.Shutdown() }()

	for _, m := range r.modules {
		if err := m(injector); err != nil {
			return err
		}
	}
	return fn(injector)
}
