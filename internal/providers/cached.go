package providers

import (
	"context"

	"github.com/dshills/codeoverview/internal/cache"
)

// Cached serves repeated prompts from a completion cache.
type Cached struct {
	next  Generator
	model string
	cache *cache.Cache
}

// NewCached wraps g. When c is nil or disabled, g is returned unchanged.
func NewCached(g Generator, model string, c *cache.Cache) Generator {
	if !c.Enabled() {
		return g
	}
	return &Cached{next: g, model: model, cache: c}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Generate(ctx context.Context, p Prompt) (Completion, error) {
	key := cache.BuildKey(c.next.Name(), c.model, p.System, p.User)
	if text, ok := c.cache.Get(key); ok {
		return Completion{Text: text}, nil
	}
	resp, err := c.next.Generate(ctx, p)
	if err != nil {
		return Completion{}, err
	}
	// A failed write only costs a future cache miss.
	_ = c.cache.Put(key, resp.Text)
	return resp, nil
}
