package adapter

import (
	"context"
	"time"

	"quizhub/internal/domain"
)

// NoopCache is used when no Redis address is configured: every read misses
// and writes are dropped.
type NoopCache struct{}

func NewNoopCache() domain.Cache {
	return NoopCache{}
}

func (NoopCache) Get(context.Context, string) (string, error) {
	return "", domain.ErrCacheMiss
}

func (NoopCache) Set(context.Context, string, string, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, string) error { return nil }

func (NoopCache) Ping(context.Context) error { return nil }
