package cache

import (
	"context"
	"time"
)

// noopCache is used when Redis is disabled. Reads always miss and writes are
// dropped, so callers fall through to the database.
type noopCache struct{}

func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string) (string, error)               { return "", ErrCacheMiss }
func (noopCache) Set(context.Context, string, string, time.Duration) error  { return nil }
func (noopCache) Incr(context.Context, string) (int64, error)               { return 0, nil }
func (noopCache) Expire(context.Context, string, time.Duration) error       { return nil }
func (noopCache) GetJSON(context.Context, string, any) error                { return ErrCacheMiss }
func (noopCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (noopCache) Publish(context.Context, string, []byte) error             { return nil }
func (noopCache) IsTokenBlacklisted(context.Context, string) (bool, error)  { return false, nil }
func (noopCache) Ping(context.Context) error                                { return nil }
func (noopCache) Close() error                                              { return nil }

func (noopCache) Subscribe(context.Context, string) (<-chan []byte, func() error) {
	ch := make(chan []byte)
	closed := false
	return ch, func() error {
		if !closed {
			closed = true
			close(ch)
		}
		return nil
	}
}
