package service

import (
	"context"
	"time"
)

var _ Cache = (*fakeCache)(nil)

// fakeCache is a map-backed Cache so tests can observe what the services
// store and invalidate. TTLs are ignored.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	return f.data[key], nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeCache) contains(key string) bool {
	_, ok := f.data[key]
	return ok
}
