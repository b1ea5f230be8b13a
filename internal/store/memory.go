package store

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// Memory is an in-process store. Values never expire.
type Memory struct {
	cache *cache.Cache
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{cache: cache.New(cache.NoExpiration, 0)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, found := m.cache.Get(key)
	if !found {
		return nil, ErrNotFound
	}
	return clone(v.([]byte)), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.cache.Set(key, clone(value), cache.NoExpiration)
	return nil
}


func (m *Memory) Close() error { return nil }

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
