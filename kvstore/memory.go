package kvstore

import (
	"context"
	"sync"
)

type memoryBackend struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewMemory creates a Backend held in process memory.
func NewMemory() Backend {
	return &memoryBackend{values: make(map[string]string)}
}

func (b *memoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	val, ok := b.values[key]
	return val, ok, nil
}

func (b *memoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.values[key] = value
	return nil
}

func (b *memoryBackend) Close() error {
	return nil
}
