package storage

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
	log  *logrus.Logger
}

// NewMemoryBackend returns a process-local backend. Values are lost on exit.
func NewMemoryBackend(logger *logrus.Logger) Backend {
	return &memoryBackend{
		data: make(map[string][]byte),
		log:  logger,
	}
}

func (m *memoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return clone(value), true, nil
}

func (m *memoryBackend) Set(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = clone(value)
	m.log.Debugf("Storage: memory set key %s (%d bytes)", key, len(value))
	return nil
}

func (m *memoryBackend) Remove(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.log.Debugf("Storage: memory removed key %s", key)
	return nil
}

func (m *memoryBackend) Update(_ context.Context, key string, fn UpdateFunc) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, found := m.data[key]
	next, remove, err := fn(clone(current), found)
	if err != nil {
		return err
	}
	if remove {
		delete(m.data, key)
		return nil
	}
	m.data[key] = clone(next)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
