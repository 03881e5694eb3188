// Package mocks provides hand-written test doubles for geoquest interfaces.
package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aimd54/geoquest/internal/cache"
)

// MockCache is an in-memory mock implementation of the cache.Cache interface
// Used for testing without requiring a real Redis instance
type MockCache struct {
	data map[string]string
	mu   sync.RWMutex

	// GetErr, when set, is returned by every Get.
	GetErr error

	Gets int
	Sets int
}

// NewMockCache creates a new mock cache instance
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

// Get retrieves a value from the mock cache
func (m *MockCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Gets++
	if m.GetErr != nil {
		return "", m.GetErr
	}
	val, exists := m.data[key]
	if !exists {
		return "", cache.ErrMiss
	}
	return val, nil
}

// Set stores a value in the mock cache
func (m *MockCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sets++
	// Note: expiration is ignored in mock (no TTL implementation)
	m.data[key] = value
	return nil
}

// Del deletes keys from the mock cache
func (m *MockCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Keys returns the stored keys.
func (m *MockCache) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

// Health always reports healthy
func (m *MockCache) Health(_ context.Context) error {
	return nil
}

// Close is a no-op
func (m *MockCache) Close() error {
	return nil
}

// Clear clears all data from the mock cache
func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]string)
	m.Gets = 0
	m.Sets = 0
}

// ErrCacheDown is a convenience error for simulating an unreachable cache.
var ErrCacheDown = errors.New("cache unavailable")

var _ cache.Cache = (*MockCache)(nil)
