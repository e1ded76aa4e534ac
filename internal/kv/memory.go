// Package kv provides key-value backends for counter state.
package kv

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process store. It is safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	data      map[string]string
	readErr   error
	writeErr  error
	writeHits int
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value for key and whether it was present.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return "", false, m.readErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data[key] = value
	m.writeHits++
	return nil
}

// Put stores value under key, bypassing injected failures.
func (m *Memory) Put(key, value string) {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
}

// FailReads makes every Get return err until called again with nil.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// FailWrites makes every Set return err until called again with nil.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// Writes reports how many successful Set calls were made.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeHits
}

// Snapshot returns a copy of the stored data.
func (m *Memory) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.data)
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
