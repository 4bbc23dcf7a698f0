// Package memorystate 提供进程内的 KVStore 实现，用于本地开发和测试。
package memorystate

import (
	"context"
	"sync"
)

// KVStore 是一个并发安全的内存键值存储
type KVStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewKVStore 创建一个空的内存存储
func NewKVStore() *KVStore {
	return &KVStore{entries: make(map[string]string)}
}

func (s *KVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
	return nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}
