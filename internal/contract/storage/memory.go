package storage

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
)

// Memory keeps all contract state in process.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) ForContract(addr string) sdk.Storage {
	return &memoryStore{parent: m, addr: addr}
}

// Len reports how many keys addr has stored.
func (m *Memory) Len(addr string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[addr])
}

type memoryStore struct {
	parent *Memory
	addr   string
}

func (s *memoryStore) Get(_ context.Context, key []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()

	v, ok := s.parent.data[s.addr][string(key)]
	if !ok {
		return nil, sdk.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *memoryStore) Set(_ context.Context, key, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := checkValue(value); err != nil {
		return err
	}
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	ns, ok := s.parent.data[s.addr]
	if !ok {
		ns = make(map[string][]byte)
		s.parent.data[s.addr] = ns
	}
	ns[string(key)] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.data[s.addr], string(key))
	return nil
}
