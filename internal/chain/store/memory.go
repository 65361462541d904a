package store

import (
	"context"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/felixgeelhaar/babylon-bindings/pkg/bindings"
)

var _ Store = (*Memory)(nil)

// Memory keeps chain state in maps.
type Memory struct {
	mu        sync.RWMutex
	byHeight  map[uint64]entry
	byHash    map[chainhash.Hash]uint64
	epoch     uint64
	finalized *bindings.FinalizedEpochInfo
	tip, base *uint64
}

type entry struct {
	hash chainhash.Hash
	info bindings.BtcBlockHeaderInfo
}

func NewMemory() *Memory {
	return &Memory{
		byHeight: make(map[uint64]entry),
		byHash:   make(map[chainhash.Hash]uint64),
	}
}

func (m *Memory) PutHeader(_ context.Context, hash chainhash.Hash, info bindings.BtcBlockHeaderInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byHeight[info.Height]; ok {
		if old.hash != hash {
			return ErrHeightTaken
		}
		return nil
	}
	m.byHeight[info.Height] = entry{hash: hash, info: info}
	m.byHash[hash] = info.Height

	h := info.Height
	if m.tip == nil || h > *m.tip {
		m.tip = &h
	}
	if m.base == nil || h < *m.base {
		m.base = &h
	}
	return nil
}

func (m *Memory) HeaderByHeight(_ context.Context, height uint64) (*bindings.BtcBlockHeaderInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookup(height), nil
}

func (m *Memory) HeaderByHash(_ context.Context, hash chainhash.Hash) (*bindings.BtcBlockHeaderInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	height, ok := m.byHash[hash]
	if !ok {
		return nil, nil
	}
	return m.lookup(height), nil
}

func (m *Memory) Tip(context.Context) (*bindings.BtcBlockHeaderInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tip == nil {
		return nil, nil
	}
	return m.lookup(*m.tip), nil
}

func (m *Memory) Base(context.Context) (*bindings.BtcBlockHeaderInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.base == nil {
		return nil, nil
	}
	return m.lookup(*m.base), nil
}

func (m *Memory) lookup(height uint64) *bindings.BtcBlockHeaderInfo {
	e, ok := m.byHeight[height]
	if !ok {
		return nil
	}
	info := e.info
	return &info
}

func (m *Memory) SetEpoch(_ context.Context, epoch uint64) error {
	m.mu.Lock()
	m.epoch = epoch
	m.mu.Unlock()
	return nil
}

func (m *Memory) CurrentEpoch(context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch, nil
}

func (m *Memory) SetFinalizedEpoch(_ context.Context, info bindings.FinalizedEpochInfo) error {
	m.mu.Lock()
	m.finalized = &info
	m.mu.Unlock()
	return nil
}

func (m *Memory) LatestFinalizedEpoch(context.Context) (*bindings.FinalizedEpochInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.finalized == nil {
		return nil, nil
	}
	info := *m.finalized
	return &info, nil
}
