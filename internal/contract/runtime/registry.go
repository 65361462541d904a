package runtime

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"
)

// Registry tracks the contracts a host can route wasm queries to.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]Entry
	logger    *slog.Logger
}

// Entry holds a registered contract and its metadata.
type Entry struct {
	Address  string
	Label    string
	Creator  string
	Contract sdk.Contract

	// Instantiated is false until the contract's Instantiate succeeded.
	Instantiated   bool
	InstantiatedAt time.Time
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		contracts: make(map[string]Entry),
		logger:    logger,
	}
}

// Register adds contract under addr.
func (r *Registry) Register(addr, label string, contract sdk.Contract) error {
	if contract == nil {
		return fmt.Errorf("contract is required")
	}
	if err := ValidateAddress(addr); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contracts[addr]; exists {
		return fmt.Errorf("%w: %s", sdk.ErrContractAlreadyExists, addr)
	}
	r.contracts[addr] = Entry{Address: addr, Label: label, Contract: contract}

	r.logger.Info("registered contract",
		"contract_addr", addr,
		"name", contract.Name(),
		"label", label,
	)
	return nil
}

// Get returns the entry for addr.
func (r *Registry) Get(addr string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.contracts[addr]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", sdk.ErrContractNotFound, addr)
	}
	return entry, nil
}

// Unregister removes addr. Removing an unknown address is a no-op.
func (r *Registry) Unregister(addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contracts, addr)
}

// List returns all entries ordered by address.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.contracts))
	for _, e := range r.contracts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func (r *Registry) markInstantiated(addr, creator string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.contracts[addr]; ok {
		e.Creator = creator
		e.Instantiated = true
		e.InstantiatedAt = at
		r.contracts[addr] = e
	}
}
