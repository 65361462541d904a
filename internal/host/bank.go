package host

import (
	"sort"
	"sync"

	"github.com/felixgeelhaar/babylon-bindings/internal/chain"
	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
)

// Bank holds account balances and answers bank queries.
type Bank struct {
	mu       sync.RWMutex
	balances map[string][]hostapi.Coin
}

func NewBank() *Bank {
	return &Bank{balances: make(map[string][]hostapi.Coin)}
}

// NewBankFromGenesis seeds a bank with the balances of g.
func NewBankFromGenesis(g *chain.Genesis) *Bank {
	b := NewBank()
	if g == nil {
		return b
	}
	for _, bal := range g.Balances {
		b.SetBalance(bal.Address, bal.Coins)
	}
	return b
}

// SetBalance replaces the coins held by addr, keeping them sorted by denom.
func (b *Bank) SetBalance(addr string, coins []hostapi.Coin) {
	cp := append([]hostapi.Coin(nil), coins...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Denom < cp[j].Denom })

	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[addr] = cp
}

// Balance returns the coin of denom held by addr, with a zero amount when
// there is none.
func (b *Bank) Balance(addr, denom string) hostapi.Coin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.balances[addr] {
		if c.Denom == denom {
			return c
		}
	}
	return hostapi.NewCoin(0, denom)
}

// AllBalances never returns nil so the reply encodes as an empty list.
func (b *Bank) AllBalances(addr string) []hostapi.Coin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := append([]hostapi.Coin{}, b.balances[addr]...)
	return out
}

func (b *Bank) query(q *hostapi.BankQuery) (any, error) {
	switch {
	case q.Balance != nil && q.AllBalances != nil:
		return nil, hostapi.NewInvalidRequest("bank query must set exactly one of balance, all_balances", nil)
	case q.Balance != nil:
		return hostapi.BalanceResponse{Amount: b.Balance(q.Balance.Address, q.Balance.Denom)}, nil
	case q.AllBalances != nil:
		return hostapi.AllBalanceResponse{Amount: b.AllBalances(q.AllBalances.Address)}, nil
	default:
		return nil, hostapi.NewUnsupportedRequest("bank")
	}
}
