// Package portfolio holds the ordered holdings list and its JSON export format.
package portfolio

import (
	"sync"

	"PortfolioTracker/internal/model"
)

// Portfolio is an ordered sequence of holdings with concurrency safety.
// Insertion order is display order; duplicate tickers are separate lots.
type Portfolio struct {
	mu       sync.RWMutex
	holdings []model.Holding
}

// New creates a Portfolio holding a copy of the given entries.
func New(holdings ...model.Holding) *Portfolio {
	p := &Portfolio{}
	p.holdings = append(p.holdings, holdings...)
	return p
}

// Holdings returns a copy of the current holdings.
func (p *Portfolio) Holdings() []model.Holding {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Holding, len(p.holdings))
	copy(out, p.holdings)
	return out
}

// Len returns the number of holdings.
func (p *Portfolio) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.holdings)
}

// Append adds a holding at the end.
func (p *Portfolio) Append(h model.Holding) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.holdings = append(p.holdings, h)
}

// Replace swaps the entire sequence in one step.
func (p *Portfolio) Replace(holdings []model.Holding) {
	next := make([]model.Holding, len(holdings))
	copy(next, holdings)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.holdings = next
}
