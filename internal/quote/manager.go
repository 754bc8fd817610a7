// Package quote tracks the latest decoded BBO state per symbol.
package quote

import (
	"sort"
	"sync"
	"time"
)

// Manager manages all observed symbols
type Manager struct {
	quotes map[string]*Quote
	mu     sync.RWMutex
}

// NewManager creates a new quote manager
func NewManager() *Manager {
	return &Manager{
		quotes: make(map[string]*Quote),
	}
}

// GetOrCreate returns the quote for the given symbol, creating it if it doesn't exist
func (m *Manager) GetOrCreate(symbol string) *Quote {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q, exists := m.quotes[symbol]; exists {
		return q
	}

	q := NewQuote(symbol)
	m.quotes[symbol] = q
	return q
}

// Get returns the quote for the given symbol, or nil if it doesn't exist
func (m *Manager) Get(symbol string) *Quote {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.quotes[symbol]
}

// GetAll returns all quotes sorted by symbol
func (m *Manager) GetAll() []*Quote {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Quote, 0, len(m.quotes))
	for _, q := range m.quotes {
		result = append(result, q)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})

	return result
}

// Count returns the number of known symbols
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.quotes)
}

// Remove removes a symbol
func (m *Manager) Remove(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quotes, symbol)
}

// PruneStale removes all symbols that haven't received data within the timeout
func (m *Manager) PruneStale(timeout time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for symbol, q := range m.quotes {
		if q.IsStale(timeout) {
			delete(m.quotes, symbol)
			pruned++
		}
	}
	return pruned
}
