package services

import (
	"sync"

	"github.com/malusev998/currency"
)

// RateCache is an in-memory snapshot of code -> rate owned by one service.
type RateCache struct {
	mu    sync.RWMutex
	rates map[string]float64
}

// NewRateCache builds a snapshot from rows; later rows win on duplicate codes.
func NewRateCache(rows []currency.Rate) *RateCache {
	rates := make(map[string]float64, len(rows))

	for _, row := range rows {
		rates[row.Code] = row.Value
	}

	return &RateCache{rates: rates}
}

func (c *RateCache) Get(code string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rate, ok := c.rates[code]

	return rate, ok
}

// Pair reads both rates under one lock so a conversion never mixes snapshots.
func (c *RateCache) Pair(from, to string) (fromRate, toRate float64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fromRate, fromOk := c.rates[from]
	toRate, toOk := c.rates[to]

	return fromRate, toRate, fromOk && toOk
}

func (c *RateCache) Set(code string, rate float64) {
	c.mu.Lock()
	c.rates[code] = rate
	c.mu.Unlock()
}

func (c *RateCache) Delete(code string) {
	c.mu.Lock()
	delete(c.rates, code)
	c.mu.Unlock()
}

// Replace swaps the whole snapshot.
func (c *RateCache) Replace(rows []currency.Rate) {
	fresh := NewRateCache(rows)

	c.mu.Lock()
	c.rates = fresh.rates
	c.mu.Unlock()
}

func (c *RateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.rates)
}

// Snapshot returns a copy of the cached rates.
func (c *RateCache) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rates := make(map[string]float64, len(c.rates))

	for code, rate := range c.rates {
		rates[code] = rate
	}

	return rates
}
