package ledger

import (
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// processedSignatures remembers the most recently committed transaction
// signatures, evicting the oldest once full
type processedSignatures struct {
	mu      sync.Mutex
	entries *linkedhashmap.Map
	max     int
}

func newProcessedSignatures(max int) *processedSignatures {
	if max < 1 {
		max = 1
	}

	return &processedSignatures{
		entries: linkedhashmap.New(),
		max:     max,
	}
}

func (p *processedSignatures) contains(signature string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.entries.Get(signature)
	return ok
}

func (p *processedSignatures) add(signature string, slot uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries.Put(signature, slot)

	for p.entries.Size() > p.max {
		it := p.entries.Iterator()
		if !it.Next() {
			return
		}
		p.entries.Remove(it.Key())
	}
}
