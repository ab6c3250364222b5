package sync

import (
	"sort"
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock is a partitioned locking mechanism that consistently maps a key
// space to a set of locks. This provides concurrent data access while also
// limiting the total memory footprint.
type StripedLock struct {
	locks []base.RWMutex
	ring  *stripeRing
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	return &StripedLock{
		locks: make([]base.RWMutex, stripes),
		ring:  newStripeRing(stripes, hashEntriesPerLock),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	return &l.locks[l.ring.stripe(key)]
}

// LockAll acquires the stripes covering the provided keys, exclusively for the
// write keys and shared for the read keys. A stripe needed for both is held
// exclusively. Stripes are acquired in index order so that concurrent callers
// with overlapping key sets cannot deadlock, and each stripe is acquired once
// even when several keys map to it. The returned func releases everything.
func (l *StripedLock) LockAll(writeKeys, readKeys [][]byte) func() {
	exclusive := make(map[int]bool)
	for _, key := range readKeys {
		exclusive[l.ring.stripe(key)] = false
	}
	for _, key := range writeKeys {
		exclusive[l.ring.stripe(key)] = true
	}

	stripes := make([]int, 0, len(exclusive))
	for stripe := range exclusive {
		stripes = append(stripes, stripe)
	}
	sort.Ints(stripes)

	for _, stripe := range stripes {
		if exclusive[stripe] {
			l.locks[stripe].Lock()
		} else {
			l.locks[stripe].RLock()
		}
	}

	return func() {
		for i := len(stripes) - 1; i >= 0; i-- {
			stripe := stripes[i]
			if exclusive[stripe] {
				l.locks[stripe].Unlock()
			} else {
				l.locks[stripe].RUnlock()
			}
		}
	}
}
