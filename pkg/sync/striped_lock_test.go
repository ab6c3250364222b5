package sync

import (
	"fmt"
	"sync"
	base "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStripedLock_HappyPath(t *testing.T) {
	workerCount := 256
	operationCount := 100000

	l := NewStripedLock(4)

	var workerWg base.WaitGroup
	startChan := make(chan struct{}, 0)
	data := make([]int, workerCount)

	for i := 0; i < workerCount; i++ {
		workerWg.Add(1)

		go func(workerID int) {
			defer workerWg.Done()

			var opWg sync.WaitGroup
			key := []byte(fmt.Sprintf("worker%d", workerID))
			for j := 0; j < operationCount; j++ {
				opWg.Add(1)

				go func() {
					defer opWg.Done()

					select {
					case <-startChan:
					}

					mu := l.Get([]byte(key))
					mu.Lock()
					data[workerID]++
					mu.Unlock()
				}()
			}
			opWg.Wait()
		}(i)
	}

	close(startChan)
	workerWg.Wait()

	for _, val := range data {
		assert.EqualValues(t, operationCount, val)
	}
}

func TestStripedLock_LockAll(t *testing.T) {
	l := NewStripedLock(4)

	keys := make([][]byte, 16)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("account%d", i))
	}

	var wg base.WaitGroup
	counters := make([]int, len(keys))
	for i := 0; i < 64; i++ {
		wg.Add(1)

		go func(offset int) {
			defer wg.Done()

			for j := 0; j < 1000; j++ {
				// Overlapping writes and reads, with keys sharing stripes
				write := [][]byte{keys[offset%len(keys)], keys[(offset+j)%len(keys)]}
				read := [][]byte{keys[(offset+3)%len(keys)], keys[offset%len(keys)]}

				unlock := l.LockAll(write, read)
				counters[offset%len(keys)]++
				unlock()
			}
		}(i)
	}
	wg.Wait()

	var total int
	for _, counter := range counters {
		total += counter
	}
	assert.Equal(t, 64*1000, total)
}

func TestStripedLock_LockAllSharedReads(t *testing.T) {
	l := NewStripedLock(2)
	key := []byte("account")

	unlockFirst := l.LockAll(nil, [][]byte{key})
	unlockSecond := l.LockAll(nil, [][]byte{key, key})

	// Both readers hold the stripe, so a writer has to wait for them
	acquired := make(chan struct{})
	go func() {
		unlock := l.LockAll([][]byte{key}, nil)
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired a stripe held by readers")
	case <-time.After(50 * time.Millisecond):
	}

	unlockFirst()
	unlockSecond()
	<-acquired
}
