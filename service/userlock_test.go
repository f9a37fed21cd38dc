package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserLocksSerializesSameUser(t *testing.T) {
	locks := NewUserLocks()

	const workers = 8
	const iterations = 200
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				locks.Lock(1)
				counter++
				locks.Unlock(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*iterations, counter)
}

func TestUserLocksIndependentUsers(t *testing.T) {
	locks := NewUserLocks()
	locks.Lock(1)

	done := make(chan struct{})
	go func() {
		locks.Lock(2)
		locks.Unlock(2)
		close(done)
	}()

	// A second user's lock must not block behind the first.
	<-done
	locks.Unlock(1)
}

func TestUserLocksTableShrinks(t *testing.T) {
	locks := NewUserLocks()
	for id := int64(0); id < 100; id++ {
		locks.Lock(id)
		locks.Unlock(id)
	}
	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
