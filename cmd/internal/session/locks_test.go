package session

import (
	"sync"
	"testing"
)

func TestLockArena_SerializesSameKey(t *testing.T) {
	t.Parallel()

	arena := newLockArena()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := arena.acquire("u1")
			counter++
			arena.release("u1", l)
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("counter: got=%d want=100", counter)
	}
}

func TestLockArena_ReleasesUnusedLocks(t *testing.T) {
	t.Parallel()

	arena := newLockArena()

	l1 := arena.acquire("u1")
	l2 := arena.acquire("u2")
	arena.release("u1", l1)
	arena.release("u2", l2)

	arena.mu.Lock()
	n := len(arena.locks)
	arena.mu.Unlock()
	if n != 0 {
		t.Fatalf("arena size after release: got=%d want=0", n)
	}
}

func TestLockArena_DistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	arena := newLockArena()

	l1 := arena.acquire("u1")
	done := make(chan struct{})
	go func() {
		l2 := arena.acquire("u2")
		arena.release("u2", l2)
		close(done)
	}()

	<-done
	arena.release("u1", l1)
}
