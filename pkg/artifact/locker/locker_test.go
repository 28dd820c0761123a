package locker

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestTryAcquireRelease(t *testing.T) {
	r := NewRegistry()

	if !r.TryAcquire("doc-1") {
		t.Fatal("first acquire failed")
	}
	if r.TryAcquire("doc-1") {
		t.Fatal("second acquire succeeded while held")
	}
	if !r.TryAcquire("doc-2") {
		t.Fatal("independent document blocked")
	}

	r.Release("doc-1")
	if !r.TryAcquire("doc-1") {
		t.Fatal("acquire after release failed")
	}
}

func TestReleaseUnheldIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Release("never-held")
	if r.Held("never-held") {
		t.Fatal("phantom lock")
	}
}

func TestExclusivityUnderContention(t *testing.T) {
	r := NewRegistry()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.TryAcquire("doc-1") {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
}
