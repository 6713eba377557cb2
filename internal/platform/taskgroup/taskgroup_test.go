package taskgroup

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroupNeverExceedsWidth(t *testing.T) {
	g := New(3)
	var cur, peak int32
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			n := atomic.AddInt32(&cur, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&cur, -1)
			return nil
		})
	}
	if errs := g.Wait(); len(errs) != 0 {
		t.Fatalf("Wait: %v", errs)
	}
	if peak > 3 {
		t.Fatalf("peak concurrency %d exceeds width 3", peak)
	}
}

func TestGroupFailureDoesNotCancelSiblings(t *testing.T) {
	g := New(2)
	var ran int32
	for i := 0; i < 6; i++ {
		i := i
		g.Go(func() error {
			atomic.AddInt32(&ran, 1)
			if i%2 == 0 {
				return fmt.Errorf("unit %d failed", i)
			}
			return nil
		})
	}
	errs := g.Wait()
	if ran != 6 {
		t.Fatalf("ran %d units, want 6", ran)
	}
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3", len(errs))
	}
}

func TestGroupRunsUnitsConcurrentlyUpToWidth(t *testing.T) {
	g := New(3)
	var wg sync.WaitGroup
	wg.Add(3)
	release := make(chan struct{})
	for i := 0; i < 3; i++ {
		g.Go(func() error {
			wg.Done()
			<-release
			return nil
		})
	}
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("three units did not start concurrently")
	}
	close(release)
	g.Wait()
}
