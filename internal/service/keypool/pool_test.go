package keypool

import (
	"sync"
	"testing"
)

func TestNewRejectsEmptyPool(t *testing.T) {
	if _, err := New("primary", nil); err == nil {
		t.Fatal("expected error for empty pool")
	}
}

func TestRotateWrapsAround(t *testing.T) {
	p, err := New("primary", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := p.Current(); got != "a" {
		t.Fatalf("Current = %q, want a", got)
	}
	if got := p.Rotate(); got != "b" {
		t.Fatalf("Rotate = %q, want b", got)
	}
	if got := p.Rotate(); got != "c" {
		t.Fatalf("Rotate = %q, want c", got)
	}
	if got := p.Rotate(); got != "a" {
		t.Fatalf("Rotate = %q, want a after wrap", got)
	}
}

func TestSingleKeyRotatesToItself(t *testing.T) {
	p, err := New("benchmark", []string{"only"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := p.Rotate(); got != "only" {
		t.Fatalf("Rotate = %q, want only", got)
	}
}

func TestConcurrentRotate(t *testing.T) {
	p, err := New("primary", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Rotate()
		}()
	}
	wg.Wait()

	// 100 rotations over 3 keys lands on index 100 % 3 == 1.
	if got := p.Current(); got != "b" {
		t.Fatalf("Current after 100 rotations = %q, want b", got)
	}
}
