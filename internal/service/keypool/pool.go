package keypool

import (
	"fmt"
	"sync"
)

// Pool is a rotating pool of API keys. Rotation advances a cursor under a
// mutex so concurrent fetches never hand out a stale index; the cursor
// wraps and keys are never removed, a throttled key becomes usable again
// once the provider quota resets.
type Pool struct {
	name string
	keys []string

	mu     sync.Mutex
	cursor int
}

// New creates a named key pool. The name identifies the pool in logs and
// rotation metrics.
func New(name string, keys []string) (*Pool, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("key pool %q: no keys configured", name)
	}
	copied := make([]string, len(keys))
	copy(copied, keys)
	return &Pool{name: name, keys: copied}, nil
}

// Name returns the pool's identifier.
func (p *Pool) Name() string {
	return p.name
}

// Size returns the number of keys in the pool.
func (p *Pool) Size() int {
	return len(p.keys)
}

// Current returns the key at the cursor.
func (p *Pool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keys[p.cursor]
}

// Rotate advances the cursor to the next key and returns it. The cursor
// wraps around at the end of the pool.
func (p *Pool) Rotate() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = (p.cursor + 1) % len(p.keys)
	return p.keys[p.cursor]
}
