// Package cache keeps recently computed predictions keyed by their exact
// feature vector.
package cache

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/sugarsignal/internal/domain/features"
	"github.com/okian/sugarsignal/pkg/metrics"
)

// DefaultSize is used when no size option is given.
const DefaultSize = 1024

// Key is the bit-exact form of one feature vector.
type Key [features.Count]uint64

// KeyOf converts a vector into a cache key. Distinct float bit patterns
// (including 0 and -0) produce distinct keys.
func KeyOf(vec []float64) (Key, error) {
	var k Key
	if len(vec) != features.Count {
		return k, fmt.Errorf("%w: got %d, want %d", ErrKeyWidth, len(vec), features.Count)
	}
	for i, v := range vec {
		k[i] = math.Float64bits(v)
	}
	return k, nil
}

// Predictions is a bounded LRU of labels. A nil *Predictions is a valid,
// always-missing cache.
type Predictions struct {
	lru *lru.Cache[Key, int]
}

// New creates a prediction cache. A size of zero returns nil, which disables
// caching.
func New(opts ...Option) (*Predictions, error) {
	o := &options{size: DefaultSize}
	for _, opt := range opts {
		opt(o)
	}
	if o.size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, o.size)
	}
	if o.size == 0 {
		return nil, nil //nolint:nilnil // nil cache means disabled
	}
	c, err := lru.New[Key, int](o.size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}
	return &Predictions{lru: c}, nil
}

// Get looks up the label stored for vec.
func (p *Predictions) Get(vec []float64) (int, bool) {
	if p == nil {
		return 0, false
	}
	k, err := KeyOf(vec)
	if err != nil {
		return 0, false
	}
	label, ok := p.lru.Get(k)
	if ok {
		metrics.RecordCacheHit()
	} else {
		metrics.RecordCacheMiss()
	}
	return label, ok
}

// Add stores label for vec, evicting the least recently used entry when full.
func (p *Predictions) Add(vec []float64, label int) {
	if p == nil {
		return
	}
	k, err := KeyOf(vec)
	if err != nil {
		return
	}
	p.lru.Add(k, label)
	metrics.UpdateCacheEntries(p.lru.Len())
}

// Len reports the number of cached entries.
func (p *Predictions) Len() int {
	if p == nil {
		return 0
	}
	return p.lru.Len()
}

// Purge drops every entry.
func (p *Predictions) Purge() {
	if p == nil {
		return
	}
	p.lru.Purge()
	metrics.UpdateCacheEntries(0)
}
