// Package dedupe keeps one winning record per key while records stream in.
package dedupe

// Better reports whether candidate should replace current.
type Better[V any] func(candidate, current V) bool

// Keeper retains the best value seen for each key. Memory is proportional
// to the number of distinct keys; each Offer is O(1).
type Keeper[K comparable, V any] struct {
	index    map[K]int
	values   []V
	better   Better[V]
	offered  int
	replaced int
}

// NewKeeper creates a keeper that resolves conflicts with better.
func NewKeeper[K comparable, V any](better Better[V], opts ...Option) *Keeper[K, V] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Keeper[K, V]{
		index:  make(map[K]int, cfg.capacity),
		values: make([]V, 0, cfg.capacity),
		better: better,
	}
}

// Offer records v under k. It returns true when k was already present,
// whether or not v won.
func (d *Keeper[K, V]) Offer(k K, v V) bool {
	d.offered++
	if i, ok := d.index[k]; ok {
		if d.better(v, d.values[i]) {
			d.values[i] = v
			d.replaced++
		}
		return true
	}
	d.index[k] = len(d.values)
	d.values = append(d.values, v)
	return false
}

// Get returns the current winner for k.
func (d *Keeper[K, V]) Get(k K) (V, bool) {
	i, ok := d.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return d.values[i], true
}

// Values returns the winners in first-seen key order.
func (d *Keeper[K, V]) Values() []V {
	out := make([]V, len(d.values))
	copy(out, d.values)
	return out
}

// Size returns the number of distinct keys.
func (d *Keeper[K, V]) Size() int { return len(d.values) }

// Collapsed returns how many offers were folded into an existing key.
func (d *Keeper[K, V]) Collapsed() int { return d.offered - len(d.values) }

// Replaced returns how many times a later offer displaced a winner.
func (d *Keeper[K, V]) Replaced() int { return d.replaced }
