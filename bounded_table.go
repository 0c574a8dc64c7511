package hashagg

// BoundedTable is a Table with a fixed probe-length cap and a maximum
// capacity. It bounds both the latency of Put and the memory a worker may
// hold privately.
//
// A Put that finds neither its key nor an empty slot within probeLimit
// steps doubles the table and retries, but only while the capacity is below
// the maximum. Past that point the Put reports overflow and the caller must
// route the pair elsewhere.
//
// Notes:
//   - Not safe for concurrent use.
//   - Rehashing reinserts entries without the probe cap, so an entry may sit
//     further than probeLimit steps from its origin. Get is uncapped.
type BoundedTable[K Integer, V any] struct {
	slots      []slot[K, V]
	size       int
	mask       int
	maxCap     int
	probeLimit int
	hash       Hasher
	merge      MergeFunc[V]
}

// NewBoundedTable creates an empty BoundedTable.
//
// Configuration options:
//   - WithCapacity(n): initial slot count (default 16).
//   - WithMaxCapacity(n): growth ceiling (default 8192). Setting it equal
//     to the capacity disables growth.
//   - WithProbeLimit(n): probing steps before overflow (default 4).
//   - WithHasher(h): key hash function (default IdentityHash).
func NewBoundedTable[K Integer, V any](
	merge MergeFunc[V],
	options ...func(*Config),
) *BoundedTable[K, V] {
	return newBoundedTable[K, V](merge, newConfig(options))
}

func newBoundedTable[K Integer, V any](
	merge MergeFunc[V],
	cfg *Config,
) *BoundedTable[K, V] {
	if merge == nil {
		panic("hashagg: nil merge function")
	}
	return &BoundedTable[K, V]{
		slots:      make([]slot[K, V], cfg.capacity),
		mask:       cfg.capacity - 1,
		maxCap:     cfg.maxCapacity,
		probeLimit: cfg.probeLimit,
		hash:       cfg.hasher,
		merge:      merge,
	}
}

// Put stores or merges the pair. It returns false on overflow: the pair was
// not admitted and the table is at its maximum capacity.
func (t *BoundedTable[K, V]) Put(key K, value V) bool {
	for !t.tryPut(key, value) {
		if len(t.slots) >= t.maxCap {
			return false
		}
		t.slots, t.mask = rehash(t.slots, len(t.slots)*2, t.hash, t.merge)
	}
	return true
}

// tryPut probes at most probeLimit slots.
func (t *BoundedTable[K, V]) tryPut(key K, value V) bool {
	pos := int(t.hash(uint64(key))) & t.mask
	for step := 1; step <= t.probeLimit; step++ {
		s := &t.slots[pos]
		if !s.filled {
			s.filled = true
			s.key = key
			s.value = value
			t.size++
			return true
		}
		if s.key == key {
			s.value = t.merge(s.value, value)
			return true
		}
		pos = (pos + step) & t.mask
	}
	return false
}

// Get returns the merged value for key.
func (t *BoundedTable[K, V]) Get(key K) (value V, ok bool) {
	if i := findSlot(t.slots, t.mask, t.hash, key); i >= 0 {
		return t.slots[i].value, true
	}
	return
}

// Len returns the number of distinct keys held.
func (t *BoundedTable[K, V]) Len() int {
	return t.size
}

// Cap returns the current slot count.
func (t *BoundedTable[K, V]) Cap() int {
	return len(t.slots)
}

// MaxCap returns the growth ceiling.
func (t *BoundedTable[K, V]) MaxCap() int {
	return t.maxCap
}

// Range calls yield for every entry until yield returns false.
func (t *BoundedTable[K, V]) Range(yield func(key K, value V) bool) {
	for i := range t.slots {
		if s := &t.slots[i]; s.filled {
			if !yield(s.key, s.value) {
				return
			}
		}
	}
}

// Drain hands every entry to yield and empties the table. The capacity is
// kept, so a drained table admits new keys without growing again.
func (t *BoundedTable[K, V]) Drain(yield func(key K, value V)) {
	if t.size == 0 {
		return
	}
	for i := range t.slots {
		if s := &t.slots[i]; s.filled {
			yield(s.key, s.value)
			*s = slot[K, V]{}
		}
	}
	t.size = 0
}
