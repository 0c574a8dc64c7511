package hashagg

// slot is a dense table entry. Keys and values are stored inline.
type slot[K Integer, V any] struct {
	filled bool
	key    K
	value  V
}

// Table is an append-only aggregation hash table using open addressing with
// quadratic probing over a power-of-two slot array.
//
// Put on an existing key merges the stored value with the new one through
// the table's MergeFunc. The table grows (doubles and rehashes every entry)
// before an insert would push it past the 0.7 load factor.
//
// Notes:
//   - Table is not safe for concurrent use. Growth requires exclusive
//     access, so a Table must be owned by one goroutine until it is
//     combined or read.
//   - Keys are never removed; iteration order is unspecified.
type Table[K Integer, V any] struct {
	slots []slot[K, V]
	size  int
	mask  int
	hash  Hasher
	merge MergeFunc[V]
	grows int
}

// NewTable creates an empty Table with the given merge operator.
//
// Configuration options:
//   - WithCapacity(n): initial slot count (default 16), rounded to a power of two.
//   - WithHasher(h): key hash function (default IdentityHash).
//
// Example:
//
//	t := NewTable[int64, int64](Sum[int64])
//	t.Put(5, 1)
//	v, ok := t.Get(5)
func NewTable[K Integer, V any](
	merge MergeFunc[V],
	options ...func(*Config),
) *Table[K, V] {
	return newTable[K, V](merge, newConfig(options))
}

func newTable[K Integer, V any](merge MergeFunc[V], cfg *Config) *Table[K, V] {
	if merge == nil {
		panic("hashagg: nil merge function")
	}
	return &Table[K, V]{
		slots: make([]slot[K, V], cfg.capacity),
		mask:  cfg.capacity - 1,
		hash:  cfg.hasher,
		merge: merge,
	}
}

// Get returns the merged value for key.
func (t *Table[K, V]) Get(key K) (value V, ok bool) {
	if i := findSlot(t.slots, t.mask, t.hash, key); i >= 0 {
		return t.slots[i].value, true
	}
	return
}

// Put inserts key with value, or merges value into the existing entry.
func (t *Table[K, V]) Put(key K, value V) {
	if t.size >= growThreshold(len(t.slots)) {
		t.grow()
	}
	if putInto(t.slots, t.mask, t.hash, t.merge, key, value) {
		t.size++
	}
}

// Len returns the number of distinct keys.
func (t *Table[K, V]) Len() int {
	return t.size
}

// Cap returns the slot count.
func (t *Table[K, V]) Cap() int {
	return len(t.slots)
}

// Grows returns how many times the table has doubled.
func (t *Table[K, V]) Grows() int {
	return t.grows
}

// Combine merges every entry of other into t. other is left unchanged and
// may be discarded afterwards.
func (t *Table[K, V]) Combine(other *Table[K, V]) {
	for i := range other.slots {
		if s := &other.slots[i]; s.filled {
			t.Put(s.key, s.value)
		}
	}
}

// Range calls yield for every entry until yield returns false.
func (t *Table[K, V]) Range(yield func(key K, value V) bool) {
	for i := range t.slots {
		if s := &t.slots[i]; s.filled {
			if !yield(s.key, s.value) {
				return
			}
		}
	}
}

// grow doubles the slot array and reinserts every entry with the same
// probing rule against the new mask.
func (t *Table[K, V]) grow() {
	t.slots, t.mask = rehash(t.slots, len(t.slots)*2, t.hash, t.merge)
	t.grows++
}

// findSlot returns the index of the slot holding key, or -1.
// At most len(slots) probes are made: triangular steps over a power-of-two
// array visit every slot once, so a saturated table still terminates.
func findSlot[K Integer, V any](
	slots []slot[K, V],
	mask int,
	hash Hasher,
	key K,
) int {
	pos := int(hash(uint64(key))) & mask
	for step := 1; step <= len(slots); step++ {
		s := &slots[pos]
		if !s.filled {
			return -1
		}
		if s.key == key {
			return pos
		}
		pos = (pos + step) & mask
	}
	return -1
}

// rehash moves every filled slot into a fresh array of newCap slots.
func rehash[K Integer, V any](
	slots []slot[K, V],
	newCap int,
	hash Hasher,
	merge MergeFunc[V],
) ([]slot[K, V], int) {
	newSlots := make([]slot[K, V], newCap)
	newMask := newCap - 1
	for i := range slots {
		if s := &slots[i]; s.filled {
			putInto(newSlots, newMask, hash, merge, s.key, s.value)
		}
	}
	return newSlots, newMask
}

// putInto adds an entry without resizing. The caller guarantees a free slot
// is reachable. Reports whether a new key was added.
func putInto[K Integer, V any](
	slots []slot[K, V],
	mask int,
	hash Hasher,
	merge MergeFunc[V],
	key K,
	value V,
) bool {
	pos := int(hash(uint64(key))) & mask
	step := 1
	for slots[pos].filled && slots[pos].key != key {
		pos = (pos + step) & mask
		step++
	}
	s := &slots[pos]
	if s.filled {
		s.value = merge(s.value, value)
		return false
	}
	s.filled = true
	s.key = key
	s.value = value
	return true
}
