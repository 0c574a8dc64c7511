package hashagg

import (
	"runtime"
	"sync/atomic"

	"github.com/llxisdsh/hashagg/internal/opt"
)

const (
	slotLocked uint32 = 1 << 0
	slotFilled uint32 = 1 << 1
)

type lockedSlot[K Integer, V any] struct {
	meta  uint32 // slotLocked | slotFilled
	key   K
	value V
}

// LockedTable is a fixed-capacity aggregation table shared by many
// goroutines without an external merge step.
//
// Concurrency model:
//   - Every slot carries its own lock bit. A writer locks a candidate slot
//     before testing or claiming it, and never holds a lock across a probe
//     step, so claims on other slots proceed in parallel.
//   - An empty slot is claimed under its lock; the filled bit is published
//     together with the unlock, after the key and value are written. A key
//     never changes once its slot is filled, so probing past a filled slot
//     needs no lock.
//   - Merging into an existing key holds that slot's lock for the whole
//     read-merge-write.
//   - The size counter is striped by slot index across cache-line padded
//     stripes.
//
// The table never grows. It must be provisioned for the expected number of
// distinct keys; Put reports false once every slot has been probed without
// finding the key or an empty slot.
type LockedTable[K Integer, V any] struct {
	_        noCopy
	slots    []lockedSlot[K, V]
	mask     int
	size     []opt.CounterStripe_
	sizeMask int
	hash     Hasher
	merge    MergeFunc[V]
}

// NewLockedTable creates a LockedTable with capacity slots, rounded up to a
// power of two.
//
// Configuration options:
//   - WithHasher(h): key hash function (default IdentityHash).
func NewLockedTable[K Integer, V any](
	merge MergeFunc[V],
	capacity int,
	options ...func(*Config),
) *LockedTable[K, V] {
	cfg := newConfig(options)
	return newLockedTable[K, V](merge, capacity, cfg.hasher)
}

func newLockedTable[K Integer, V any](
	merge MergeFunc[V],
	capacity int,
	hash Hasher,
) *LockedTable[K, V] {
	if merge == nil {
		panic("hashagg: nil merge function")
	}
	capacity = nextPowOf2(max(capacity, defaultCapacity))
	stripes := calcSizeStripes(capacity, runtime.GOMAXPROCS(0))
	return &LockedTable[K, V]{
		slots:    make([]lockedSlot[K, V], capacity),
		mask:     capacity - 1,
		size:     make([]opt.CounterStripe_, stripes),
		sizeMask: stripes - 1,
		hash:     hash,
		merge:    merge,
	}
}

// Put inserts key with value, or merges value into the existing entry.
// It is safe for concurrent use. It returns false if the table is saturated
// and the pair was not stored.
func (t *LockedTable[K, V]) Put(key K, value V) bool {
	pos := int(t.hash(uint64(key))) & t.mask
	for step := 1; step <= len(t.slots); step++ {
		s := &t.slots[pos]
		if atomic.LoadUint32(&s.meta)&slotFilled != 0 && s.key != key {
			pos = (pos + step) & t.mask
			continue
		}

		bitLockUint32(&s.meta, slotLocked)
		meta := atomic.LoadUint32(&s.meta)
		if meta&slotFilled == 0 {
			s.key = key
			s.value = value
			bitUnlockWithStoreUint32(&s.meta, slotLocked, meta|slotFilled)
			atomic.AddUintptr(&t.size[pos&t.sizeMask].C, 1)
			return true
		}
		if s.key == key {
			s.value = t.merge(s.value, value)
			bitUnlockUint32(&s.meta, slotLocked)
			return true
		}
		// Claimed by another key between the check and the lock.
		bitUnlockUint32(&s.meta, slotLocked)
		pos = (pos + step) & t.mask
	}
	return false
}

// Get returns the merged value for key. It is safe for concurrent use; the
// value is read under the slot lock.
func (t *LockedTable[K, V]) Get(key K) (value V, ok bool) {
	pos := int(t.hash(uint64(key))) & t.mask
	for step := 1; step <= len(t.slots); step++ {
		s := &t.slots[pos]
		if atomic.LoadUint32(&s.meta)&slotFilled == 0 {
			return
		}
		if s.key == key {
			bitLockUint32(&s.meta, slotLocked)
			value = s.value
			bitUnlockUint32(&s.meta, slotLocked)
			return value, true
		}
		pos = (pos + step) & t.mask
	}
	return
}

// Len returns the number of distinct keys.
func (t *LockedTable[K, V]) Len() int {
	var n uintptr
	for i := range t.size {
		n += atomic.LoadUintptr(&t.size[i].C)
	}
	return int(n)
}

// Cap returns the fixed slot count.
func (t *LockedTable[K, V]) Cap() int {
	return len(t.slots)
}

// Range calls yield for every entry until yield returns false.
// It must not run concurrently with Put.
func (t *LockedTable[K, V]) Range(yield func(key K, value V) bool) {
	for i := range t.slots {
		s := &t.slots[i]
		if atomic.LoadUint32(&s.meta)&slotFilled != 0 {
			if !yield(s.key, s.value) {
				return
			}
		}
	}
}
