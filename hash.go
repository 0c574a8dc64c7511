package hashagg

// Integer is the key domain of every table in this package.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Number is the value domain of the additive merge operator.
type Number interface {
	Integer | ~float32 | ~float64
}

// Hasher maps a key, widened to uint64, to its probe origin.
// Only the low bits selected by the table mask are used.
type Hasher func(key uint64) uint64

// MergeFunc combines the stored value for a key with a newly inserted one.
// It must be associative and commutative: strategies apply it in an
// arbitrary order across threads.
type MergeFunc[V any] func(old, v V) V

// Sum is the reference merge operator (SUM / COUNT).
func Sum[V Number](old, v V) V {
	return old + v
}

// IdentityHash uses the key as its own hash. Dense small integer keys then
// map to distinct slots with no hashing cost.
func IdentityHash(key uint64) uint64 {
	return key
}

// MixHash spreads high bits into the low bits selected by the table mask.
// Use it for sparse or strided keys, where IdentityHash clusters.
func MixHash(key uint64) uint64 {
	// splitmix64 finalizer
	key ^= key >> 30
	key *= 0xbf58476d1ce4e5b9
	key ^= key >> 27
	key *= 0x94d049bb133111eb
	key ^= key >> 31
	return key
}

// shiftHash drops the low bits a partitioned strategy already used for
// routing, so keys sharing those bits do not pile up in one slot run.
func shiftHash(h Hasher, bits int) Hasher {
	if bits == 0 {
		return h
	}
	return func(key uint64) uint64 {
		return h(key) >> bits
	}
}
