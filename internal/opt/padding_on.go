//go:build !hashagg_disable_padding

package opt

import (
	"unsafe"
)

// CounterStripe_ is one stripe of a sharded counter. Each stripe fills a
// cache line so concurrent writers on different stripes do not false-share.
// Use: go build -tags=hashagg_disable_padding to pack stripes tightly.
type CounterStripe_ struct {
	C uintptr // Counter value, accessed atomically
	_ [(CacheLineSize_ - unsafe.Sizeof(struct {
		C uintptr
	}{})%CacheLineSize_) % CacheLineSize_]byte
}

// Padded_ reports whether CounterStripe_ is cache-line padded.
const Padded_ = true
