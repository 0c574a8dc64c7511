//go:build hashagg_disable_padding

package opt

// CounterStripe_ is one stripe of a sharded counter.
// Padding is force-disabled via the hashagg_disable_padding build tag.
type CounterStripe_ struct {
	C uintptr // Counter value, accessed atomically
}

// Padded_ reports whether CounterStripe_ is cache-line padded.
const Padded_ = false
