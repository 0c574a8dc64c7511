package hashagg

import "sync/atomic"

// bitLockUint32 acquires a bit-lock on the given address using the specified
// bit mask. It assumes the lock is held if (value & mask) != 0.
// It spins, then sleeps, until the lock can be acquired.
//
// Embedding the lock bit in a slot's metadata word gives every slot its own
// lock at no extra memory cost.
func bitLockUint32(addr *uint32, mask uint32) {
	cur := atomic.LoadUint32(addr)
	if atomic.CompareAndSwapUint32(addr, cur&^mask, cur|mask) {
		return
	}
	slowLockUint32(addr, mask)
}

func slowLockUint32(addr *uint32, mask uint32) {
	var spins int
	for !tryLockUint32(addr, mask) {
		delay(&spins)
	}
}

//go:nosplit
func tryLockUint32(addr *uint32, mask uint32) bool {
	for {
		cur := atomic.LoadUint32(addr)
		if cur&mask != 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(addr, cur, cur|mask) {
			return true
		}
	}
}

// bitUnlockUint32 releases the bit-lock by clearing the specified bit mask.
// Other bits are preserved.
//
//go:nosplit
func bitUnlockUint32(addr *uint32, mask uint32) {
	atomic.StoreUint32(addr, atomic.LoadUint32(addr)&^mask)
}

// bitUnlockWithStoreUint32 releases the bit-lock and publishes value in the
// remaining bits with a single store. Readers that observe the new bits also
// observe every write made while the lock was held.
//
//go:nosplit
func bitUnlockWithStoreUint32(addr *uint32, mask uint32, value uint32) {
	atomic.StoreUint32(addr, value&^mask)
}
