package hashagg

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestBitLockUint32(t *testing.T) {
	var val uint32
	const mask = 1 << 31

	var count int
	var wg sync.WaitGroup
	const N = 1000

	wg.Add(N)
	for range N {
		go func() {
			defer wg.Done()
			bitLockUint32(&val, mask)
			count++
			bitUnlockUint32(&val, mask)
		}()
	}
	wg.Wait()

	if count != N {
		t.Errorf("expected count %d, got %d", N, count)
	}
	if val != 0 {
		t.Errorf("expected lock released, got %#x", val)
	}
}

func TestBitUnlockPreservesOtherBits(t *testing.T) {
	const lock, flag = 1 << 0, 1 << 1
	val := uint32(flag)

	bitLockUint32(&val, lock)
	if atomic.LoadUint32(&val) != lock|flag {
		t.Fatalf("lock did not keep flag: %#x", val)
	}
	if tryLockUint32(&val, lock) {
		t.Fatal("lock acquired twice")
	}
	bitUnlockUint32(&val, lock)
	if val != flag {
		t.Fatalf("unlock lost flag: %#x", val)
	}

	bitLockUint32(&val, lock)
	bitUnlockWithStoreUint32(&val, lock, lock|flag|1<<2)
	if val != flag|1<<2 {
		t.Fatalf("unlock with store: got %#x", val)
	}
}
