package jit

import (
	"errors"
	"fmt"
	"testing"
)

// stubMemoryFailure swaps in failing memory operations and records whether
// a half-built mapping was released.
func stubMemoryFailure(t *testing.T, failAlloc, failProtect bool) *bool {
	t.Helper()
	origMap, origProtect, origUnmap := mapAnon, protectExecutable, unmap
	t.Cleanup(func() {
		mapAnon, protectExecutable, unmap = origMap, origProtect, origUnmap
	})

	unmapped := new(bool)
	if failAlloc {
		mapAnon = func(size uint64) ([]byte, error) {
			return nil, fmt.Errorf("jit: %w: simulated exhaustion", ErrAllocation)
		}
	}
	if failProtect {
		protectExecutable = func(region []byte) error {
			return fmt.Errorf("jit: %w: simulated denial", ErrProtection)
		}
	}
	unmap = func(mapping []byte) error {
		*unmapped = true
		return origUnmap(mapping)
	}
	return unmapped
}

func TestRawImageAllocationFailure(t *testing.T) {
	stubMemoryFailure(t, true, false)

	img, err := NewRawImage(ReturnStub())
	if img != nil {
		t.Error("no image should be produced on allocation failure")
	}
	if !errors.Is(err, ErrAllocation) {
		t.Errorf("err = %v, want ErrAllocation", err)
	}
}

func TestRawImageProtectionFailureReleasesMapping(t *testing.T) {
	unmapped := stubMemoryFailure(t, false, true)

	img, err := NewRawImage(ReturnStub())
	if img != nil {
		t.Error("no image should be produced on protection failure")
	}
	if !errors.Is(err, ErrProtection) {
		t.Errorf("err = %v, want ErrProtection", err)
	}
	if !*unmapped {
		t.Error("the half-built mapping must be released on the failure path")
	}
}

func TestGDBImageAllocationFailure(t *testing.T) {
	stubMemoryFailure(t, true, false)

	img, err := NewGDBImage(ReturnStub())
	if img != nil {
		t.Error("no image should be produced on allocation failure")
	}
	if !errors.Is(err, ErrAllocation) {
		t.Errorf("err = %v, want ErrAllocation", err)
	}
}

func TestGDBImageProtectionFailureReleasesMapping(t *testing.T) {
	unmapped := stubMemoryFailure(t, false, true)

	img, err := NewGDBImage(ReturnStub())
	if img != nil {
		t.Error("no image should be produced on protection failure")
	}
	if !errors.Is(err, ErrProtection) {
		t.Errorf("err = %v, want ErrProtection", err)
	}
	if !*unmapped {
		t.Error("the half-built mapping must be released on the failure path")
	}
}

func TestPageAlign(t *testing.T) {
	if got := pageAlign(1); got != pageSize {
		t.Errorf("pageAlign(1) = %d, want %d", got, pageSize)
	}
	if got := pageAlign(pageSize); got != pageSize {
		t.Errorf("pageAlign(page) = %d, want %d", got, pageSize)
	}
	if got := pageAlign(pageSize + 1); got != 2*pageSize {
		t.Errorf("pageAlign(page+1) = %d, want %d", got, 2*pageSize)
	}
}

func TestPageAlignOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("pageAlign near the top of the address space must panic")
		}
	}()
	pageAlign(^uint64(0))
}
