package jit

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	"golang.org/x/sys/unix"
)

var log = commonlog.GetLogger("jitimage.jit")

// pageSize is read once; the kernel's page size does not change while the
// process runs.
var pageSize = uint64(os.Getpagesize())

// pageAlign rounds n up to the next multiple of the platform page size,
// panicking on overflow (an image that large is a caller bug, and an
// undersized mapping would be worse than a crash).
func pageAlign(n uint64) uint64 {
	return addChecked(n, pageSize-1) &^ (pageSize - 1)
}

// addChecked is overflow-checked addition for layout arithmetic.
func addChecked(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		panic(fmt.Sprintf("jit: image layout overflow: %#x + %#x", a, b))
	}
	return sum
}

// The OS-facing memory operations are variables so tests can simulate
// resource failures without exhausting real memory.
var (
	mapAnon           = mapAnonOS
	protectExecutable = protectExecutableOS
	unmap             = unix.Munmap
)

// mapAnonOS allocates a private anonymous read+write mapping of size
// bytes. The caller page-rounds size; the mapping starts non-executable
// so code can be written into it first.
func mapAnonOS(size uint64) ([]byte, error) {
	mapping, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		log.Errorf("mmap %d bytes: %s", size, err.Error())
		return nil, fmt.Errorf("jit: %w: mmap %d bytes: %w", ErrAllocation, size, err)
	}
	return mapping, nil
}

// protectExecutableOS flips region to read+execute, removing write
// permission. region must start on a page boundary.
func protectExecutableOS(region []byte) error {
	if err := unix.Mprotect(region, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		log.Errorf("mprotect %d bytes: %s", len(region), err.Error())
		return fmt.Errorf("jit: %w: mprotect %d bytes: %w", ErrProtection, len(region), err)
	}
	return nil
}
