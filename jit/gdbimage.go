package jit

import (
	"fmt"
	"unsafe"

	"github.com/hollis/jitimage/gdb"
)

// GDBImage is an ELF image compatible only with GDB's JIT interface. The
// usual "file" and "memory" views of an ELF image are merged into the
// same bytes: the segment and section tables advertise the addresses the
// code actually occupies in this process, so the debugger parses the
// mapping in place and no relocation step ever happens.
type GDBImage struct {
	mapping    []byte
	codeOff    int
	codeLen    int
	registered bool
}

// NewGDBImage builds, in one anonymous mapping, an ELF container around a
// copy of code: one file header, one read+execute loadable segment, a
// .text section describing the code and a .shstrtab section naming both.
// Only the code region (page-aligned, at the end of the mapping) is made
// executable; the header region stays read+write since the debugger only
// parses it.
func NewGDBImage(code []byte) (*GDBImage, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("jit: debug image from empty code buffer")
	}

	// Section names go into the table before the layout is computed, so
	// the table's final size is part of the offset arithmetic.
	var shstrtab []byte
	shstrtab, textNameOff := appendSectionName(shstrtab, ".text")
	shstrtab, shstrtabNameOff := appendSectionName(shstrtab, ".shstrtab")

	l := computeImageLayout(uint64(len(shstrtab)), uint64(len(code)))
	mapping, err := mapAnon(l.total)
	if err != nil {
		return nil, err
	}
	codeAddr := uintptr(unsafe.Pointer(&mapping[l.codeOff]))

	w := &leWriter{buf: mapping}
	writeELFHeader(w, l)
	writeProgramHeader(w, l, codeAddr, uint64(len(code)))
	writeTextSectionHeader(w, textNameOff, codeAddr, l.codeOff, uint64(len(code)))
	writeShstrtabSectionHeader(w, shstrtabNameOff, l.shstrtabOff, uint64(len(shstrtab)))
	if w.off != int(l.shstrtabOff) {
		panic(fmt.Sprintf("jit: header writes ended at %#x, layout expects %#x", w.off, l.shstrtabOff))
	}
	copy(mapping[l.shstrtabOff:], shstrtab)
	copy(mapping[l.codeOff:], code)

	if err := protectExecutable(mapping[l.codeOff:l.total]); err != nil {
		// Do not leak the half-built mapping on the failure path.
		_ = unmap(mapping)
		return nil, err
	}

	return &GDBImage{mapping: mapping, codeOff: int(l.codeOff), codeLen: len(code)}, nil
}

// Code returns the runnable code: the page-aligned sub-span of the ELF
// image that the container's .text section describes.
func (img *GDBImage) Code() []byte {
	end := img.codeOff + img.codeLen
	return img.mapping[img.codeOff:end:end]
}

// ELFImage returns the full container bytes, header through code. This is
// the span handed to the debugger registration protocol.
func (img *GDBImage) ELFImage() []byte {
	return img.mapping
}

// Registered reports whether the image is currently registered with the
// debugger protocol.
func (img *GDBImage) Registered() bool {
	return img.registered
}

// Register announces the image to an attached debugger. Registering an
// already-registered image is a no-op: the protocol list must never hold
// the same image twice.
//
// Callers must hold the process-wide JIT registration lock; see gdb.
func (img *GDBImage) Register() {
	if img.registered {
		return
	}
	gdb.Register(img.mapping)
	img.registered = true
}

// Unregister revokes the image from the debugger. Unregistering an image
// that is not registered is a no-op.
//
// Callers must hold the process-wide JIT registration lock; see gdb.
func (img *GDBImage) Unregister() {
	if !img.registered {
		return
	}
	gdb.Unregister(img.mapping)
	img.registered = false
}

// Close unregisters the image if it is still registered, then releases
// the mapping.
func (img *GDBImage) Close() error {
	if img.mapping == nil {
		return nil
	}
	img.Unregister()
	mapping := img.mapping
	img.mapping = nil
	return unmap(mapping)
}

var _ Image = (*GDBImage)(nil)
