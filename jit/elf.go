package jit

import (
	"debug/elf"
	"encoding/binary"
	"strconv"
)

// ELF64 fixed structure sizes. The container is written field by field at
// computed offsets rather than through Go struct overlays, so the byte
// layout never depends on the host language's alignment rules.
const (
	ehdrSize = 64
	phdrSize = 56
	shdrSize = 64
)

// Section indexes within the debug image. Section 0 is the code, section 1
// is the section-name string table.
const (
	textSectionIndex     = 0
	shstrtabSectionIndex = 1
	sectionCount         = 2
)

// imageLayout is the cumulative offset plan of a debug image mapping:
// <Ehdr> <Phdr> <2 x Shdr> <.shstrtab bytes> <pad> <page boundary> <code>.
type imageLayout struct {
	phdrOff     uint64
	shdrOff     uint64
	shstrtabOff uint64
	codeOff     uint64
	total       uint64
}

// computeImageLayout computes the mapping layout with overflow-checked
// arithmetic. The code region is placed last, on a page boundary: GDB
// requires the .text section to have a positive file offset, and page
// alignment lets the same bytes serve as both the segment's "file"
// content and live executable memory.
func computeImageLayout(shstrtabLen, codeLen uint64) imageLayout {
	var l imageLayout
	size := uint64(ehdrSize)
	l.phdrOff = size
	size = addChecked(size, phdrSize)
	l.shdrOff = size
	size = addChecked(size, sectionCount*shdrSize)
	l.shstrtabOff = size
	size = addChecked(size, shstrtabLen)
	l.codeOff = pageAlign(size)
	l.total = addChecked(l.codeOff, codeLen)
	return l
}

// appendSectionName appends a NUL-terminated name to the section-name
// table and returns the table and the name's byte offset within it. Names
// come from builder-internal constants; one containing a NUL byte is a
// programming error, not input to validate.
func appendSectionName(table []byte, name string) ([]byte, uint32) {
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			panic("jit: section name contains NUL byte: " + strconv.Quote(name))
		}
	}
	off := uint32(len(table))
	table = append(table, name...)
	table = append(table, 0)
	return table, off
}

// leWriter writes little-endian fields sequentially into a buffer. Field
// order is the layout; there is no seeking.
type leWriter struct {
	buf []byte
	off int
}

func (w *leWriter) u8(v uint8) {
	w.buf[w.off] = v
	w.off++
}

func (w *leWriter) u16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[w.off:], v)
	w.off += 2
}

func (w *leWriter) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *leWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], v)
	w.off += 8
}

func (w *leWriter) skip(n int) {
	w.off += n
}

func writeELFHeader(w *leWriter, l imageLayout) {
	// e_ident
	w.u8(0x7f)
	w.u8('E')
	w.u8('L')
	w.u8('F')
	w.u8(uint8(elf.ELFCLASS64))
	// Host byte order; both supported targets are little-endian.
	w.u8(uint8(elf.ELFDATA2LSB))
	w.u8(uint8(elf.EV_CURRENT))
	// Addresses are hardcoded into the image, so it follows no OS ABI.
	w.u8(uint8(elf.ELFOSABI_STANDALONE))
	w.u8(0)   // ABI version
	w.skip(7) // padding to EI_NIDENT

	// The image is descriptive only, never handed to a loader.
	w.u16(uint16(elf.ET_NONE))
	w.u16(elfMachine)
	w.u32(uint32(elf.EV_CURRENT))
	w.u64(0) // no entry point; the image is a reference for code and symbols
	w.u64(l.phdrOff)
	w.u64(l.shdrOff)
	w.u32(0) // flags
	w.u16(ehdrSize)
	w.u16(phdrSize)
	w.u16(1) // one loadable segment
	w.u16(shdrSize)
	w.u16(sectionCount)
	w.u16(shstrtabSectionIndex)
}

func writeProgramHeader(w *leWriter, l imageLayout, codeAddr uintptr, codeLen uint64) {
	w.u32(uint32(elf.PT_LOAD))
	w.u32(uint32(elf.PF_R | elf.PF_X))
	w.u64(l.codeOff)
	// The segment's virtual address is the real address of the mapped
	// code: the image is pre-linked and never relocated. GDB only needs
	// p_vaddr, but GCC and Clang set p_paddr to the same value, so we do too.
	w.u64(uint64(codeAddr))
	w.u64(uint64(codeAddr))
	w.u64(codeLen) // filesz
	w.u64(codeLen) // memsz
	w.u64(pageSize)
}

func writeTextSectionHeader(w *leWriter, nameOff uint32, codeAddr uintptr, codeOff, codeLen uint64) {
	w.u32(nameOff)
	w.u32(uint32(elf.SHT_PROGBITS))
	w.u64(uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR))
	w.u64(uint64(codeAddr))
	w.u64(codeOff)
	w.u64(codeLen)
	w.u32(0) // link
	w.u32(0) // info
	// The debugger gets real addresses, so alignment here is moot; 16 is
	// what GCC stamps on .text in its own output.
	w.u64(16)
	w.u64(0) // entsize
}

func writeShstrtabSectionHeader(w *leWriter, nameOff uint32, tableOff, tableLen uint64) {
	w.u32(nameOff)
	w.u32(uint32(elf.SHT_STRTAB))
	w.u64(0) // flags
	w.u64(0) // addr: not mapped as part of the segment
	w.u64(tableOff)
	w.u64(tableLen)
	w.u32(0) // link
	w.u32(0) // info
	w.u64(1)
	w.u64(0) // entsize
}
