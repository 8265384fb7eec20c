//go:build arm64

package jit

import "debug/elf"

// elfMachine is the e_machine value stamped into debug images.
const elfMachine = uint16(elf.EM_AARCH64)

// returnStub is a single RET (little-endian encoding of 0xd65f03c0).
var returnStub = []byte{0xc0, 0x03, 0x5f, 0xd6}
