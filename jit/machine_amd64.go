//go:build amd64

package jit

import "debug/elf"

// elfMachine is the e_machine value stamped into debug images.
const elfMachine = uint16(elf.EM_X86_64)

// returnStub is a single RET.
var returnStub = []byte{0xc3}
