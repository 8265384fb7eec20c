//go:build arm64

package jit

import (
	"fmt"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
)

// Disassembly renders the image's code as a GNU-syntax listing, one
// instruction per line, addressed at the code's real location. Purely
// diagnostic.
func (ne *NativeExecutable) Disassembly() (string, error) {
	code := ne.image.Code()
	if len(code)%4 != 0 {
		return "", fmt.Errorf("jit: disassemble: code length %d is not a whole number of instructions", len(code))
	}
	base := uint64(ne.Entry())
	var sb strings.Builder
	for off := 0; off < len(code); off += 4 {
		inst, err := arm64asm.Decode(code[off:])
		if err != nil {
			return "", fmt.Errorf("jit: disassemble at +%#x: %w", off, err)
		}
		fmt.Fprintf(&sb, "%#x:\t%s\n", base+uint64(off), arm64asm.GNUSyntax(inst))
	}
	return sb.String(), nil
}
