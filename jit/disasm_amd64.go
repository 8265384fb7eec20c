//go:build amd64

package jit

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Disassembly renders the image's code as a GNU-syntax listing, one
// instruction per line, addressed at the code's real location. Purely
// diagnostic.
func (ne *NativeExecutable) Disassembly() (string, error) {
	code := ne.image.Code()
	base := uint64(ne.Entry())
	var sb strings.Builder
	for off := 0; off < len(code); {
		inst, err := x86asm.Decode(code[off:], 64)
		if err != nil {
			return "", fmt.Errorf("jit: disassemble at +%#x: %w", off, err)
		}
		pc := base + uint64(off)
		fmt.Fprintf(&sb, "%#x:\t%s\n", pc, x86asm.GNUSyntax(inst, pc, nil))
		off += inst.Len
	}
	return sb.String(), nil
}
