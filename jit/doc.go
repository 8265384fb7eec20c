// Package jit places generated machine code in executable memory and,
// optionally, wraps it in a minimal in-memory ELF image that an attached
// debugger can parse as a module.
//
// This package contains:
//   - Image: the capability "a span of memory holding runnable code"
//   - RawImage: an anonymous executable mapping, invisible to debuggers
//   - GDBImage: the same code embedded in a GDB-parseable ELF container
//   - NativeExecutable: binds one image to run/disassemble entry points
//
// Code buffers are consumed as opaque, immutable byte sequences; nothing
// here validates or patches instructions. Mappings follow write-xor-execute:
// code is written while the mapping is read+write, then the region is
// re-protected to read+execute and never made writable again.
//
// Supported targets are linux/amd64 and linux/arm64.
package jit
