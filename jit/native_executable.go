package jit

import "unsafe"

// NativeExecutable binds one executable image to the two entry points the
// consuming VM uses: invoking the generated code and producing a
// diagnostic disassembly listing. It exclusively owns the image; closing
// the executable releases it.
type NativeExecutable struct {
	image Image
}

// NewNativeExecutable takes ownership of image. This is the only path by
// which generated code is ever invoked.
func NewNativeExecutable(image Image) *NativeExecutable {
	return &NativeExecutable{image: image}
}

// Entry returns the address of the first instruction.
func (ne *NativeExecutable) Entry() uintptr {
	code := ne.image.Code()
	return uintptr(unsafe.Pointer(&code[0]))
}

// Run jumps into the image's code. What the code expects in registers and
// what it leaves behind is the code generator's contract, not this
// package's: Run itself passes nothing and expects the code to return to
// its caller (the built-in ReturnStub does).
func (ne *NativeExecutable) Run() {
	code := ne.image.Code()
	// A Go func value is a pointer to a word holding the code address. A
	// pointer to the slice header has exactly that shape: its first word
	// is the data pointer, which is the first instruction.
	codeRef := &code
	fn := *(*func())(unsafe.Pointer(&codeRef))
	fn()
}

// Close releases the owned image.
func (ne *NativeExecutable) Close() error {
	return ne.image.Close()
}
