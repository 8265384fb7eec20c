package jit

// Image is a container of JITted code that is ready to be run. Concrete
// images decide how the memory is allocated and wrapped; consumers that
// only need to invoke code depend on this capability alone.
type Image interface {
	// Code returns the runnable machine code. The returned bytes alias
	// executable memory owned by the image: they stay valid, at the same
	// address, until Close, and must never be written to.
	Code() []byte

	// Close releases the memory backing the image. The code span is
	// invalid afterwards.
	Close() error
}

// ReturnStub returns a copy of the smallest runnable code buffer on this
// architecture: a single return instruction.
func ReturnStub() []byte {
	return append([]byte(nil), returnStub...)
}
