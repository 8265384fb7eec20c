package jit

import "fmt"

// RawImage is a code image that consists only of the mapped code, ready
// to be executed, without any wrapping. Debuggers and disassembly tools
// see nothing but an anonymous executable region.
type RawImage struct {
	mapping []byte
	codeLen int
}

// NewRawImage copies code into a fresh anonymous mapping and makes it
// executable. The mapping is page-rounded; Code returns exactly the bytes
// that were passed in. The caller's buffer is not retained.
func NewRawImage(code []byte) (*RawImage, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("jit: raw image from empty code buffer")
	}
	mapping, err := mapAnon(pageAlign(uint64(len(code))))
	if err != nil {
		return nil, err
	}
	copy(mapping, code)
	if err := protectExecutable(mapping); err != nil {
		// Do not leak the half-built mapping on the failure path.
		_ = unmap(mapping)
		return nil, err
	}
	return &RawImage{mapping: mapping, codeLen: len(code)}, nil
}

// Code returns the runnable code. It aliases the image's executable
// mapping; see Image.
func (img *RawImage) Code() []byte {
	return img.mapping[:img.codeLen:img.codeLen]
}

// Close unconditionally releases the mapping.
func (img *RawImage) Close() error {
	if img.mapping == nil {
		return nil
	}
	mapping := img.mapping
	img.mapping = nil
	return unmap(mapping)
}

var _ Image = (*RawImage)(nil)
