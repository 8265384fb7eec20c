package jit

import (
	"bytes"
	"os"
	"testing"
)

func TestRawImageCodeRoundTrip(t *testing.T) {
	code := []byte{0x90, 0x90, 0x90, 0xc3, 0x01, 0x02, 0x03, 0x04}
	img, err := NewRawImage(code)
	if err != nil {
		t.Fatalf("NewRawImage: %v", err)
	}
	defer img.Close()

	if !bytes.Equal(img.Code(), code) {
		t.Errorf("Code() = % x, want % x", img.Code(), code)
	}
	if len(img.Code()) != len(code) {
		t.Errorf("code length = %d, want %d", len(img.Code()), len(code))
	}
}

func TestRawImageMappingIsPageRounded(t *testing.T) {
	img, err := NewRawImage(ReturnStub())
	if err != nil {
		t.Fatalf("NewRawImage: %v", err)
	}
	defer img.Close()

	if want := os.Getpagesize(); len(img.mapping) != want {
		t.Errorf("mapping size = %d, want exactly one page (%d)", len(img.mapping), want)
	}
	if len(img.Code()) != len(ReturnStub()) {
		t.Errorf("code span = %d bytes, want %d", len(img.Code()), len(ReturnStub()))
	}
}

func TestRawImageRejectsEmptyCode(t *testing.T) {
	if _, err := NewRawImage(nil); err == nil {
		t.Error("NewRawImage(nil) should fail")
	}
	if _, err := NewRawImage([]byte{}); err == nil {
		t.Error("NewRawImage(empty) should fail")
	}
}

func TestRawImageRunsReturnStub(t *testing.T) {
	img, err := NewRawImage(ReturnStub())
	if err != nil {
		t.Fatalf("NewRawImage: %v", err)
	}
	defer img.Close()

	ne := NewNativeExecutable(img)
	if ne.Entry() == 0 {
		t.Fatal("entry address is zero")
	}
	// Returns immediately without faulting, or the test binary dies here.
	ne.Run()
}

func TestRawImageCloseIsIdempotent(t *testing.T) {
	img, err := NewRawImage(ReturnStub())
	if err != nil {
		t.Fatalf("NewRawImage: %v", err)
	}
	if err := img.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := img.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
