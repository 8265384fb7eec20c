package jit

import "errors"

// Recoverable resource failures. Both surface as a failed construction
// (no image is produced) and any partially made mapping is released
// before they are returned. Use errors.Is to distinguish them; the
// underlying OS error stays wrapped in the chain.
var (
	ErrAllocation = errors.New("cannot allocate executable memory")
	ErrProtection = errors.New("cannot change memory protection")
)
