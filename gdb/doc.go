// Package gdb implements the GDB JIT registration protocol.
//
// A JIT announces freshly generated code to an attached debugger by
// linking a code entry (address and size of an in-memory object file)
// into a process-global descriptor and calling a well-known, empty
// notification function that the debugger has a breakpoint on. See
// https://sourceware.org/gdb/current/onlinedocs/gdb.html/JIT-Interface.html
//
// This package contains:
//   - The global descriptor (version, action flag, relevant entry, list head)
//   - An arena of code entries linked by stable handles
//   - Register / Unregister, each ending in the notification call
//   - A CBOR snapshot of the registered entries for external tooling
//
// The descriptor and entry list are process-global mutable state with no
// built-in synchronization: the descriptor's shape is fixed by the
// debugger protocol and cannot embed a lock. Callers that register or
// unregister images from more than one goroutine must serialize every
// call through one process-wide mutex of their own.
package gdb
