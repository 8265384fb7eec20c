package gdb

import (
	"fmt"
	"unsafe"
)

// protocolVersion is stamped into the descriptor once at process start.
// The debugger may check it before this process runs any JIT code, so it
// must never change independently of the published protocol.
const protocolVersion uint32 = 1

// Action is the descriptor's action flag, telling the debugger what just
// happened to the relevant entry.
type Action uint32

const (
	ActionNone Action = iota
	ActionRegister
	ActionUnregister
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionRegister:
		return "register"
	case ActionUnregister:
		return "unregister"
	}
	return fmt.Sprintf("Action(%d)", uint32(a))
}

// EntryID is a stable handle into the entry arena. The arena is the sole
// owner of entries; prev/next links are handles, never pointers.
type EntryID int32

// NoEntry marks an absent link or list end.
const NoEntry EntryID = -1

// codeEntry is one node of the registration list: the start address and
// byte length of a registered in-memory object file.
type codeEntry struct {
	next EntryID
	prev EntryID
	addr uintptr
	size uint64
	live bool
}

// Descriptor mirrors the fixed jit_descriptor layout the debugger watches:
// version, action flag, the entry most recently acted on, and the list head.
type Descriptor struct {
	Version       uint32
	ActionFlag    Action
	RelevantEntry EntryID
	FirstEntry    EntryID
}

// Process-global registration state. Initialized once, alive for the
// process duration. All mutation goes through Register and Unregister.
var (
	descriptor = Descriptor{
		Version:       protocolVersion,
		ActionFlag:    ActionNone,
		RelevantEntry: NoEntry,
		FirstEntry:    NoEntry,
	}
	arena    []codeEntry
	freeList []EntryID
)

// notifyDebugger is the breakpointable notification function. The debugger
// places a breakpoint here; calling it is the synchronous signal that the
// descriptor describes a new action. It must stay empty and must not be
// inlined away, or the breakpoint has nothing to land on.
//
//go:noinline
func notifyDebugger() {}

func allocEntry() EntryID {
	if n := len(freeList); n > 0 {
		id := freeList[n-1]
		freeList = freeList[:n-1]
		arena[id] = codeEntry{live: true}
		return id
	}
	arena = append(arena, codeEntry{live: true})
	return EntryID(len(arena) - 1)
}

func releaseEntry(id EntryID) {
	arena[id] = codeEntry{}
	freeList = append(freeList, id)
}

func findEntry(addr uintptr) EntryID {
	for id := descriptor.FirstEntry; id != NoEntry; id = arena[id].next {
		if arena[id].addr == addr {
			return id
		}
	}
	return NoEntry
}

// Register links a code entry for image at the head of the global list,
// points the descriptor at it, and notifies the debugger. image must be
// the complete in-memory object file, already laid out at its final
// address; the debugger parses it in place.
//
// Callers must hold the process-wide JIT registration lock.
func Register(image []byte) {
	if len(image) == 0 {
		panic("gdb: register of empty image")
	}
	id := allocEntry()
	e := &arena[id]
	e.addr = uintptr(unsafe.Pointer(&image[0]))
	e.size = uint64(len(image))
	e.prev = NoEntry
	e.next = descriptor.FirstEntry
	if descriptor.FirstEntry != NoEntry {
		head := &arena[descriptor.FirstEntry]
		if head.prev != NoEntry {
			panic("gdb: list head has a predecessor")
		}
		head.prev = id
	}
	descriptor.FirstEntry = id

	// The debugger reads these two fields when the notification hits, so
	// they are set last, immediately before the call.
	descriptor.RelevantEntry = id
	descriptor.ActionFlag = ActionRegister
	notifyDebugger()
}

// Unregister splices out the entry previously registered for image,
// notifies the debugger, and frees the entry. Unregistering an image that
// was never registered (or already unregistered) indicates corrupted
// bookkeeping and panics: continuing would leave the debugger looking at
// a list this process no longer agrees with.
//
// Callers must hold the process-wide JIT registration lock.
func Unregister(image []byte) {
	if len(image) == 0 {
		panic("gdb: unregister of empty image")
	}
	addr := uintptr(unsafe.Pointer(&image[0]))
	id := findEntry(addr)
	if id == NoEntry {
		panic(fmt.Sprintf("gdb: no code entry registered for image at %#x", addr))
	}
	e := &arena[id]
	if e.size != uint64(len(image)) {
		panic(fmt.Sprintf("gdb: entry at %#x registered with size %d, unregistered with size %d",
			addr, e.size, len(image)))
	}
	if e.prev != NoEntry {
		arena[e.prev].next = e.next
	}
	if e.next != NoEntry {
		arena[e.next].prev = e.prev
	}
	if descriptor.FirstEntry == id {
		descriptor.FirstEntry = e.next
	}

	descriptor.RelevantEntry = id
	descriptor.ActionFlag = ActionUnregister
	notifyDebugger()

	releaseEntry(id)
}

// EntryInfo is a read-only view of one registered entry.
type EntryInfo struct {
	Addr uintptr
	Size uint64
}

// Entries returns the registered entries in list order (most recently
// registered first).
func Entries() []EntryInfo {
	var infos []EntryInfo
	for id := descriptor.FirstEntry; id != NoEntry; id = arena[id].next {
		infos = append(infos, EntryInfo{Addr: arena[id].addr, Size: arena[id].size})
	}
	return infos
}

// Len reports how many entries are currently registered.
func Len() int {
	n := 0
	for id := descriptor.FirstEntry; id != NoEntry; id = arena[id].next {
		n++
	}
	return n
}

// State returns a copy of the global descriptor.
func State() Descriptor {
	return descriptor
}
