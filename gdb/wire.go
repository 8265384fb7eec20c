package gdb

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode for deterministic encoding, so two
// snapshots of the same registry state marshal to identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("gdb: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// SnapshotEntry records one registered image in a snapshot.
type SnapshotEntry struct {
	Addr uint64 `cbor:"addr"`
	Size uint64 `cbor:"size"`
}

// Snapshot is a point-in-time copy of the registration list, for external
// inspection tools. It is a copy: entries registered or unregistered after
// the snapshot is taken do not affect it.
type Snapshot struct {
	Version uint32          `cbor:"version"`
	TakenAt time.Time       `cbor:"taken_at"`
	Entries []SnapshotEntry `cbor:"entries"`
}

// TakeSnapshot captures the current registration list in list order.
// Callers must hold the process-wide JIT registration lock.
func TakeSnapshot() *Snapshot {
	s := &Snapshot{
		Version: descriptor.Version,
		TakenAt: time.Now().UTC(),
	}
	for _, e := range Entries() {
		s.Entries = append(s.Entries, SnapshotEntry{Addr: uint64(e.Addr), Size: e.Size})
	}
	return s
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("gdb: unmarshal snapshot: %w", err)
	}
	return &s, nil
}
