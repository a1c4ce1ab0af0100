package session

import (
	"encoding/json"
	"fmt"
	"io"
)

// snapshotVersion guards against restoring snapshots written by an
// incompatible layout.
const snapshotVersion = 1

type snapshot struct {
	Version int   `json:"version"`
	State   State `json:"state"`
}

// Snapshot serializes the session state as JSON.
func Snapshot(w io.Writer, s State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot{Version: snapshotVersion, State: s}); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Restore deserializes a session snapshot.
func Restore(r io.Reader) (State, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return State{}, fmt.Errorf("snapshot version %d not supported", snap.Version)
	}
	return snap.State, nil
}
