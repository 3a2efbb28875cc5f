package session

import (
	"encoding/json"
	"fmt"
)

// Decode parses one push message.
// Sessions without an id cannot be tracked and are dropped.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	kept := snap.Sessions[:0]
	for _, s := range snap.Sessions {
		if s.SessionID == "" {
			continue
		}
		kept = append(kept, s)
	}
	snap.Sessions = kept

	return snap, nil
}
