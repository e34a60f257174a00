package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SnapshotVersion is the version written by EncodeSnapshot.
const SnapshotVersion = 1

// ErrInvalidSnapshot is returned for snapshots that cannot be read.
var ErrInvalidSnapshot = errors.New("invalid cart snapshot")

type snapshot struct {
	Version   int       `json:"version"`
	ID        string    `json:"id,omitempty"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EncodeSnapshot serializes a cart in the current snapshot format.
func EncodeSnapshot(c *Cart) ([]byte, error) {
	items := c.Items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(snapshot{
		Version:   SnapshotVersion,
		ID:        c.ID,
		Items:     items,
		UpdatedAt: c.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal cart snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot reads any known snapshot version. Version 0 is the bare
// JSON array of lines the browser stored; it is migrated on read. Lines with
// a non-positive quantity are dropped.
func DecodeSnapshot(data []byte) (*Cart, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &Cart{}, nil
	}

	var snap snapshot
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &snap.Items); err != nil {
			return nil, fmt.Errorf("%w: v0: %v", ErrInvalidSnapshot, err)
		}
	} else {
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		if snap.Version > SnapshotVersion || snap.Version < 1 {
			return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snap.Version)
		}
	}

	c := &Cart{ID: snap.ID, UpdatedAt: snap.UpdatedAt}
	for _, it := range snap.Items {
		if it.Quantity <= 0 {
			continue
		}
		c.Add(it)
	}
	return c, nil
}
