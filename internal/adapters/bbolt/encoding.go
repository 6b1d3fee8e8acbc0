// Key encoding for run records.
//
// Keys sort by start time so a cursor walks runs chronologically:
//
//	startedAt: uint64 big-endian unix nanoseconds
//	runID:     remaining bytes
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/corey/moebuild/internal/ports"
)

// stampSize is the byte size of the time prefix.
const stampSize = 8

func recordKey(rec *ports.RunRecord) []byte {
	key := make([]byte, stampSize+len(rec.ID))
	binary.BigEndian.PutUint64(key, uint64(rec.StartedAt.UnixNano()))
	copy(key[stampSize:], rec.ID)
	return key
}

// keyTime decodes the start time of a record key.
func keyTime(key []byte) (time.Time, error) {
	if len(key) < stampSize {
		return time.Time{}, fmt.Errorf("record key too short: %d bytes", len(key))
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(key))), nil
}

func encodeRecord(rec *ports.RunRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal run record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*ports.RunRecord, error) {
	var rec ports.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal run record: %w", err)
	}
	return &rec, nil
}
