package logstore

import (
	"encoding/json"

	"github.com/bft-labs/moisturelog/internal/domain"
)

// Snapshot is the document as it stood after a load or an append.
type Snapshot struct {
	Config domain.DeviceConfig
	// Data holds the records, oldest first, exactly as stored.
	Data []json.RawMessage
	// Document is the indented text that was (or would be) written.
	Document []byte
}

// Len returns the number of records.
func (s Snapshot) Len() int { return len(s.Data) }

// Record decodes record i. Entries migrated from foreign files may not
// match the record shape; those fields are left zero.
func (s Snapshot) Record(i int) (domain.Record, error) {
	var rec domain.Record
	err := json.Unmarshal(s.Data[i], &rec)
	return rec, err
}

// Latest decodes the newest record.
func (s Snapshot) Latest() (domain.Record, bool) {
	if len(s.Data) == 0 {
		return domain.Record{}, false
	}
	rec, err := s.Record(len(s.Data) - 1)
	return rec, err == nil
}
