package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/justapithecus/seam/types"
)

// EncodeRecord serializes a run record to its persisted msgpack form.
func EncodeRecord(record *types.RunRecord) ([]byte, error) {
	data, err := msgpack.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode run record: %w", err)
	}
	return data, nil
}

// DecodeRecord deserializes a persisted run record.
func DecodeRecord(data []byte) (*types.RunRecord, error) {
	var record types.RunRecord
	if err := msgpack.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode run record: %w", err)
	}
	return &record, nil
}

// keyFilename derives a filesystem/object-safe name from a partition key.
// Partition values may contain arbitrary characters, so the canonical key
// string is hashed rather than sanitized; the record itself carries the
// full key for recovery.
func keyFilename(key types.PartitionKey) string {
	sum := sha256.Sum256([]byte(key.String()))
	return hex.EncodeToString(sum[:8]) + ".msgpack"
}
