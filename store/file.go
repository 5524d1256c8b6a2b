package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/justapithecus/seam/types"
)

// FileStore persists run records as msgpack files under a root directory,
// one file per asset-partition at <root>/<asset>/<key-hash>.msgpack.
// Writes are atomic via temp file + rename.
type FileStore struct {
	root string
	mu   sync.RWMutex
}

// NewFileStore creates a file-backed store rooted at the given directory,
// creating it if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root %q: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

// Get reads and decodes the record for the key, or returns nil when absent.
func (s *FileStore) Get(_ context.Context, asset string, key types.PartitionKey) (*types.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.recordPath(asset, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read run record: %w", err)
	}
	return DecodeRecord(data)
}

// Put writes the record atomically: encode, write to a temp file in the
// same directory, then rename over the destination.
func (s *FileStore) Put(_ context.Context, record *types.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.root, record.Asset)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create asset dir %q: %w", dir, err)
	}

	dest := s.recordPath(record.Asset, record.Key)
	tmp, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return fmt.Errorf("create temp record file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write run record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close run record: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit run record: %w", err)
	}
	return nil
}

// ListByAsset decodes every record file under the asset's directory.
func (s *FileStore) ListByAsset(_ context.Context, asset string) ([]*types.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.readAsset(asset)
	if err != nil {
		return nil, err
	}
	sortRecords(records)
	return records, nil
}

// ListPending scans all assets for records in state pending.
func (s *FileStore) ListPending(_ context.Context) ([]*types.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list store root: %w", err)
	}

	var pending []*types.RunRecord
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		records, err := s.readAsset(entry.Name())
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if rec.State == types.StatePending {
				pending = append(pending, rec)
			}
		}
	}
	sortRecords(pending)
	return pending, nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) recordPath(asset string, key types.PartitionKey) string {
	return filepath.Join(s.root, asset, keyFilename(key))
}

func (s *FileStore) readAsset(asset string) ([]*types.RunRecord, error) {
	dir := filepath.Join(s.root, asset)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list asset dir %q: %w", dir, err)
	}

	var records []*types.RunRecord
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".msgpack" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read run record: %w", err)
		}
		rec, err := DecodeRecord(data)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

var _ Store = (*FileStore)(nil)
