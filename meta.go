package binhash

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// formatVersion identifies the on-disk record layout (record.go). Bumped
// only if the layout itself changes; the store metadata lets Open reject a
// directory written by an incompatible version instead of corrupting it.
const formatVersion = 1

const metaFileName = "meta.json"

// storeMeta is the sidecar persisted when a store is first created (by
// Create, or by Open on a directory without one) and validated on every
// later Open, so the store remembers its own shard count N instead of
// trusting every caller to pass the same value.
type storeMeta struct {
	ShardCount    int `json:"shard_count"`
	FormatVersion int `json:"format_version"`
}

func metaPath(dir string) string {
	return filepath.Join(dir, metaFileName)
}

// writeMeta persists shardCount, overwriting any existing metadata. Called
// from Create, after it has cleared the directory, and from Open when the
// directory holds no metadata yet.
func writeMeta(dir string, shardCount int) error {
	meta := storeMeta{ShardCount: shardCount, FormatVersion: formatVersion}
	buf, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("binhash: encode store metadata: %w", err)
	}
	if err := os.WriteFile(metaPath(dir), buf, 0o644); err != nil {
		return fmt.Errorf("binhash: write store metadata: %w", err)
	}
	return nil
}

// readMeta loads the persisted metadata. A missing file is reported via the
// returned bool so Open can distinguish "never created with metadata" (an
// older or foreign directory) from a read failure.
func readMeta(dir string) (storeMeta, bool, error) {
	buf, err := os.ReadFile(metaPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return storeMeta{}, false, nil
		}
		return storeMeta{}, false, fmt.Errorf("binhash: read store metadata: %w", err)
	}
	var meta storeMeta
	if err := json.Unmarshal(buf, &meta); err != nil {
		return storeMeta{}, false, fmt.Errorf("binhash: decode store metadata: %w", err)
	}
	return meta, true, nil
}
