package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// errStaleCache means the cache file exists but was built for another
// catalog or encoder.
var errStaleCache = errors.New("stale index cache")

// loadCache reads vectors persisted for the given encoder and catalog
// fingerprint. It returns os.ErrNotExist when there is no cache file and
// errStaleCache when the file does not match.
func loadCache(path, encoder, fingerprint string, size int) ([][]float32, time.Time, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read index cache: %w", err)
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode index cache: %w", err)
	}

	if cf.Encoder != encoder || cf.Fingerprint != fingerprint || len(cf.Vectors) != size {
		return nil, time.Time{}, errStaleCache
	}
	for _, v := range cf.Vectors {
		if len(v) != cf.Dim {
			return nil, time.Time{}, fmt.Errorf("%w: vector length %d, want %d", errStaleCache, len(v), cf.Dim)
		}
	}
	return cf.Vectors, cf.UpdatedAt, nil
}

// saveCache persists vectors next to the metadata needed to validate them.
func saveCache(path, encoder, fingerprint string, vectors [][]float32, updatedAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	data, err := json.Marshal(cacheFile{
		Encoder:     encoder,
		Fingerprint: fingerprint,
		Dim:         dim,
		UpdatedAt:   updatedAt,
		Vectors:     vectors,
	})
	if err != nil {
		return fmt.Errorf("marshal index cache: %w", err)
	}

	// Readers never observe a partially written cache.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write index cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace index cache: %w", err)
	}
	return nil
}
