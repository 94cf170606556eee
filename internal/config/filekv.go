package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileKV is a JSON-file string map used where no Fyne app exists (CLI).
// SetString only updates memory; Flush writes the file.
type FileKV struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// OpenFileKV loads path, treating a missing file as empty.
func OpenFileKV(path string) (*FileKV, error) {
	kv := &FileKV{path: path, values: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return kv, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}
	if err := json.Unmarshal(data, &kv.values); err != nil {
		return nil, fmt.Errorf("parsing state %s: %w", path, err)
	}
	return kv, nil
}

// String returns the value for key, or "".
func (kv *FileKV) String(key string) string {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.values[key]
}

// SetString sets key in memory.
func (kv *FileKV) SetString(key, value string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.values[key] = value
}

// Flush writes all values to disk via a temp file and rename.
func (kv *FileKV) Flush() error {
	kv.mu.Lock()
	data, err := json.MarshalIndent(kv.values, "", "  ")
	kv.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(kv.path), 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	tmp := kv.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return os.Rename(tmp, kv.path)
}
