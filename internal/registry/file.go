package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileRegistry stores the registry as a JSON object of string values in a
// single local file. Writes go to a temporary file that is renamed over the
// target, so readers never see a partial file.
type FileRegistry struct {
	path string
}

// NewFileRegistry creates a registry backed by path, creating its directory.
func NewFileRegistry(path string) (*FileRegistry, error) {
	if path == "" {
		path = "./data/registry.json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create registry dir: %w", err)
	}
	return &FileRegistry{path: path}, nil
}

// Load reads the registry file. A missing file yields the defaults.
func (r *FileRegistry) Load(_ context.Context) (State, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Decode(nil)
	}
	if err != nil {
		return State{}, fmt.Errorf("read registry: %w", err)
	}

	var kv map[string]string
	if err := json.Unmarshal(data, &kv); err != nil {
		return State{}, fmt.Errorf("parse registry: %w", err)
	}
	return Decode(kv)
}

// Save replaces the registry file with s.
func (r *FileRegistry) Save(_ context.Context, s State) error {
	kv, err := Encode(s)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".registry-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close registry: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}
