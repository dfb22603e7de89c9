package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	saveDirName  = "Wall 2 Wall"
	saveFileName = "save.json"
)

type saveFile struct {
	Score int `json:"score"`
}

// FileStore keeps the best score of the local player in a JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSavePath returns save.json under the user config directory.
func DefaultSavePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, saveDirName, saveFileName), nil
}

func (f *FileStore) Path() string {
	return f.path
}

// Load returns 0 when no save file exists yet.
func (f *FileStore) Load(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read save file: %w", err)
	}

	var s saveFile
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("parse save file %s: %w", f.path, err)
	}
	if s.Score < 0 {
		return 0, fmt.Errorf("save file %s holds negative score %d", f.path, s.Score)
	}
	return s.Score, nil
}

// Save replaces the file atomically through a temp file.
func (f *FileStore) Save(ctx context.Context, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(saveFile{Score: score})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write save file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace save file: %w", err)
	}
	return nil
}
