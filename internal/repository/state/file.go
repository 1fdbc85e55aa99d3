package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/activity-monitor/internal/config"
	domain "github.com/oshokin/activity-monitor/internal/domain/activity"
	"github.com/oshokin/activity-monitor/internal/repository/fsutil"
)

// Repository defines persistence operations for the StateRecord.
type Repository interface {
	Load(ctx context.Context) (*domain.StateRecord, error)
	Save(ctx context.Context, state *domain.StateRecord) error
}

// FileRepository persists the StateRecord to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu serializes access between the loop and CLI commands of the same process.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the state file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.StateRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var rec record
	if err = json.Unmarshal(contents, &rec); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return fromRecord(&rec), nil
}

// Save replaces the state file with the JSON representation of state.
func (r *FileRepository) Save(_ context.Context, state *domain.StateRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(toRecord(state))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = fsutil.WriteFileAtomic(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}
