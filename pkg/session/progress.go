package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akiliapp/lms/pkg/lms"
)

// ProgressCache stores the last known module progress per user, one file per
// user id. It is only read on explicit request, never as a fallback for a
// live backend.
type ProgressCache struct {
	dir string
}

// NewProgressCache returns a cache rooted at dir.
func NewProgressCache(dir string) *ProgressCache {
	return &ProgressCache{dir: dir}
}

func (c *ProgressCache) path(userID string) string {
	safe := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, userID)
	return filepath.Join(c.dir, "progress-"+safe+".json")
}

// Load returns the cached records for userID, or nil when nothing is cached.
func (c *ProgressCache) Load(userID string) ([]lms.ModuleProgress, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	data, err := os.ReadFile(c.path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read progress cache: %w", err)
	}
	var records []lms.ModuleProgress
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid progress cache: %w", err)
	}
	return records, nil
}

// Save replaces the cached records for userID.
func (c *ProgressCache) Save(userID string, records []lms.ModuleProgress) error {
	if userID == "" {
		return ErrNoSession
	}
	if records == nil {
		records = []lms.ModuleProgress{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode progress cache: %w", err)
	}
	return writePrivate(c.path(userID), data)
}

// Clear removes the cached records for userID.
func (c *ProgressCache) Clear(userID string) error {
	if err := os.Remove(c.path(userID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear progress cache: %w", err)
	}
	return nil
}
