// internal/infra/storage/json_state_repository.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"hort_notification_bot/internal/domain/presence"
)

// JSONStateRepository implements presence.StateRepository on top of a JSON
// file mapping recipient id to notification state. The mapping is rewritten
// in full on every save; this repository is the sole writer of the file.
type JSONStateRepository struct {
	path string
}

func NewJSONStateRepository(path string) *JSONStateRepository {
	return &JSONStateRepository{path: path}
}

// Load returns the persisted state mapping. A missing file yields an empty
// mapping, not an error.
func (r *JSONStateRepository) Load() (map[string]*presence.RecipientState, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]*presence.RecipientState), nil
		}
		return nil, fmt.Errorf("read notification state %s: %w", r.path, err)
	}

	states := make(map[string]*presence.RecipientState)
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("parse notification state %s: %w", r.path, err)
	}
	return states, nil
}

// Save rewrites the full state mapping.
func (r *JSONStateRepository) Save(states map[string]*presence.RecipientState) error {
	data, err := json.MarshalIndent(states, "", "    ")
	if err != nil {
		return fmt.Errorf("encode notification state: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write notification state %s: %w", r.path, err)
	}
	return nil
}
