// internal/infra/storage/json_recipient_repository.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"hort_notification_bot/internal/domain/recipient"
)

// JSONRecipientRepository implements recipient.Repository on top of an
// ordered JSON list file. The list is append-only: recipients are never
// updated or removed.
type JSONRecipientRepository struct {
	path string
}

func NewJSONRecipientRepository(path string) *JSONRecipientRepository {
	return &JSONRecipientRepository{path: path}
}

// List returns all recipients in file order. A missing file is an empty
// list, not an error.
func (r *JSONRecipientRepository) List() ([]recipient.Recipient, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recipient list %s: %w", r.path, err)
	}

	var list []recipient.Recipient
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse recipient list %s: %w", r.path, err)
	}
	return list, nil
}

// Add appends a recipient to the list. Duplicate ids and unknown kinds are
// rejected with ErrRecipientExists and ErrInvalidKind respectively.
func (r *JSONRecipientRepository) Add(rcpt recipient.Recipient) error {
	if !rcpt.Kind.Valid() {
		return ErrInvalidKind
	}

	list, err := r.List()
	if err != nil {
		return err
	}
	for _, existing := range list {
		if existing.ID == rcpt.ID {
			return ErrRecipientExists
		}
	}

	list = append(list, rcpt)
	data, err := json.MarshalIndent(list, "", "    ")
	if err != nil {
		return fmt.Errorf("encode recipient list: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write recipient list %s: %w", r.path, err)
	}
	return nil
}
