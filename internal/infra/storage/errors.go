package storage

import "errors"

var (
	// ErrRecipientExists is returned when adding a recipient whose id is
	// already present in the list.
	ErrRecipientExists = errors.New("recipient with this id already exists")
	// ErrInvalidKind is returned when a recipient kind is neither
	// "individual" nor "group".
	ErrInvalidKind = errors.New("recipient kind must be 'individual' or 'group'")
)
