// internal/domain/recipient/recipient.go
package recipient

// Kind distinguishes a direct contact from a group chat. The value is part
// of the recipient list file format.
type Kind string

const (
	KindIndividual Kind = "individual"
	KindGroup      Kind = "group"
)

// Valid reports whether k is one of the known recipient kinds.
func (k Kind) Valid() bool {
	return k == KindIndividual || k == KindGroup
}

// Recipient is a messaging destination registered to receive presence
// notifications. ID is a phone number for individuals and a group
// identifier for groups; it is unique within the recipient list.
type Recipient struct {
	Kind Kind   `json:"type"`
	ID   string `json:"id"`
}
