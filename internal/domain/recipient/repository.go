package recipient

// Repository defines the operations for the append-only recipient list.
// Recipients are immutable once added; there is no update or removal.
type Repository interface {
	List() ([]Recipient, error)
	Add(r Recipient) error
}
