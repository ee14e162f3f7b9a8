// internal/domain/presence/repository.go
package presence

// StateRepository persists the per-recipient notification state across
// process restarts. The mapping is keyed by recipient id and rewritten in
// full on every save; the repository is the sole writer of the backing file.
type StateRepository interface {
	Load() (map[string]*RecipientState, error)
	Save(states map[string]*RecipientState) error
}
