// internal/domain/presence/portal.go
package presence

import (
	"context"
	"time"
)

// Portal defines the operations the monitor needs from the daycare portal.
// This decouples the application logic from the concrete HTTP client.
type Portal interface {
	// EnsureSession loads a persisted session if one exists, validates it
	// with a cheap probe, and logs in from scratch otherwise.
	EnsureSession(ctx context.Context) error
	// KidID returns the id of the first child on the account.
	KidID(ctx context.Context) (string, error)
	// TodayRecord fetches the latest presence rows for the child and returns
	// the record whose start date falls on now's calendar day, or nil if the
	// portal has no row for today yet.
	TodayRecord(ctx context.Context, kidID string, now time.Time) (*Record, error)
	// DropSession discards the persisted session credentials so the next
	// EnsureSession performs a fresh login.
	DropSession()
}
