// internal/domain/presence/presence.go
package presence

import "time"

// Record holds the child's check-in/check-out timestamps for a single
// calendar day, as reported by the portal. Either field may be absent
// (check-out is typically missing until the afternoon).
type Record struct {
	DateStart *time.Time
	DateEnd   *time.Time
}

// RecipientState tracks which notifications a single recipient has already
// received for the day stored in DateStart. Serialized as-is into the
// notification state file.
type RecipientState struct {
	DateStart    *time.Time `json:"date_start"`
	DateEnd      *time.Time `json:"date_end"`
	StartMsgSent bool       `json:"start_msg_sent"`
	EndMsgSent   bool       `json:"end_msg_sent"`
}

// SameDay reports whether a and b fall on the same calendar day in a's
// location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
