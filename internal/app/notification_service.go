// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"hort_notification_bot/internal/domain/delivery"
	"hort_notification_bot/internal/domain/presence"
	"hort_notification_bot/internal/domain/recipient"

	"github.com/sirupsen/logrus"
)

// NotificationService is the per-recipient, per-day notification state
// machine: each recipient gets at most one check-in and at most one
// check-out message per day, across any number of poll cycles and process
// restarts. It owns the in-memory state mapping and persists it through
// the state repository after every cycle.
type NotificationService struct {
	stateRepo presence.StateRepository
	delivery  delivery.Client
	states    map[string]*presence.RecipientState
	log       *logrus.Entry
}

func NewNotificationService(
	stateRepo presence.StateRepository,
	deliveryClient delivery.Client,
	log *logrus.Entry,
) *NotificationService {
	states, err := stateRepo.Load()
	if err != nil {
		// A corrupt or unreadable state file is not fatal; the day-rollover
		// reset rebuilds state, at the price of possibly repeating today's
		// notifications once.
		log.WithError(err).Warn("Could not load stored notification state, starting fresh")
		states = make(map[string]*presence.RecipientState)
	}
	log.WithField("recipients", len(states)).Info("Notification state loaded")

	return &NotificationService{
		stateRepo: stateRepo,
		delivery:  deliveryClient,
		states:    states,
		log:       log,
	}
}

// Process runs one poll cycle: it evaluates today's presence record against
// every recipient's stored state, delivers whatever is still outstanding,
// and persists the full state mapping afterwards regardless of whether
// anything was sent.
func (s *NotificationService) Process(ctx context.Context, recipients []recipient.Recipient, rec presence.Record, now time.Time) {
	for _, rcpt := range recipients {
		state := s.states[rcpt.ID]

		// New-day rollover: a missing state or a stored date_start on a
		// different calendar day resets both flags before evaluation.
		if state == nil || state.DateStart == nil || !presence.SameDay(*state.DateStart, now) {
			state = &presence.RecipientState{}
			s.states[rcpt.ID] = state
		}
		state.DateStart = rec.DateStart
		state.DateEnd = rec.DateEnd

		logCtx := s.log.WithField("recipient", rcpt.ID)

		if rec.DateStart != nil && !state.StartMsgSent {
			message := fmt.Sprintf("Your child has been at the daycare since %s.", rec.DateStart.Format("15:04"))
			if err := s.delivery.Send(ctx, rcpt, message); err != nil {
				// Flag stays unset: the send is retried next cycle.
				logCtx.WithError(err).Error("Check-in notification failed")
			} else {
				state.StartMsgSent = true
				logCtx.Info("Check-in notification sent")
			}
		}

		if rec.DateEnd != nil && !state.EndMsgSent {
			message := fmt.Sprintf("Your child left the daycare at %s.", rec.DateEnd.Format("15:04"))
			if err := s.delivery.Send(ctx, rcpt, message); err != nil {
				logCtx.WithError(err).Error("Check-out notification failed")
			} else {
				state.EndMsgSent = true
				logCtx.Info("Check-out notification sent")
			}
		}
	}

	if err := s.stateRepo.Save(s.states); err != nil {
		// In-memory state stays authoritative until the next successful
		// write.
		s.log.WithError(err).Error("Could not persist notification state")
	}
}
