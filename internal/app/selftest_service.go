// internal/app/selftest_service.go
package app

import (
	"context"
	"os"
	"time"

	"hort_notification_bot/internal/domain/delivery"
	"hort_notification_bot/internal/domain/recipient"

	"github.com/sirupsen/logrus"
)

// SelfTestService validates the delivery path without waiting for real
// presence data: one synthetic check-in and one synthetic check-out per
// recipient, then the sentinel marker is removed.
type SelfTestService struct {
	delivery delivery.Client
	pause    time.Duration
	log      *logrus.Entry

	// Set when a completed round could not remove its marker. While set,
	// only the removal is retried, so a stuck marker does not trigger the
	// synthetic messages again every cycle.
	removalPending bool
}

func NewSelfTestService(deliveryClient delivery.Client, pause time.Duration, log *logrus.Entry) *SelfTestService {
	return &SelfTestService{
		delivery: deliveryClient,
		pause:    pause,
		log:      log,
	}
}

// Run executes one self-test round and removes the sentinel file. Delivery
// failures are logged but do not abort the round or keep the sentinel.
func (s *SelfTestService) Run(ctx context.Context, sentinelPath string, recipients []recipient.Recipient) {
	if s.removalPending {
		if err := os.Remove(sentinelPath); err != nil {
			s.log.WithError(err).Error("Self-test marker still cannot be removed")
			return
		}
		s.removalPending = false
		s.log.Info("Leftover self-test marker removed. Resuming normal operation.")
		return
	}

	s.log.WithField("recipients", len(recipients)).Info("Self-test marker found. Running self-test round.")

	s.broadcast(ctx, recipients, "Test Mode: Your child has checked in.")
	s.wait(ctx)
	s.broadcast(ctx, recipients, "Test Mode: Your child has checked out.")

	if err := os.Remove(sentinelPath); err != nil {
		s.removalPending = true
		s.log.WithError(err).Error("Could not remove self-test marker. Holding off further rounds until it is gone.")
	} else {
		s.log.Info("Self-test completed. Marker removed. Resuming normal operation.")
	}
}

func (s *SelfTestService) broadcast(ctx context.Context, recipients []recipient.Recipient, message string) {
	for _, rcpt := range recipients {
		if err := s.delivery.Send(ctx, rcpt, message); err != nil {
			s.log.WithError(err).WithField("recipient", rcpt.ID).Error("Self-test message failed")
		}
	}
}

func (s *SelfTestService) wait(ctx context.Context) {
	if s.pause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.pause):
	}
}
