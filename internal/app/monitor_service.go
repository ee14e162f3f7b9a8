// internal/app/monitor_service.go
package app

import (
	"context"
	"os"
	"time"

	"hort_notification_bot/internal/domain/presence"
	"hort_notification_bot/internal/domain/recipient"
	"hort_notification_bot/internal/infra/schedule"

	"github.com/sirupsen/logrus"
)

const (
	// errorBackoff is the fixed sleep after any failed or panicked loop
	// iteration. The loop itself never terminates on a transient error.
	errorBackoff = 60 * time.Second

	// emptyScheduleSleep is the fallback sleep when the schedule has no
	// windows at all, to avoid busy-looping on a malformed schedule file.
	emptyScheduleSleep = 1 * time.Hour
)

// MonitorService drives the poll loop: it sleeps outside the configured
// polling windows, polls the portal at a fixed cadence inside them, feeds
// today's presence record into the notification state machine, and runs
// the self-test round when the sentinel marker appears.
type MonitorService struct {
	portal        presence.Portal
	notifications *NotificationService
	selfTest      *SelfTestService
	recipientRepo recipient.Repository
	sched         schedule.Schedule

	pollInterval time.Duration
	selfTestPath string
	log          *logrus.Entry

	// Injected in tests; time.Now and sleepCtx in production.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func NewMonitorService(
	portal presence.Portal,
	notifications *NotificationService,
	selfTest *SelfTestService,
	recipientRepo recipient.Repository,
	sched schedule.Schedule,
	pollInterval time.Duration,
	selfTestPath string,
	log *logrus.Entry,
) *MonitorService {
	return &MonitorService{
		portal:        portal,
		notifications: notifications,
		selfTest:      selfTest,
		recipientRepo: recipientRepo,
		sched:         sched,
		pollInterval:  pollInterval,
		selfTestPath:  selfTestPath,
		log:           log,
		now:           time.Now,
		sleep:         sleepCtx,
	}
}

// Run blocks until ctx is cancelled. Every iteration is guarded: panics are
// recovered and errors lead to a fixed back-off, never to termination.
func (s *MonitorService) Run(ctx context.Context) {
	s.log.Info("Monitor loop started")
	for ctx.Err() == nil {
		s.runIteration(ctx)
	}
	s.log.Info("Monitor loop stopped")
}

func (s *MonitorService) runIteration(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Recovered from panic in monitor loop: %v", r)
			s.sleep(ctx, errorBackoff)
		}
	}()

	if s.selfTestPending() {
		s.selfTest.Run(ctx, s.selfTestPath, s.loadRecipients())
		return
	}

	now := s.now()
	within, windowEnd := s.sched.WithinWindow(now)
	if !within {
		if next, ok := s.sched.NextWindowStart(now); ok {
			s.log.WithField("next_window", next.Format("2006-01-02 15:04")).
				Info("Outside polling windows. Sleeping until next window.")
			s.sleep(ctx, next.Sub(now))
		} else {
			s.log.Info("No polling windows configured. Sleeping for 1 hour.")
			s.sleep(ctx, emptyScheduleSleep)
		}
		return
	}

	s.pollWindow(ctx, windowEnd)
}

// pollWindow runs the Inside-Window state: session setup, child lookup with
// one forced re-login retry, then the fixed-cadence poll loop until the
// window closes.
func (s *MonitorService) pollWindow(ctx context.Context, windowEnd time.Time) {
	s.log.WithField("window_end", windowEnd.Format("15:04")).Info("Inside polling window. Starting portal polling.")

	if err := s.portal.EnsureSession(ctx); err != nil {
		s.log.WithError(err).Error("Could not establish portal session")
		s.sleep(ctx, errorBackoff)
		return
	}

	kidID, err := s.portal.KidID(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Could not resolve child id. Discarding stored session and retrying with a fresh login.")
		s.portal.DropSession()
		if err = s.portal.EnsureSession(ctx); err == nil {
			kidID, err = s.portal.KidID(ctx)
		}
		if err != nil {
			s.log.WithError(err).Error("Still no child id after fresh login. Skipping this window.")
			s.sleep(ctx, errorBackoff)
			return
		}
	}

	for ctx.Err() == nil {
		if s.selfTestPending() {
			s.selfTest.Run(ctx, s.selfTestPath, s.loadRecipients())
		}

		now := s.now()
		if within, _ := s.sched.WithinWindow(now); !within {
			s.log.Info("Polling window closed. Going back to sleep.")
			return
		}

		rec, err := s.portal.TodayRecord(ctx, kidID, now)
		switch {
		case err != nil:
			s.log.WithError(err).Warn("No presence data this cycle")
		case rec == nil:
			s.log.Info("No presence row for today yet")
		default:
			s.notifications.Process(ctx, s.loadRecipients(), *rec, now)
		}

		s.sleep(ctx, s.pollInterval)
	}
}

// loadRecipients re-reads the recipient list each cycle so additions via
// the addrecipient tool take effect without a restart. A read failure
// yields an empty list for this cycle.
func (s *MonitorService) loadRecipients() []recipient.Recipient {
	recipients, err := s.recipientRepo.List()
	if err != nil {
		s.log.WithError(err).Error("Could not load recipient list")
		return nil
	}
	if len(recipients) == 0 {
		s.log.Debug("Recipient list is empty; nothing to notify")
	}
	return recipients
}

func (s *MonitorService) selfTestPending() bool {
	info, err := os.Stat(s.selfTestPath)
	return err == nil && !info.IsDir()
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
