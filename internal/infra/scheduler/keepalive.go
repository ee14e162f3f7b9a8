package scheduler

import (
	"context"
	"fmt"
	"time"

	"hort_notification_bot/internal/domain/delivery"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// keepAliveCallTimeout bounds a single keep-alive call. Must stay well
// below the scheduling interval so runs cannot pile up.
const keepAliveCallTimeout = 1 * time.Minute

// KeepAliveScheduler periodically issues a receive/sync call to the
// delivery channel so the underlying transport session does not expire.
// It runs independently of the poll loop and shares no mutable state with
// it; the delivery client serializes the actual command invocations.
type KeepAliveScheduler struct {
	cronEngine *cron.Cron
	delivery   delivery.Client
	interval   time.Duration
	log        *logrus.Entry
}

func NewKeepAliveScheduler(d delivery.Client, interval time.Duration, log *logrus.Entry) *KeepAliveScheduler {
	return &KeepAliveScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		delivery:   d,
		interval:   interval,
		log:        log,
	}
}

func (s *KeepAliveScheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cronEngine.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), keepAliveCallTimeout)
		defer cancel()

		if err := s.delivery.Receive(ctx); err != nil {
			s.log.WithError(err).Error("Keep-alive receive call failed")
			return
		}
		s.log.Debug("Keep-alive receive call completed")
	})
	if err != nil {
		return fmt.Errorf("could not add keep-alive cron job: %w", err)
	}

	s.cronEngine.Start()
	s.log.WithField("interval", s.interval.String()).Info("Keep-alive scheduler started")
	return nil
}

func (s *KeepAliveScheduler) Stop() {
	ctx := s.cronEngine.Stop() // Stops scheduling new runs, waits for running jobs.
	<-ctx.Done()
	s.log.Info("Keep-alive scheduler gracefully stopped")
}
