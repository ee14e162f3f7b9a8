package app

import (
	"context"
	"errors"
	"io"
	"time"

	"hort_notification_bot/internal/domain/presence"
	"hort_notification_bot/internal/domain/recipient"

	"github.com/sirupsen/logrus"
)

// fakeDelivery records every send and can be told to fail.
type fakeDelivery struct {
	sent     []sentMessage
	failNext bool
	failAll  bool
}

type sentMessage struct {
	recipient recipient.Recipient
	message   string
}

func (f *fakeDelivery) Send(_ context.Context, rcpt recipient.Recipient, message string) error {
	if f.failAll || f.failNext {
		f.failNext = false
		return errors.New("signal-cli send failed: exit status 1")
	}
	f.sent = append(f.sent, sentMessage{recipient: rcpt, message: message})
	return nil
}

func (f *fakeDelivery) Receive(context.Context) error {
	return nil
}

func (f *fakeDelivery) messagesFor(id string) []string {
	var messages []string
	for _, s := range f.sent {
		if s.recipient.ID == id {
			messages = append(messages, s.message)
		}
	}
	return messages
}

// memStateRepo keeps the state mapping in memory and counts saves.
type memStateRepo struct {
	states  map[string]*presence.RecipientState
	saves   int
	failSet bool
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[string]*presence.RecipientState)}
}

func (r *memStateRepo) Load() (map[string]*presence.RecipientState, error) {
	copied := make(map[string]*presence.RecipientState, len(r.states))
	for id, state := range r.states {
		c := *state
		copied[id] = &c
	}
	return copied, nil
}

func (r *memStateRepo) Save(states map[string]*presence.RecipientState) error {
	if r.failSet {
		return errors.New("disk full")
	}
	r.saves++
	r.states = make(map[string]*presence.RecipientState, len(states))
	for id, state := range states {
		c := *state
		r.states[id] = &c
	}
	return nil
}

// memRecipientRepo serves a fixed recipient list.
type memRecipientRepo struct {
	recipients []recipient.Recipient
}

func (r memRecipientRepo) List() ([]recipient.Recipient, error) {
	return r.recipients, nil
}

func (r memRecipientRepo) Add(recipient.Recipient) error {
	return nil
}

// fakePortal scripts portal responses per call and counts interactions.
type fakePortal struct {
	ensureCalls int
	kidCalls    int
	dropCalls   int
	recordCalls int

	lastRecordKid string

	ensureErr error
	kidFn     func(call int) (string, error)
	recordFn  func(call int) (*presence.Record, error)
}

func (p *fakePortal) EnsureSession(context.Context) error {
	p.ensureCalls++
	return p.ensureErr
}

func (p *fakePortal) KidID(context.Context) (string, error) {
	p.kidCalls++
	return p.kidFn(p.kidCalls)
}

func (p *fakePortal) DropSession() {
	p.dropCalls++
}

func (p *fakePortal) TodayRecord(_ context.Context, kidID string, _ time.Time) (*presence.Record, error) {
	p.recordCalls++
	p.lastRecordKid = kidID
	if p.recordFn == nil {
		return nil, nil
	}
	return p.recordFn(p.recordCalls)
}

func testLogEntry() *logrus.Entry {
	logg := logrus.New()
	logg.SetOutput(io.Discard)
	return logg.WithField("component", "test")
}
