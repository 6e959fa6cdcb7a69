package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingSender captures delivered intents per channel
type recordingSender struct {
	mu      sync.Mutex
	intents []notify.Intent
	err     error
}

func (s *recordingSender) Send(_ context.Context, intent notify.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.intents = append(s.intents, intent)
	return nil
}

func (s *recordingSender) delivered() []notify.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notify.Intent, len(s.intents))
	copy(out, s.intents)
	return out
}

func TestQueueDispatcher_DeliversToEveryChannel(t *testing.T) {
	system := &recordingSender{}
	email := &recordingSender{}

	d := notify.NewQueueDispatcher(16, 2, map[domain.NotificationChannel]notify.Sender{
		domain.ChannelSystem: system,
		domain.ChannelEmail:  email,
	}, zap.NewNop())

	d.Dispatch(notify.Intent{
		UserID:   uuid.New(),
		Type:     domain.NotificationTypeRateExpiring,
		Title:    "Rate expiring",
		Channels: []domain.NotificationChannel{domain.ChannelSystem, domain.ChannelEmail},
	})
	d.Close()

	assert.Len(t, system.delivered(), 1)
	assert.Len(t, email.delivered(), 1)
}

func TestQueueDispatcher_DefaultsToSystemChannel(t *testing.T) {
	system := &recordingSender{}
	email := &recordingSender{}

	d := notify.NewQueueDispatcher(16, 1, map[domain.NotificationChannel]notify.Sender{
		domain.ChannelSystem: system,
		domain.ChannelEmail:  email,
	}, zap.NewNop())

	d.Dispatch(notify.Intent{UserID: uuid.New(), Type: domain.NotificationTypeBookingDecided})
	d.Close()

	assert.Len(t, system.delivered(), 1)
	assert.Empty(t, email.delivered())
}

func TestQueueDispatcher_CloseDrainsTheQueue(t *testing.T) {
	system := &recordingSender{}
	d := notify.NewQueueDispatcher(64, 1, map[domain.NotificationChannel]notify.Sender{
		domain.ChannelSystem: system,
	}, zap.NewNop())

	for i := 0; i < 20; i++ {
		d.Dispatch(notify.Intent{UserID: uuid.New(), Type: domain.NotificationTypeRateRequestCreated})
	}
	d.Close()

	assert.Len(t, system.delivered(), 20)
}

func TestQueueDispatcher_FailedChannelDoesNotBlockOthers(t *testing.T) {
	system := &recordingSender{err: errors.New("store unavailable")}
	email := &recordingSender{}

	d := notify.NewQueueDispatcher(16, 1, map[domain.NotificationChannel]notify.Sender{
		domain.ChannelSystem: system,
		domain.ChannelEmail:  email,
	}, zap.NewNop())

	d.Dispatch(notify.Intent{
		UserID:   uuid.New(),
		Type:     domain.NotificationTypeCustomerDecided,
		Channels: []domain.NotificationChannel{domain.ChannelSystem, domain.ChannelEmail},
	})
	d.Close()

	assert.Len(t, email.delivered(), 1)
}

func TestQueueDispatcher_CloseIsIdempotent(t *testing.T) {
	d := notify.NewQueueDispatcher(4, 1, nil, zap.NewNop())
	d.Close()
	require.NotPanics(t, d.Close)
}

func TestQueueDispatcher_DispatchAfterCloseIsDropped(t *testing.T) {
	system := &recordingSender{}
	d := notify.NewQueueDispatcher(4, 1, map[domain.NotificationChannel]notify.Sender{
		domain.ChannelSystem: system,
	}, zap.NewNop())
	d.Close()

	require.NotPanics(t, func() {
		d.Dispatch(notify.Intent{UserID: uuid.New(), Type: domain.NotificationTypeRateExpiring})
	})
	assert.Empty(t, system.delivered())
}

func TestCollector_RecordsByType(t *testing.T) {
	c := notify.NewCollector()
	c.Dispatch(
		notify.Intent{UserID: uuid.New(), Type: domain.NotificationTypeRateExpiring},
		notify.Intent{UserID: uuid.New(), Type: domain.NotificationTypeBookingDecided},
		notify.Intent{UserID: uuid.New(), Type: domain.NotificationTypeRateExpiring},
	)

	assert.Len(t, c.Intents(), 3)
	assert.Len(t, c.ByType(string(domain.NotificationTypeRateExpiring)), 2)

	c.Reset()
	assert.Empty(t, c.Intents())
}
