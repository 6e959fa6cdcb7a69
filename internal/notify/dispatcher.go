package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"go.uber.org/zap"
)

// Intent is a notification to be delivered to one user over one or more
// channels. Workflow services emit intents; delivery is asynchronous and
// best-effort, so a failed delivery never rolls back the workflow action
// that produced it.
type Intent struct {
	UserID   uuid.UUID
	Type     domain.NotificationType
	Title    string
	Message  string
	Channels []domain.NotificationChannel
	Metadata domain.JSONMap
}

// Dispatcher accepts notification intents for asynchronous delivery
type Dispatcher interface {
	Dispatch(intents ...Intent)
}

// Sender delivers a single intent over one channel
type Sender interface {
	Send(ctx context.Context, intent Intent) error
}

// SystemStore persists SYSTEM-channel notifications
type SystemStore interface {
	Create(ctx context.Context, notification *domain.Notification) error
}

// QueueDispatcher delivers intents from a buffered queue with a small
// worker pool. A full queue drops the intent with a warning rather than
// blocking the caller.
type QueueDispatcher struct {
	queue   chan Intent
	senders map[domain.NotificationChannel]Sender
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool

	wg     sync.WaitGroup
	cancel context.CancelFunc

	closeOnce sync.Once
}

// NewQueueDispatcher creates a dispatcher and starts its workers
func NewQueueDispatcher(queueSize, workers int, senders map[domain.NotificationChannel]Sender, logger *zap.Logger) *QueueDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &QueueDispatcher{
		queue:   make(chan Intent, queueSize),
		senders: senders,
		logger:  logger,
		cancel:  cancel,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}

	return d
}

// Dispatch enqueues intents without blocking. Intents dispatched after
// Close are dropped with a warning.
func (d *QueueDispatcher) Dispatch(intents ...Intent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("dispatcher closed, dropping intents",
			zap.Int("count", len(intents)),
		)
		return
	}

	for _, intent := range intents {
		select {
		case d.queue <- intent:
		default:
			d.logger.Warn("notification queue full, dropping intent",
				zap.String("user_id", intent.UserID.String()),
				zap.String("type", string(intent.Type)),
			)
		}
	}
}

// Close stops the workers after draining queued intents
func (d *QueueDispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()

		d.wg.Wait()
		d.cancel()
	})
}

func (d *QueueDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for intent := range d.queue {
		d.deliver(ctx, intent)
	}
}

// deliver fans one intent out to its channels. Failures on one channel
// are logged and do not stop delivery on the remaining channels.
func (d *QueueDispatcher) deliver(ctx context.Context, intent Intent) {
	channels := intent.Channels
	if len(channels) == 0 {
		channels = []domain.NotificationChannel{domain.ChannelSystem}
	}

	for _, channel := range channels {
		sender, ok := d.senders[channel]
		if !ok {
			d.logger.Warn("no sender registered for channel",
				zap.String("channel", string(channel)),
				zap.String("type", string(intent.Type)),
			)
			continue
		}
		if err := sender.Send(ctx, intent); err != nil {
			d.logger.Error("notification delivery failed",
				zap.String("channel", string(channel)),
				zap.String("user_id", intent.UserID.String()),
				zap.String("type", string(intent.Type)),
				zap.Error(err),
			)
		}
	}
}
