package notify

import (
	"context"

	"github.com/lankaline/freight-api/internal/domain"
	"go.uber.org/zap"
)

// SystemSender persists notifications for the in-app inbox
type SystemSender struct {
	store SystemStore
}

func NewSystemSender(store SystemStore) *SystemSender {
	return &SystemSender{store: store}
}

func (s *SystemSender) Send(ctx context.Context, intent Intent) error {
	notification := &domain.Notification{
		UserID:   intent.UserID,
		Type:     intent.Type,
		Title:    intent.Title,
		Message:  intent.Message,
		Metadata: intent.Metadata,
	}
	return s.store.Create(ctx, notification)
}

// LogEmailSender records the outbound email in the log. The mail gateway
// integration lives outside this service; it tails these entries in
// lower environments.
type LogEmailSender struct {
	logger *zap.Logger
}

func NewLogEmailSender(logger *zap.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

func (s *LogEmailSender) Send(_ context.Context, intent Intent) error {
	s.logger.Info("email notification",
		zap.String("user_id", intent.UserID.String()),
		zap.String("type", string(intent.Type)),
		zap.String("subject", intent.Title),
	)
	return nil
}

// LogSMSSender records the outbound SMS in the log
type LogSMSSender struct {
	logger *zap.Logger
}

func NewLogSMSSender(logger *zap.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger}
}

func (s *LogSMSSender) Send(_ context.Context, intent Intent) error {
	s.logger.Info("sms notification",
		zap.String("user_id", intent.UserID.String()),
		zap.String("type", string(intent.Type)),
		zap.String("message", intent.Message),
	)
	return nil
}
