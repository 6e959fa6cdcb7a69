package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/repository"
	"github.com/lankaline/freight-api/internal/service"
	"github.com/lankaline/freight-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, notificationType domain.NotificationType) *domain.Notification {
	t.Helper()
	notification := &domain.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   "Test notification",
		Message: "Something happened",
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestNotificationService_Inbox(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewNotificationService(repository.NewNotificationRepository(db), zap.NewNop())

	owner := testutil.CreateTestUser(t, db, domain.RoleSales)
	stranger := testutil.CreateTestUser(t, db, domain.RoleSales)
	ownerCtx := userContext(owner)

	seedNotification(t, db, owner.ID, domain.NotificationTypeRateRequestCreated)
	seedNotification(t, db, owner.ID, domain.NotificationTypeBookingDecided)
	seedNotification(t, db, stranger.ID, domain.NotificationTypeBookingDecided)

	t.Run("listing is scoped to the caller", func(t *testing.T) {
		result, err := svc.GetForCurrentUser(ownerCtx, 1, 20, false, "")
		require.NoError(t, err)
		assert.EqualValues(t, 2, result.Total)
	})

	t.Run("type filter applies", func(t *testing.T) {
		result, err := svc.GetForCurrentUser(ownerCtx, 1, 20, false, string(domain.NotificationTypeBookingDecided))
		require.NoError(t, err)
		assert.EqualValues(t, 1, result.Total)
	})

	t.Run("reading another user's notification is denied", func(t *testing.T) {
		theirs := seedNotification(t, db, stranger.ID, domain.NotificationTypeRateExpiring)
		_, err := svc.GetByID(ownerCtx, theirs.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("mark as read is idempotent", func(t *testing.T) {
		notification := seedNotification(t, db, owner.ID, domain.NotificationTypeRateExpiring)
		require.NoError(t, svc.MarkAsRead(ownerCtx, notification.ID))
		require.NoError(t, svc.MarkAsRead(ownerCtx, notification.ID))

		dto, err := svc.GetByID(ownerCtx, notification.ID)
		require.NoError(t, err)
		assert.True(t, dto.Read)
		assert.NotNil(t, dto.ReadAt)
	})

	t.Run("unread count and read-all", func(t *testing.T) {
		count, err := svc.GetUnreadCount(ownerCtx)
		require.NoError(t, err)
		assert.Greater(t, count.Count, 0)

		require.NoError(t, svc.MarkAllAsReadForUser(ownerCtx))

		count, err = svc.GetUnreadCount(ownerCtx)
		require.NoError(t, err)
		assert.Zero(t, count.Count)
	})

	t.Run("missing user context is rejected", func(t *testing.T) {
		_, err := svc.GetForCurrentUser(context.Background(), 1, 20, false, "")
		assert.ErrorIs(t, err, service.ErrUserContextRequired)
	})

	t.Run("unknown notification id", func(t *testing.T) {
		_, err := svc.GetByID(ownerCtx, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
