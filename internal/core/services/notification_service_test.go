package services

import (
	"context"
	"testing"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestNotificationService(db *gorm.DB) *NotificationService {
	return NewNotificationService(repositories.NewNotificationRepository(db))
}

func seedNotification(t *testing.T, db *gorm.DB, userID uint, read bool) *models.Notification {
	t.Helper()

	n := &models.Notification{
		UserID:  userID,
		Type:    models.NotificationTypeSessionStart,
		Title:   "Wash session started",
		Message: "Machine WM-001 started for 10 minutes",
		IsRead:  read,
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestNotificationListUnreadFilter(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", 0)
	bob := seedUser(t, db, "bob", 0)

	seedNotification(t, db, alice.ID, false)
	seedNotification(t, db, alice.ID, true)
	seedNotification(t, db, bob.ID, false)

	out, err := svc.List(ctx, alice.ID, false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)

	out, err = svc.List(ctx, alice.ID, true, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), out.Total)
	assert.False(t, out.Notifications[0].IsRead)

	count, err := svc.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationMarkRead(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", 0)
	bob := seedUser(t, db, "bob", 0)

	n := seedNotification(t, db, alice.ID, false)

	// a user cannot touch someone else's notification
	assert.ErrorIs(t, svc.MarkRead(ctx, n.ID, bob.ID), ErrNotificationNotFound)

	require.NoError(t, svc.MarkRead(ctx, n.ID, alice.ID))

	count, err := svc.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	assert.ErrorIs(t, svc.MarkRead(ctx, 999, alice.ID), ErrNotificationNotFound)
}

func TestNotificationMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", 0)
	bob := seedUser(t, db, "bob", 0)

	seedNotification(t, db, alice.ID, false)
	seedNotification(t, db, alice.ID, false)
	seedNotification(t, db, bob.ID, false)

	require.NoError(t, svc.MarkAllRead(ctx, alice.ID))

	count, err := svc.CountUnread(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// untouched for other users
	count, err = svc.CountUnread(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
