package services

import (
	"context"
	"errors"
	"fmt"

	"smartwash-backend/internal/adapters/persistence/models"
	"smartwash-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Notification service errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationService handles in-app user notifications
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// ListOutput represents a page of notifications
type ListOutput struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
}

// NotifySessionStartTx records a session-start notification inside an
// existing transaction so it commits or rolls back with the session itself.
func (s *NotificationService) NotifySessionStartTx(ctx context.Context, tx *gorm.DB, session *models.Session, machineID uint) error {
	return s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
		UserID:    session.UserID,
		Type:      models.NotificationTypeSessionStart,
		Title:     "Wash session started",
		Message:   fmt.Sprintf("Machine %s started for %d minutes", session.MachineCode, session.Duration),
		SessionID: &session.ID,
		MachineID: &machineID,
	})
}

// NotifySessionEndTx records a session-end notification inside an existing transaction
func (s *NotificationService) NotifySessionEndTx(ctx context.Context, tx *gorm.DB, session *models.Session, title string) error {
	return s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
		UserID:    session.UserID,
		Type:      models.NotificationTypeSessionEnd,
		Title:     title,
		Message:   fmt.Sprintf("Session on machine %s is %s", session.MachineCode, session.Status),
		SessionID: &session.ID,
	})
}

// NotifyPaymentTx records a payment notification inside an existing transaction
func (s *NotificationService) NotifyPaymentTx(ctx context.Context, tx *gorm.DB, userID uint, sessionID *uint, message string) error {
	return s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
		UserID:    userID,
		Type:      models.NotificationTypePayment,
		Title:     "Wallet payment",
		Message:   message,
		SessionID: sessionID,
	})
}

// List returns a page of the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, page, limit int) (*ListOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	notifications, total, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListOutput{
		Notifications: notifications,
		Total:         total,
		Page:          page,
		Limit:         limit,
		TotalPages:    totalPages,
	}, nil
}

// CountUnread counts the user's unread notifications
func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkRead marks one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint) error {
	updated, err := s.notificationRepo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks all of the user's notifications as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
