package notifications

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

// Create records an in-app notification. It satisfies payroll.Notifier.
func (s *Service) Create(ctx context.Context, businessID, userID, ntype, title, body string) error {
	return s.store.CreateNotification(ctx, Notification{
		ID:         uuid.NewString(),
		BusinessID: businessID,
		UserID:     userID,
		Type:       ntype,
		Title:      title,
		Body:       body,
	})
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, strings.TrimSpace(userID), clampLimit(limit), max(offset, 0))
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.store.CountNotifications(ctx, strings.TrimSpace(userID))
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, strings.TrimSpace(userID), notificationID)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
