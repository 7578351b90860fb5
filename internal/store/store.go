package store

import (
	"context"

	"github.com/nhle/taskclient/internal/model"
)

// HistoryLimit is the number of entries the history view shows.
const HistoryLimit = 100

// ActivityLog persists every notification the client has shown so the
// user can review feedback after a toast has been dismissed.
type ActivityLog interface {
	RecordNotification(ctx context.Context, n model.Notification) error
	RecentNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	ClearNotifications(ctx context.Context) error
}
