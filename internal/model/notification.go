package model

import "time"

// NotificationKind distinguishes success feedback from failures.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a transient status message shown to the user. Every
// notification is also kept in the local activity log.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// Kind is success or error.
	Kind NotificationKind `json:"kind" db:"kind"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// CreatedAt is when this notification was raised.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
