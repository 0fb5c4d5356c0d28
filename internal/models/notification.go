package models

import "time"

// NotificationType identifies what a notification points at.
type NotificationType string

const (
	NotificationMessage    NotificationType = "message"
	NotificationJob        NotificationType = "job"
	NotificationPost       NotificationType = "post"
	NotificationConnection NotificationType = "connection"
)

// Valid reports whether t is one of the known types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationMessage, NotificationJob, NotificationPost, NotificationConnection:
		return true
	}
	return false
}

// Notification is an alert pushed to the current user.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	RelatedID string           `json:"relatedId,omitempty"`
	Message   string           `json:"message,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
