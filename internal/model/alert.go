package model

import "time"

// Alert records one new-item event: a notification observed unread for the
// first time by a synchronizer.
type Alert struct {
	ID             int64     `json:"id"`
	EventID        string    `json:"event_id"`
	Source         string    `json:"source"`
	NotificationID string    `json:"notification_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	DeliveredAt    time.Time `json:"delivered_at"`
}
