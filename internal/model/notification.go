package model

import "time"

// Notification is the display-shaped notification mirrored from the backend.
type Notification struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	Title       string              `json:"title"`
	Message     string              `json:"message"`
	CreatedAt   time.Time           `json:"createdAt"`
	IsRead      bool                `json:"isRead"`
	Priority    string              `json:"priority,omitempty"`
	Category    string              `json:"category,omitempty"`
	ClaimID     string              `json:"claimId,omitempty"`
	Reservation *ReservationSummary `json:"reservation,omitempty"`
}

type ReservationSummary struct {
	ID        string     `json:"id"`
	Space     string     `json:"space,omitempty"`
	Date      string     `json:"date,omitempty"`
	StartTime string     `json:"startTime,omitempty"`
	EndTime   string     `json:"endTime,omitempty"`
	Status    string     `json:"status,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Snapshot is one complete answer of the backend: the list and the
// server-computed unread count, always taken together.
type Snapshot struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

// AdminRecord is the claim-linked record served under /admin/notifications.
type AdminRecord struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	CreatedAt time.Time   `json:"createdAt"`
	IsRead    bool        `json:"isRead"`
	Claim     *ClaimBrief `json:"claim"`
}

type ClaimBrief struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Priority string    `json:"priority"`
	User     ClaimUser `json:"user"`
}

type ClaimUser struct {
	Name string `json:"name"`
}

// UserRecord is served under /user/notifications and is already display-shaped.
type UserRecord = Notification
