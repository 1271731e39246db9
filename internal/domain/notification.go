package domain

import "time"

// Notification is a short user-facing message, the service-side form of a toast.
type Notification struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
