package notifications

import "time"

type Notification struct {
	ID         string     `json:"id"`
	BusinessID string     `json:"businessId"`
	UserID     string     `json:"userId"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
