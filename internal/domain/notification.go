package domain

import "time"

// Notification is created only as a side effect of claim-state transitions.
// Marking it read is the only update path; normal flow never deletes one.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Body           string    `json:"body" dynamodbav:"body"`
	Read           int       `json:"read" dynamodbav:"read"` // 0 = unread, 1 = read
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}
