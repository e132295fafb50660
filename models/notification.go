package models

import "time"

type NotificationType string

const (
	NotificationBooking  NotificationType = "booking"
	NotificationPayment  NotificationType = "payment"
	NotificationReminder NotificationType = "reminder"
)

type Notification struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"user_id"`
	EventID   *int64           `db:"event_id" json:"event_id,omitempty"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

func (n Notification) TableName() string {
	return "notifications"
}
