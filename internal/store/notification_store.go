package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"

	"booking-system/models"
)

type NotificationStore struct{}

func (s *NotificationStore) Create(ctx context.Context, db dbx.Builder, n *models.Notification) error {
	err := db.NewQuery(`
		INSERT INTO notifications (user_id, event_id, type, title, message, created_at)
		VALUES ({:user}, {:event}, {:type}, {:title}, {:message}, {:created})
		RETURNING id`).
		Bind(dbx.Params{
			"user":    n.UserID,
			"event":   n.EventID,
			"type":    n.Type,
			"title":   n.Title,
			"message": n.Message,
			"created": n.CreatedAt,
		}).
		WithContext(ctx).
		Row(&n.ID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, db dbx.Builder, userID int64, unreadOnly bool) ([]*models.Notification, error) {
	q := `SELECT * FROM notifications WHERE user_id = {:user} ORDER BY created_at DESC`
	if unreadOnly {
		q = `SELECT * FROM notifications WHERE user_id = {:user} AND is_read = FALSE ORDER BY created_at DESC`
	}

	var list []*models.Notification
	err := db.NewQuery(q).
		Bind(dbx.Params{"user": userID}).
		WithContext(ctx).
		All(&list)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}
