package services

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"

	"booking-system/models"
)

type UserService struct {
	db            dbx.Builder
	users         UserStore
	notifications NotificationStore
}

func NewUserService(db dbx.Builder, users UserStore, notifications NotificationStore) *UserService {
	return &UserService{db: db, users: users, notifications: notifications}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Email == "" {
		return nil, fmt.Errorf("username and email are required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     "attendee",
		IsActive: true,
	}
	if err := s.users.Create(ctx, s.db, user, req.Password); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.Get(ctx, s.db, id)
}

func (s *UserService) Notifications(ctx context.Context, userID int64, unreadOnly bool) ([]*models.Notification, error) {
	return s.notifications.ListByUser(ctx, s.db, userID, unreadOnly)
}
