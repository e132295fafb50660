package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"booking-system/internal/status"
	"booking-system/models"
)

type UserStore struct{}

func (s *UserStore) Get(ctx context.Context, db dbx.Builder, id int64) (*models.User, error) {
	var u models.User
	err := db.NewQuery(`SELECT * FROM users WHERE id = {:id}`).
		Bind(dbx.Params{"id": id}).
		WithContext(ctx).
		One(&u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Create inserts a user with a bcrypt-hashed password.
func (s *UserStore) Create(ctx context.Context, db dbx.Builder, u *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	err = db.NewQuery(`
		INSERT INTO users (username, email, password_hash, phone, role)
		VALUES ({:username}, {:email}, {:hash}, {:phone}, {:role})
		RETURNING id`).
		Bind(dbx.Params{
			"username": u.Username,
			"email":    u.Email,
			"hash":     u.PasswordHash,
			"phone":    u.Phone,
			"role":     u.Role,
		}).
		WithContext(ctx).
		Row(&u.ID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// AddSpent credits the user's lifetime spend counter. Only the payment
// confirmation flow calls this, inside its transaction.
func (s *UserStore) AddSpent(ctx context.Context, db dbx.Builder, id int64, amount decimal.Decimal) error {
	_, err := db.NewQuery(`
		UPDATE users
		   SET total_spent = total_spent + {:amount}, updated_at = NOW()
		 WHERE id = {:id}`).
		Bind(dbx.Params{"id": id, "amount": amount}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("add user spend: %w", err)
	}
	return nil
}
