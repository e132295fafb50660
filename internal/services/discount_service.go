package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"

	"booking-system/models"
)

type DiscountService struct {
	db        dbx.Builder
	discounts DiscountStore
	users     UserStore
}

func NewDiscountService(db dbx.Builder, discounts DiscountStore, users UserStore) *DiscountService {
	return &DiscountService{db: db, discounts: discounts, users: users}
}

func (s *DiscountService) Create(ctx context.Context, d *models.DiscountCode) error {
	if d.DiscountPercent < 1 || d.DiscountPercent > 100 {
		return fmt.Errorf("discount percent must be between 1 and 100")
	}
	if !d.ValidTo.After(d.ValidFrom) {
		return fmt.Errorf("validity window must end after it starts")
	}
	return s.discounts.Create(ctx, s.db, d)
}

// Eligible lists the active codes the user's customer group may use
// right now.
func (s *DiscountService) Eligible(ctx context.Context, userID int64) ([]*models.DiscountCode, error) {
	user, err := s.users.Get(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.discounts.ListEligible(ctx, s.db, user.CustomerGroup(), time.Now())
}
