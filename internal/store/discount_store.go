package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"

	"booking-system/internal/status"
	"booking-system/models"
)

// DiscountStore is the discount authority's persistence: code lookup,
// eligibility listing, and the metered consumption of usage slots.
type DiscountStore struct{}

func (s *DiscountStore) Get(ctx context.Context, db dbx.Builder, id int64) (*models.DiscountCode, error) {
	var d models.DiscountCode
	err := db.NewQuery(`SELECT * FROM discount_codes WHERE id = {:id}`).
		Bind(dbx.Params{"id": id}).
		WithContext(ctx).
		One(&d)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrDiscountInvalid
		}
		return nil, fmt.Errorf("get discount code: %w", err)
	}
	return &d, nil
}

func (s *DiscountStore) Create(ctx context.Context, db dbx.Builder, d *models.DiscountCode) error {
	err := db.NewQuery(`
		INSERT INTO discount_codes
			(code, discount_percent, event_id, user_group, valid_from, valid_to, max_uses, is_active)
		VALUES
			({:code}, {:percent}, {:event}, {:group}, {:from}, {:to}, {:max}, {:active})
		RETURNING id`).
		Bind(dbx.Params{
			"code":    d.Code,
			"percent": d.DiscountPercent,
			"event":   d.EventID,
			"group":   d.UserGroup,
			"from":    d.ValidFrom,
			"to":      d.ValidTo,
			"max":     d.MaxUses,
			"active":  d.IsActive,
		}).
		WithContext(ctx).
		Row(&d.ID)
	if err != nil {
		return fmt.Errorf("insert discount code: %w", err)
	}
	return nil
}

// Consume reserves n usage slots of the code. The cap is re-checked in
// the same UPDATE that increments used_count, so concurrent consumers
// can never push the counter past max_uses; an uncapped code always
// consumes. Returns status.ErrDiscountCapReached when no slot is left.
func (s *DiscountStore) Consume(ctx context.Context, db dbx.Builder, id int64, n int) error {
	res, err := db.NewQuery(`
		UPDATE discount_codes
		   SET used_count = used_count + {:n}
		 WHERE id = {:id}
		   AND is_active = TRUE
		   AND (max_uses IS NULL OR used_count + {:n} <= max_uses)`).
		Bind(dbx.Params{"id": id, "n": n}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("consume discount code: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("consume discount code: %w", err)
	}
	if affected == 0 {
		return status.ErrDiscountCapReached
	}
	return nil
}

// ListEligible returns the codes a customer group can currently use:
// active, inside the validity window, under cap, and either unscoped or
// scoped to that group.
func (s *DiscountStore) ListEligible(ctx context.Context, db dbx.Builder, group models.CustomerGroup, now time.Time) ([]*models.DiscountCode, error) {
	var codes []*models.DiscountCode
	err := db.NewQuery(`
		SELECT * FROM discount_codes
		 WHERE is_active = TRUE
		   AND valid_from <= {:now} AND valid_to >= {:now}
		   AND (user_group IS NULL OR user_group = {:group})
		   AND (max_uses IS NULL OR used_count < max_uses)
		 ORDER BY valid_to ASC`).
		Bind(dbx.Params{"now": now, "group": group}).
		WithContext(ctx).
		All(&codes)
	if err != nil {
		return nil, fmt.Errorf("list eligible discount codes: %w", err)
	}
	return codes, nil
}
