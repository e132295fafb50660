package models

import "time"

type DiscountCode struct {
	ID              int64          `db:"id" json:"id"`
	Code            string         `db:"code" json:"code"`
	DiscountPercent int            `db:"discount_percent" json:"discount_percent"`
	EventID         *int64         `db:"event_id" json:"event_id,omitempty"`
	UserGroup       *CustomerGroup `db:"user_group" json:"user_group,omitempty"`
	ValidFrom       time.Time      `db:"valid_from" json:"valid_from"`
	ValidTo         time.Time      `db:"valid_to" json:"valid_to"`
	MaxUses         *int           `db:"max_uses" json:"max_uses,omitempty"`
	UsedCount       int            `db:"used_count" json:"used_count"`
	IsActive        bool           `db:"is_active" json:"is_active"`
}

func (d DiscountCode) TableName() string {
	return "discount_codes"
}

// WithinWindow reports whether now falls inside the validity window.
func (d *DiscountCode) WithinWindow(now time.Time) bool {
	return !now.Before(d.ValidFrom) && !now.After(d.ValidTo)
}

// HasCapRoom reports whether the code still has unused slots. A code
// with no max_uses is uncapped and always has room.
func (d *DiscountCode) HasCapRoom() bool {
	return d.MaxUses == nil || d.UsedCount < *d.MaxUses
}

// AppliesTo reports whether the code's optional scoping (event and
// customer group) matches the booking context.
func (d *DiscountCode) AppliesTo(eventID int64, group CustomerGroup) bool {
	if d.EventID != nil && *d.EventID != eventID {
		return false
	}
	if d.UserGroup != nil && *d.UserGroup != group {
		return false
	}
	return true
}
