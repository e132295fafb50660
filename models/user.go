package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerGroup string

const (
	GroupNew      CustomerGroup = "new"
	GroupRegular  CustomerGroup = "regular"
	GroupVIP      CustomerGroup = "vip"
	GroupSuperVIP CustomerGroup = "super_vip"
)

// Spend thresholds separating customer groups.
var (
	regularSpend  = decimal.NewFromInt(500_000)
	vipSpend      = decimal.NewFromInt(5_000_000)
	superVIPSpend = decimal.NewFromInt(20_000_000)
)

type User struct {
	ID           int64           `db:"id" json:"id"`
	Username     string          `db:"username" json:"username"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Phone        string          `db:"phone" json:"phone"`
	Role         string          `db:"role" json:"role"` // guest, attendee, organizer, admin
	TotalSpent   decimal.Decimal `db:"total_spent" json:"total_spent"`
	IsActive     bool            `db:"is_active" json:"is_active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

func (u User) TableName() string {
	return "users"
}

// CustomerGroup derives the discount tier from the user's lifetime spend.
func (u *User) CustomerGroup() CustomerGroup {
	switch {
	case u.TotalSpent.GreaterThanOrEqual(superVIPSpend):
		return GroupSuperVIP
	case u.TotalSpent.GreaterThanOrEqual(vipSpend):
		return GroupVIP
	case u.TotalSpent.GreaterThanOrEqual(regularSpend):
		return GroupRegular
	default:
		return GroupNew
	}
}
