package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deliverly/deliverly-backend/pkg/enums"
)

// Coupon is an input to pricing only; the fulfillment core never mutates it.
type Coupon struct {
	ID                    uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code                  string                   `gorm:"column:code;not null" json:"code"`
	DiscountType          enums.CouponDiscountType `gorm:"column:discount_type;type:coupon_discount_type;not null" json:"discount_type"`
	DiscountValue         decimal.Decimal          `gorm:"column:discount_value;type:numeric(10,2);not null" json:"discount_value"`
	MinimumPurchaseAmount decimal.Decimal          `gorm:"column:minimum_purchase_amount;type:numeric(10,2);not null" json:"minimum_purchase_amount"`
	StartsAt              time.Time                `gorm:"column:starts_at;not null" json:"starts_at"`
	EndsAt                time.Time                `gorm:"column:ends_at;not null" json:"ends_at"`
	Status                enums.CouponStatus       `gorm:"column:status;type:coupon_status;not null;default:'active'" json:"status"`
	CreatedAt             time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
