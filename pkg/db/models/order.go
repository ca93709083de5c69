package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deliverly/deliverly-backend/pkg/enums"
)

// Order is the customer order with the pricing snapshot frozen at creation.
// Pricing columns are never recomputed from live catalog prices.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	PartnerID   uuid.UUID         `gorm:"column:partner_id;type:uuid;not null" json:"partner_id"`
	AddressID   uuid.UUID         `gorm:"column:address_id;type:uuid;not null" json:"address_id"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'" json:"status"`
	ScheduledAt *time.Time        `gorm:"column:scheduled_at" json:"scheduled_at,omitempty"`

	CouponID    *uuid.UUID      `gorm:"column:coupon_id;type:uuid" json:"coupon_id,omitempty"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"column:discount;type:numeric(10,2);not null" json:"discount"`
	ShippingFee decimal.Decimal `gorm:"column:shipping_fee;type:numeric(10,2);not null" json:"shipping_fee"`
	ServiceFee  decimal.Decimal `gorm:"column:service_fee;type:numeric(10,2);not null" json:"service_fee"`
	TipAmount   decimal.Decimal `gorm:"column:tip_amount;type:numeric(10,2);not null" json:"tip_amount"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(10,2);not null" json:"total"`

	Instructions *string    `gorm:"column:instructions" json:"instructions,omitempty"`
	DeliveredAt  *time.Time `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`

	Lines    []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	Shipment *Shipment       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"shipment,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
