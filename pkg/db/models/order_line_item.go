package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deliverly/deliverly-backend/pkg/types"
)

// OrderLineItem snapshots one cart line at the moment the order was priced.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	PartnerID uuid.UUID       `gorm:"column:partner_id;type:uuid;not null" json:"partner_id"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	Extras    types.LineExtras `gorm:"column:extras;type:jsonb;serializer:json" json:"extras,omitempty"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null" json:"line_total"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
