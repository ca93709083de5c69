package types

import "github.com/shopspring/decimal"

// LineExtra is an add-on attached to a cart line, snapshotted into the order.
type LineExtra struct {
	ExtraID   string          `json:"extra_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineExtras is persisted as a JSONB column via GORM's json serializer.
type LineExtras []LineExtra
