package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deliverly/deliverly-backend/pkg/enums"
)

// OrderCreated is emitted when an order is priced and persisted.
type OrderCreated struct {
	OrderID   uuid.UUID       `json:"order_id"`
	UserID    uuid.UUID       `json:"user_id"`
	PartnerID uuid.UUID       `json:"partner_id"`
	Total     decimal.Decimal `json:"total"`
}

// OrderStatusChanged is emitted on every validated status transition.
type OrderStatusChanged struct {
	OrderID        uuid.UUID         `json:"order_id"`
	UserID         uuid.UUID         `json:"user_id"`
	PartnerID      uuid.UUID         `json:"partner_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	NewStatus      enums.OrderStatus `json:"new_status"`
}

// OrderAssigned is emitted when a driver wins the shipment.
type OrderAssigned struct {
	OrderID  uuid.UUID `json:"order_id"`
	UserID   uuid.UUID `json:"user_id"`
	DriverID uuid.UUID `json:"driver_id"`
}

// OrderDelivered is emitted when the assigned driver completes delivery.
type OrderDelivered struct {
	OrderID   uuid.UUID `json:"order_id"`
	UserID    uuid.UUID `json:"user_id"`
	PartnerID uuid.UUID `json:"partner_id"`
	DriverID  uuid.UUID `json:"driver_id"`
}

// RatingSubmitted is emitted after a rating row is created.
type RatingSubmitted struct {
	RatingID  uuid.UUID `json:"rating_id"`
	OrderID   uuid.UUID `json:"order_id"`
	PartnerID uuid.UUID `json:"partner_id"`
	Value     int       `json:"value"`
}
