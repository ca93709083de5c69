package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deliverly/deliverly-backend/internal/pricing"
	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
)

// CheckoutData carries the non-cart half of an order submission.
type CheckoutData struct {
	AddressID    uuid.UUID
	ScheduledAt  *time.Time
	CouponID     *uuid.UUID
	TipPercent   decimal.Decimal
	Instructions *string
}

// CreateOrderInput is the full order submission resolved from the request.
type CreateOrderInput struct {
	UserID   uuid.UUID
	Lines    []pricing.CartLine
	Checkout CheckoutData
}

// CreateOrderResult returns the persisted order plus the coupon verdict so
// callers can surface rejected coupons instead of a silent zero discount.
type CreateOrderResult struct {
	Order  *models.Order         `json:"order"`
	Coupon pricing.CouponOutcome `json:"coupon"`
}

// TransitionInput captures a partner-driven status change request.
type TransitionInput struct {
	OrderID        uuid.UUID
	Requested      enums.OrderStatus
	ActorUserID    uuid.UUID
	ActorPartnerID uuid.UUID
	ActorRole      enums.Role
}

// PartnerOrderFilters narrows the partner order queue.
type PartnerOrderFilters struct {
	Status *enums.OrderStatus
}

// OrderList is a cursor page of orders.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
