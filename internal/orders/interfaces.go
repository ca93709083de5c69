package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateShipment(ctx context.Context, shipment *models.Shipment) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListPartnerOrders(ctx context.Context, partnerID uuid.UUID, params pagination.Params, filters PartnerOrderFilters) (*OrderList, error)
	// UpdateStatusGuarded performs the conditional status update: the row
	// changes only if it still holds the expected current status and that
	// status is not terminal. Returns the number of rows affected.
	UpdateStatusGuarded(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, now time.Time) (int64, error)
	// CancelShipment marks the paired shipment cancelled unless it was
	// already delivered. Returns the number of rows affected.
	CancelShipment(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error)
}
