package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/deliverly/deliverly-backend/pkg/enums"
)

// Shipment pairs an order with its delivery driver. driver_id moves from NULL
// to a value exactly once, through the conditional update in the delivery
// repository; it is never reassigned by the fulfillment core.
type Shipment struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_shipments_order" json:"order_id"`
	DriverID    *uuid.UUID           `gorm:"column:driver_id;type:uuid" json:"driver_id,omitempty"`
	Status      enums.ShipmentStatus `gorm:"column:status;type:shipment_status;not null;default:'pending'" json:"status"`
	AssignedAt  *time.Time           `gorm:"column:assigned_at" json:"assigned_at,omitempty"`
	PickedUpAt  *time.Time           `gorm:"column:picked_up_at" json:"picked_up_at,omitempty"`
	DeliveredAt *time.Time           `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
