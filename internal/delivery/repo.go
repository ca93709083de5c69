package delivery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/pagination"
)

// Repository defines persistence operations for shipments and assignment.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// TryAssign is the atomic conditional claim: the driver wins only if the
	// shipment is still unassigned and its order is still acceptable.
	// Returns the number of rows affected.
	TryAssign(ctx context.Context, orderID, driverID uuid.UUID, now time.Time) (int64, error)
	FindShipmentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListAvailable(ctx context.Context, params pagination.Params) (*QueueList, error)
	// MarkDelivered stamps the shipment once the assigned driver completes.
	MarkDelivered(ctx context.Context, orderID, driverID uuid.UUID, now time.Time) (int64, error)
	// MarkOrderDelivered advances the order itself, guarded against terminal
	// states. Returns the number of rows affected.
	MarkOrderDelivered(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a delivery repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) TryAssign(ctx context.Context, orderID, driverID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("order_id = ? AND driver_id IS NULL AND status = ?", orderID, enums.ShipmentStatusPending).
		Where("order_id IN (?)", r.db.Model(&models.Order{}).
			Select("id").
			Where("id = ? AND status NOT IN ?", orderID,
				[]enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled})).
		Updates(map[string]any{
			"driver_id":   driverID,
			"status":      enums.ShipmentStatusAssigned,
			"assigned_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) FindShipmentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&shipment).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListAvailable(ctx context.Context, params pagination.Params) (*QueueList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Joins("JOIN shipments ON shipments.order_id = orders.id").
		Where("shipments.driver_id IS NULL AND shipments.status = ?", enums.ShipmentStatusPending).
		Where("orders.status NOT IN ?",
			[]enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled})
	if cursor != nil {
		query = query.Where("(orders.created_at, orders.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := query.
		Preload("Lines").
		Preload("Shipment").
		Order("orders.created_at DESC, orders.id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &QueueList{Orders: rows}
	if len(rows) > normalized {
		next := rows[normalized]
		list.Orders = rows[:normalized]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}
	return list, nil
}

func (r *repository) MarkDelivered(ctx context.Context, orderID, driverID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("order_id = ? AND driver_id = ? AND status = ?", orderID, driverID, enums.ShipmentStatusAssigned).
		Updates(map[string]any{
			"status":       enums.ShipmentStatusDelivered,
			"delivered_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) MarkOrderDelivered(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status NOT IN ?", orderID,
			[]enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusCancelled}).
		Updates(map[string]any{
			"status":       enums.OrderStatusDelivered,
			"delivered_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
