package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	pkgerrors "github.com/deliverly/deliverly-backend/pkg/errors"
	"github.com/deliverly/deliverly-backend/pkg/outbox"
	"github.com/deliverly/deliverly-backend/pkg/outbox/payloads"
	"github.com/deliverly/deliverly-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// AcceptOutcome classifies the result of an acceptance attempt.
type AcceptOutcome string

const (
	OutcomeAssigned        AcceptOutcome = "assigned"
	OutcomeAlreadyAssigned AcceptOutcome = "already_assigned"
)

// AcceptResult is returned on successful or idempotent acceptance.
type AcceptResult struct {
	Outcome  AcceptOutcome    `json:"outcome"`
	Shipment *models.Shipment `json:"shipment"`
}

// QueueList is a cursor page of orders open for acceptance.
type QueueList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// Service resolves concurrent driver acceptance into exactly one winner and
// handles delivery completion.
type Service interface {
	Accept(ctx context.Context, orderID, driverID uuid.UUID) (*AcceptResult, error)
	Complete(ctx context.Context, orderID, driverID uuid.UUID) (*models.Order, error)
	ListAvailable(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*QueueList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds the delivery service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxPub outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxPub == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxPub, now: time.Now}, nil
}

// Accept claims the shipment for the driver through a single conditional
// update. Zero rows affected means either another driver holds it or the
// order is not acceptable; a follow-up read distinguishes the two.
func (s *service) Accept(ctx context.Context, orderID, driverID uuid.UUID) (*AcceptResult, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var result *AcceptResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now()

		affected, err := repo.TryAssign(ctx, orderID, driverID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign shipment")
		}
		if affected == 0 {
			return s.classifyLoss(ctx, repo, orderID, driverID, &result)
		}

		shipment, err := repo.FindShipmentByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload shipment")
		}
		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		result = &AcceptResult{Outcome: OutcomeAssigned, Shipment: shipment}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderAssigned,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Actor:         &outbox.ActorRef{UserID: driverID, Role: string(enums.RoleDriver)},
			Data: payloads.OrderAssigned{
				OrderID:  orderID,
				UserID:   order.UserID,
				DriverID: driverID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// classifyLoss figures out why the conditional update changed nothing.
func (s *service) classifyLoss(ctx context.Context, repo Repository, orderID, driverID uuid.UUID, result **AcceptResult) error {
	shipment, err := repo.FindShipmentByOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order is not open for delivery")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inspect shipment")
	}
	if shipment.DriverID != nil {
		if *shipment.DriverID == driverID {
			// Retried accept from the winning driver is a no-op success.
			*result = &AcceptResult{Outcome: OutcomeAlreadyAssigned, Shipment: shipment}
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeConflict, "order already assigned to another driver")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer acceptable")
}

// Complete finishes the delivery: only the assigned driver may call it, and
// the order must not have been cancelled underneath them.
func (s *service) Complete(ctx context.Context, orderID, driverID uuid.UUID) (*models.Order, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var delivered *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		shipment, err := repo.FindShipmentByOrder(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
		}
		if shipment.DriverID == nil || *shipment.DriverID != driverID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not the assigned driver")
		}

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order was cancelled")
		}

		now := s.now()
		affected, err := repo.MarkOrderDelivered(ctx, orderID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order delivered")
		}
		if affected == 0 {
			// Already delivered or cancelled concurrently.
			current, err := repo.FindOrder(ctx, orderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			if current.Status == enums.OrderStatusCancelled {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order was cancelled")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already finalized")
		}
		if _, err := repo.MarkDelivered(ctx, orderID, driverID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark shipment delivered")
		}

		order.Status = enums.OrderStatusDelivered
		order.DeliveredAt = &now
		delivered = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: driverID, Role: string(enums.RoleDriver)},
			Data: payloads.OrderDelivered{
				OrderID:   orderID,
				UserID:    order.UserID,
				PartnerID: order.PartnerID,
				DriverID:  driverID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return delivered, nil
}

func (s *service) ListAvailable(ctx context.Context, driverID uuid.UUID, params pagination.Params) (*QueueList, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	list, err := s.repo.ListAvailable(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available orders")
	}
	return list, nil
}
