package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deliverly/deliverly-backend/internal/pricing"
	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	pkgerrors "github.com/deliverly/deliverly-backend/pkg/errors"
	"github.com/deliverly/deliverly-backend/pkg/outbox"
	"github.com/deliverly/deliverly-backend/pkg/outbox/payloads"
	"github.com/deliverly/deliverly-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CouponSource resolves coupon ids to rows for pricing.
type CouponSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
}

// Fees holds the flat platform fees applied to every order.
type Fees struct {
	Shipping decimal.Decimal
	Service  decimal.Decimal
}

// Service defines order creation, retrieval and status progression.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	GetOrder(ctx context.Context, orderID, actorUserID uuid.UUID, actorPartnerID uuid.UUID, role enums.Role) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListPartnerOrders(ctx context.Context, partnerID uuid.UUID, params pagination.Params, filters PartnerOrderFilters) (*OrderList, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	coupons CouponSource
	engine  *pricing.Engine
	fees    Fees
	now     func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxPub outboxPublisher, coupons CouponSource, engine *pricing.Engine, fees Fees) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxPub == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon source required")
	}
	if engine == nil {
		engine = pricing.NewEngine()
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outboxPub,
		coupons: coupons,
		engine:  engine,
		fees:    fees,
		now:     time.Now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if input.Checkout.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}

	partnerID := input.Lines[0].PartnerID
	for _, line := range input.Lines {
		if line.PartnerID != partnerID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "all cart lines must belong to the same partner")
		}
	}

	var coupon *models.Coupon
	couponOutcome := pricing.CouponOutcome{}
	if input.Checkout.CouponID != nil {
		found, err := s.coupons.FindByID(ctx, *input.Checkout.CouponID)
		switch {
		case err == gorm.ErrRecordNotFound:
			couponOutcome = pricing.CouponOutcome{Reason: pricing.CouponRejectNotFound}
		case err != nil:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
		default:
			coupon = found
		}
	}

	result, err := s.engine.Compute(input.Lines, coupon, input.Checkout.TipPercent, s.fees.Shipping, s.fees.Service)
	if err != nil {
		return nil, err
	}
	if coupon != nil {
		couponOutcome = result.Coupon
	}

	order := &models.Order{
		UserID:       input.UserID,
		PartnerID:    partnerID,
		AddressID:    input.Checkout.AddressID,
		Status:       enums.OrderStatusPending,
		ScheduledAt:  input.Checkout.ScheduledAt,
		Subtotal:     result.Subtotal,
		Discount:     result.Discount,
		ShippingFee:  result.ShippingFee,
		ServiceFee:   result.ServiceFee,
		TipAmount:    result.TipAmount,
		Total:        result.Total,
		Instructions: input.Checkout.Instructions,
	}
	if couponOutcome.Applied {
		order.CouponID = input.Checkout.CouponID
	}
	for _, line := range input.Lines {
		order.Lines = append(order.Lines, models.OrderLineItem{
			ProductID: line.ProductID,
			PartnerID: line.PartnerID,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Extras:    line.Extras,
			LineTotal: pricing.LineTotal(line),
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		shipment := &models.Shipment{
			OrderID: order.ID,
			Status:  enums.ShipmentStatusPending,
		}
		if err := repo.CreateShipment(ctx, shipment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipment")
		}
		order.Shipment = shipment

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.RoleCustomer)},
			Data: payloads.OrderCreated{
				OrderID:   order.ID,
				UserID:    order.UserID,
				PartnerID: order.PartnerID,
				Total:     order.Total,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return &CreateOrderResult{Order: order, Coupon: couponOutcome}, nil
}

func (s *service) GetOrder(ctx context.Context, orderID, actorUserID uuid.UUID, actorPartnerID uuid.UUID, role enums.Role) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	switch role {
	case enums.RoleAdmin:
	case enums.RolePartner:
		if order.PartnerID != actorPartnerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to partner")
		}
	case enums.RoleDriver:
		if order.Shipment == nil || order.Shipment.DriverID == nil || *order.Shipment.DriverID != actorUserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to caller")
		}
	default:
		if order.UserID != actorUserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
		}
	}
	return order, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListUserOrders(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListPartnerOrders(ctx context.Context, partnerID uuid.UUID, params pagination.Params, filters PartnerOrderFilters) (*OrderList, error) {
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "partner context missing")
	}
	if filters.Status != nil && !enums.ValidOrderStatus(string(*filters.Status)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status filter")
	}
	list, err := s.repo.ListPartnerOrders(ctx, partnerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partner orders")
	}
	return list, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		switch input.ActorRole {
		case enums.RolePartner:
			if input.ActorPartnerID == uuid.Nil || order.PartnerID != input.ActorPartnerID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to partner")
			}
		case enums.RoleAdmin:
			if input.Requested != enums.OrderStatusCancelled {
				return pkgerrors.New(pkgerrors.CodeForbidden, "admins may only cancel orders")
			}
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "role may not change order status")
		}

		if err := ValidateTransition(order.Status, input.Requested); err != nil {
			return err
		}

		now := s.now()
		affected, err := repo.UpdateStatusGuarded(ctx, order.ID, order.Status, input.Requested, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if affected == 0 {
			// Lost the race: re-read to report the true state.
			current, err := repo.FindOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			if current.Status.IsTerminal() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order already finalized").
					WithDetails(map[string]any{"status": string(current.Status)})
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently").
				WithDetails(map[string]any{"status": string(current.Status)})
		}

		if input.Requested == enums.OrderStatusCancelled {
			if _, err := repo.CancelShipment(ctx, order.ID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel shipment")
			}
		}

		previous := order.Status
		order.Status = input.Requested
		switch input.Requested {
		case enums.OrderStatusDelivered:
			order.DeliveredAt = &now
		case enums.OrderStatusCancelled:
			order.CancelledAt = &now
		}
		updated = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: string(input.ActorRole)},
			Data: payloads.OrderStatusChanged{
				OrderID:        order.ID,
				UserID:         order.UserID,
				PartnerID:      order.PartnerID,
				PreviousStatus: previous,
				NewStatus:      input.Requested,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
