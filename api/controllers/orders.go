package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/deliverly/deliverly-backend/api/responses"
	"github.com/deliverly/deliverly-backend/api/validators"
	"github.com/deliverly/deliverly-backend/internal/orders"
	"github.com/deliverly/deliverly-backend/internal/pricing"
	pkgerrors "github.com/deliverly/deliverly-backend/pkg/errors"
	"github.com/deliverly/deliverly-backend/pkg/logger"
	"github.com/deliverly/deliverly-backend/pkg/pagination"
	"github.com/deliverly/deliverly-backend/pkg/types"
)

type createOrderLineRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid4"`
	PartnerID string           `json:"partner_id" validate:"required,uuid4"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	Extras    types.LineExtras `json:"extras,omitempty"`
}

type createOrderRequest struct {
	AddressID    string                   `json:"address_id" validate:"required,uuid4"`
	Lines        []createOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
	CouponID     *string                  `json:"coupon_id,omitempty" validate:"omitempty,uuid4"`
	TipPercent   decimal.Decimal          `json:"tip_percent"`
	ScheduledAt  *time.Time               `json:"scheduled_at,omitempty"`
	Instructions *string                  `json:"instructions,omitempty"`
}

// CreateOrder freezes the cart into an order with its pricing snapshot.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildCreateOrderInput(userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListOrders returns the caller's orders, newest first.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListUserOrders(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderDetail returns the full order after the service's role-scoped access check.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partnerID, err := optionalPartnerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID, userID, partnerID, actorRole(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func buildCreateOrderInput(userID uuid.UUID, payload createOrderRequest) (orders.CreateOrderInput, error) {
	addressID, err := uuid.Parse(payload.AddressID)
	if err != nil {
		return orders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address id")
	}

	var couponID *uuid.UUID
	if payload.CouponID != nil {
		parsed, err := uuid.Parse(*payload.CouponID)
		if err != nil {
			return orders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon id")
		}
		couponID = &parsed
	}

	lines := make([]pricing.CartLine, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return orders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		partnerID, err := uuid.Parse(line.PartnerID)
		if err != nil {
			return orders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid partner id")
		}
		lines = append(lines, pricing.CartLine{
			ProductID: productID,
			PartnerID: partnerID,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Extras:    line.Extras,
		})
	}

	return orders.CreateOrderInput{
		UserID: userID,
		Lines:  lines,
		Checkout: orders.CheckoutData{
			AddressID:    addressID,
			ScheduledAt:  payload.ScheduledAt,
			CouponID:     couponID,
			TipPercent:   payload.TipPercent,
			Instructions: payload.Instructions,
		},
	}, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
