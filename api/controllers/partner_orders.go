package controllers

import (
	"net/http"
	"strings"

	"github.com/deliverly/deliverly-backend/api/responses"
	"github.com/deliverly/deliverly-backend/api/validators"
	"github.com/deliverly/deliverly-backend/internal/orders"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	pkgerrors "github.com/deliverly/deliverly-backend/pkg/errors"
	"github.com/deliverly/deliverly-backend/pkg/logger"
)

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PartnerOrderQueue returns the partner's orders, optionally filtered by status.
func PartnerOrderQueue(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		partnerID, err := actorPartnerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters orders.PartnerOrderFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			if !enums.ValidOrderStatus(raw) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status filter"))
				return
			}
			status := enums.OrderStatus(raw)
			filters.Status = &status
		}

		list, err := svc.ListPartnerOrders(r.Context(), partnerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// UpdateOrderStatus progresses an order through its lifecycle. Partners move
// their own orders forward or cancel them; admins may only cancel.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requested := strings.ToLower(strings.TrimSpace(payload.Status))
		if !enums.ValidOrderStatus(requested) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
				WithDetails(map[string]any{"status": payload.Status}))
			return
		}

		order, err := svc.Transition(r.Context(), orders.TransitionInput{
			OrderID:        orderID,
			Requested:      enums.OrderStatus(requested),
			ActorUserID:    userID,
			ActorPartnerID: partnerID,
			ActorRole:      actorRole(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
