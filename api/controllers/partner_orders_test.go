package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/deliverly/deliverly-backend/api/middleware"
	"github.com/deliverly/deliverly-backend/internal/orders"
	"github.com/deliverly/deliverly-backend/pkg/db/models"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/pagination"
)

func TestPartnerOrderQueueStatusFilter(t *testing.T) {
	partnerID := uuid.New()
	svc := &testOrdersService{
		listPartnerFn: func(ctx context.Context, pid uuid.UUID, params pagination.Params, filters orders.PartnerOrderFilters) (*orders.OrderList, error) {
			if pid != partnerID {
				t.Fatalf("unexpected partner %s", pid)
			}
			if filters.Status == nil || *filters.Status != enums.OrderStatusPreparing {
				t.Fatalf("expected preparing filter, got %+v", filters.Status)
			}
			return &orders.OrderList{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/orders?status=preparing", nil)
	req = req.WithContext(middleware.WithPartnerID(req.Context(), partnerID.String()))

	resp := httptest.NewRecorder()
	handler := PartnerOrderQueue(svc, testLogger())
	handler(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestPartnerOrderQueueUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/orders?status=bogus", nil)
	req = req.WithContext(middleware.WithPartnerID(req.Context(), uuid.NewString()))

	resp := httptest.NewRecorder()
	handler := PartnerOrderQueue(&testOrdersService{}, testLogger())
	handler(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPartnerOrderQueueMissingPartner(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/partner/orders", nil)
	resp := httptest.NewRecorder()
	handler := PartnerOrderQueue(&testOrdersService{}, testLogger())
	handler(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestUpdateOrderStatusPartner(t *testing.T) {
	userID := uuid.New()
	partnerID := uuid.New()
	orderID := uuid.New()
	svc := &testOrdersService{
		transitionFn: func(ctx context.Context, input orders.TransitionInput) (*models.Order, error) {
			if input.OrderID != orderID {
				t.Fatalf("unexpected order %s", input.OrderID)
			}
			if input.Requested != enums.OrderStatusPreparing {
				t.Fatalf("unexpected status %s", input.Requested)
			}
			if input.ActorPartnerID != partnerID || input.ActorRole != enums.RolePartner {
				t.Fatalf("unexpected actor: %+v", input)
			}
			return &models.Order{ID: orderID, Status: enums.OrderStatusPreparing}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/partner/orders/"+orderID.String()+"/status", strings.NewReader(`{"status": "PREPARING"}`))
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithPartnerID(ctx, partnerID.String())
	ctx = middleware.WithRole(ctx, string(enums.RolePartner))
	req = req.WithContext(ctx)
	req = addRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	handler := UpdateOrderStatus(svc, testLogger())
	handler(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUpdateOrderStatusUnknownValue(t *testing.T) {
	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/partner/orders/"+orderID.String()+"/status", strings.NewReader(`{"status": "teleported"}`))
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithPartnerID(ctx, uuid.NewString())
	req = req.WithContext(ctx)
	req = addRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	handler := UpdateOrderStatus(&testOrdersService{}, testLogger())
	handler(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateOrderStatusMissingBody(t *testing.T) {
	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/partner/orders/"+orderID.String()+"/status", strings.NewReader(`{}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "orderId", orderID.String())

	resp := httptest.NewRecorder()
	handler := UpdateOrderStatus(&testOrdersService{}, testLogger())
	handler(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
