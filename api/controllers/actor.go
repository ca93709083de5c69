package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/deliverly/deliverly-backend/api/middleware"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	pkgerrors "github.com/deliverly/deliverly-backend/pkg/errors"
)

func actorUserID(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return parsed, nil
}

func actorPartnerID(r *http.Request) (uuid.UUID, error) {
	partnerID := middleware.PartnerIDFromContext(r.Context())
	if partnerID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "partner context missing")
	}
	parsed, err := uuid.Parse(partnerID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid partner id")
	}
	return parsed, nil
}

// optionalPartnerID tolerates a missing partner claim; only a malformed one errors.
func optionalPartnerID(r *http.Request) (uuid.UUID, error) {
	partnerID := middleware.PartnerIDFromContext(r.Context())
	if partnerID == "" {
		return uuid.Nil, nil
	}
	parsed, err := uuid.Parse(partnerID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid partner id")
	}
	return parsed, nil
}

func actorRole(r *http.Request) enums.Role {
	return enums.Role(middleware.RoleFromContext(r.Context()))
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return parsed, nil
}
