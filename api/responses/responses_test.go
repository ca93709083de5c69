package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/deliverly/deliverly-backend/pkg/errors"
)

type errorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func TestWriteSuccessWrapsData(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteSuccess(resp, map[string]string{"hello": "world"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected json content type got %q", resp.Header().Get("Content-Type"))
	}

	var payload struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Data["hello"] != "world" {
		t.Fatalf("unexpected data: %+v", payload.Data)
	}
}

func TestWriteSuccessStatusSetsCode(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteSuccessStatus(resp, http.StatusCreated, map[string]bool{"created": true})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	resp := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "tip_percent must be one of 0, 10, 15, 20").
		WithDetails(map[string]string{"field": "tip_percent"})
	WriteError(context.Background(), nil, resp, err)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var payload errorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %q", payload.Error.Code)
	}
	if payload.Error.Message != "tip_percent must be one of 0, 10, 15, 20" {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
	if len(payload.Error.Details) == 0 {
		t.Fatalf("expected details to surface for validation errors")
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteError(context.Background(), nil, resp, errors.New("pq: connection refused on 10.0.0.4"))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}

	var payload errorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %q", payload.Error.Code)
	}
	if payload.Error.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %q", payload.Error.Message)
	}
	if len(payload.Error.Details) != 0 {
		t.Fatalf("details must not surface for internal errors")
	}
}

func TestWriteErrorStateConflict(t *testing.T) {
	resp := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move delivered order to preparing")
	WriteError(context.Background(), nil, resp, err)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	var payload errorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %q", payload.Error.Code)
	}
	if payload.Error.Message != "cannot move delivered order to preparing" {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
}

func TestWriteErrorNilError(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteError(context.Background(), nil, resp, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
