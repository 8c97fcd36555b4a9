package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

const testEventID = "6f1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"

type mockRegistrationService struct {
	reg         *domain.Registration
	registerErr error
	cancelErr   error
}

func (m *mockRegistrationService) Register(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.reg, nil
}

func (m *mockRegistrationService) Cancel(ctx context.Context, eventID, userID string) error {
	return m.cancelErr
}

func (m *mockRegistrationService) ListMyRegistrations(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRegistrationController_Register_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"event not found", domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
		{"event not published", domain.ErrEventNotPublished, http.StatusConflict, helpers.ErrCodeInvalidState},
		{"event full", domain.ErrEventFull, http.StatusConflict, helpers.ErrCodeCapacityExceeded},
		{"already registered", domain.ErrAlreadyRegistered, http.StatusConflict, helpers.ErrCodeConflict},
		{"unexpected error", context.DeadlineExceeded, http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{registerErr: tt.serviceErr})

			req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/registrations", nil)
			req.SetPathValue("eventID", testEventID)
			req = req.WithContext(middleware.SetUserID(req.Context(), "u1"))
			w := httptest.NewRecorder()

			ctrl.Register(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var resp helpers.APIResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if resp.Error == nil {
				t.Fatal("expected an error in the response envelope")
			}
			if resp.Error.Code != tt.wantCode {
				t.Fatalf("expected error code %q, got %q", tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestRegistrationController_Register_Success(t *testing.T) {
	reg := &domain.Registration{ID: "reg-1", EventID: testEventID, UserID: "u1", Status: domain.RegistrationStatusRegistered}
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{reg: reg})

	req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/registrations", nil)
	req.SetPathValue("eventID", testEventID)
	req = req.WithContext(middleware.SetUserID(req.Context(), "u1"))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("expected no error, got %v", resp.Error)
	}
}

func TestRegistrationController_Register_InvalidEventID(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{})

	req := httptest.NewRequest(http.MethodPost, "/events/not-a-uuid/registrations", nil)
	req.SetPathValue("eventID", "not-a-uuid")
	req = req.WithContext(middleware.SetUserID(req.Context(), "u1"))
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestRegistrationController_Register_Unauthorized(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{})

	req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/registrations", nil)
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()

	ctrl.Register(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRegistrationController_Cancel_NotFound(t *testing.T) {
	ctrl := NewRegistrationController(testLogger(), &mockRegistrationService{cancelErr: domain.ErrNotFound})

	req := httptest.NewRequest(http.MethodDelete, "/events/"+testEventID+"/registrations", nil)
	req.SetPathValue("eventID", testEventID)
	req = req.WithContext(middleware.SetUserID(req.Context(), "u1"))
	w := httptest.NewRecorder()

	ctrl.Cancel(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
