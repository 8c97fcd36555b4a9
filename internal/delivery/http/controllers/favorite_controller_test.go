package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

type mockFavoriteService struct {
	favorited bool
	err       error
}

func (m *mockFavoriteService) Toggle(ctx context.Context, eventID, userID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.favorited, nil
}

func (m *mockFavoriteService) ListMyFavorites(ctx context.Context, userID string) ([]*domain.FavoriteWithEvent, error) {
	return nil, nil
}

func TestFavoriteController_Toggle(t *testing.T) {
	tests := []struct {
		name          string
		svc           *mockFavoriteService
		wantStatus    int
		wantCode      string
		wantFavorited bool
	}{
		{"toggled on", &mockFavoriteService{favorited: true}, http.StatusOK, "", true},
		{"toggled off", &mockFavoriteService{favorited: false}, http.StatusOK, "", false},
		{"event missing", &mockFavoriteService{err: domain.ErrNotFound}, http.StatusNotFound, helpers.ErrCodeNotFound, false},
		{
			"duplicate favorite surfaces as conflict",
			&mockFavoriteService{err: fmt.Errorf("create favorite: %w", domain.ErrAlreadyFavorited)},
			http.StatusConflict, helpers.ErrCodeConflict, false,
		},
		{
			"unexpected error is internal",
			&mockFavoriteService{err: errors.New("connection reset")},
			http.StatusInternalServerError, helpers.ErrCodeInternalError, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewFavoriteController(testLogger(), tt.svc)

			req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/favorite", nil)
			req.SetPathValue("eventID", testEventID)
			req = req.WithContext(middleware.SetUserID(req.Context(), "u1"))
			w := httptest.NewRecorder()

			ctrl.Toggle(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var resp struct {
				Data  ToggleFavoriteResponse `json:"data"`
				Error *helpers.APIError      `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if tt.wantStatus != http.StatusOK {
				if resp.Error == nil {
					t.Fatal("expected error in response envelope")
				}
				if resp.Error.Code != tt.wantCode {
					t.Fatalf("expected error code %q, got %q", tt.wantCode, resp.Error.Code)
				}
				return
			}
			if resp.Data.Favorited != tt.wantFavorited {
				t.Fatalf("expected favorited=%v, got %v", tt.wantFavorited, resp.Data.Favorited)
			}
		})
	}
}
