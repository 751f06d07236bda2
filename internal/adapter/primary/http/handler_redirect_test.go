package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestRedirectHandler(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		handler      func(h *RedirectHandler) http.HandlerFunc
		wantLocation string
	}{
		{
			name:         "success",
			target:       "/payment/success?basket_id=B1&transaction_id=T1",
			handler:      func(h *RedirectHandler) http.HandlerFunc { return h.Success },
			wantLocation: "app://payment/success?basket_id=B1&transaction_id=T1",
		},
		{
			name:         "failure",
			target:       "/payment/failure?basket_id=B1&err_code=002&err_msg=declined",
			handler:      func(h *RedirectHandler) http.HandlerFunc { return h.Failure },
			wantLocation: "app://payment/failure?basket_id=B1&err_code=002&err_msg=declined",
		},
		{
			name:         "missing parameters",
			target:       "/payment/success",
			handler:      func(h *RedirectHandler) http.HandlerFunc { return h.Success },
			wantLocation: "app://payment/success?basket_id=&transaction_id=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRedirectHandler(&mockNotificationService{}, zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()

			tt.handler(h)(rec, req)

			if rec.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Fatalf("expected Location %q, got %q", tt.wantLocation, got)
			}
		})
	}
}
