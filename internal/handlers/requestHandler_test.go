package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetHandler_ReturnsOK(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	GetHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("health check status = %d, want %d", rec.Code, http.StatusOK)
	}
}
