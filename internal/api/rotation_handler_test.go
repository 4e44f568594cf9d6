package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shaiso/Vitrine/internal/schedule"
)

func newTestHandler() *Handler {
	return NewHandler(Config{
		Manager: schedule.NewManager(nil),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// --- Window Validation Tests ---

func TestCreateRotation_RejectsEndOfDayStart(t *testing.T) {
	h := newTestHandler()

	// "24:00" is a window end, never a start: such a rotation
	// would pass creation but silently never activate.
	req := httptest.NewRequest("POST", "/api/v1/rotations",
		strings.NewReader(`{"name":"Night","start_time":"24:00","end_time":"06:00"}`))
	w := httptest.NewRecorder()
	h.CreateRotation(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateRotation_AllowsEndOfDayEnd(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest("POST", "/api/v1/rotations",
		strings.NewReader(`{"name":"Evening","start_time":"18:00","end_time":"24:00"}`))
	w := httptest.NewRecorder()
	h.CreateRotation(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestUpdateRotation_RejectsEndOfDayStart(t *testing.T) {
	h := newTestHandler()
	if err := h.manager.AddRotation("Day", "08:00", "20:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest("PUT", "/api/v1/rotations/Day",
		strings.NewReader(`{"start_time":"24:00"}`))
	req.SetPathValue("name", "Day")
	w := httptest.NewRecorder()
	h.UpdateRotation(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
