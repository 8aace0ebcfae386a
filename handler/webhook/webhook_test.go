package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tandalabs/tanda-gateway/store/verification"
)

func newServer() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(verification.NewMemory(), logger).Handler()
}

func TestConfirmThenCheck(t *testing.T) {
	h := newServer()

	body := `{"phone":"+591 77777777","verified":true,"timestamp":1703955200000,"whatsappUsername":"Maria","whatsappNumber":"59177777777"}`
	req := httptest.NewRequest(http.MethodPost, "/confirm_verification", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body)
	}

	var posted struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&posted); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !posted.Success {
		t.Errorf("success = false: %s", posted.Message)
	}

	// the poll sees the record under the normalized key
	req = httptest.NewRequest(http.MethodGet, "/check_verification?phone=%2B59177777777", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var checked struct {
		Verified         bool   `json:"verified"`
		Timestamp        *int64 `json:"timestamp"`
		WhatsappUsername string `json:"whatsappUsername"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&checked); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !checked.Verified {
		t.Fatal("verified = false after confirmation")
	}

	if checked.Timestamp == nil || *checked.Timestamp != 1703955200000 {
		t.Errorf("timestamp = %v, want 1703955200000", checked.Timestamp)
	}

	if checked.WhatsappUsername != "Maria" {
		t.Errorf("whatsappUsername = %q", checked.WhatsappUsername)
	}
}

func TestConfirmValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "hola"},
		{"missing phone", `{"verified":true}`},
		{"missing verified", `{"phone":"+591"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newServer()

			req := httptest.NewRequest(http.MethodPost, "/confirm_verification", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCheckAbsentPhone(t *testing.T) {
	h := newServer()

	req := httptest.NewRequest(http.MethodGet, "/confirm_verification?phone=%2B59100000000", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var out struct {
		Verified  bool   `json:"verified"`
		Timestamp *int64 `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.Verified || out.Timestamp != nil {
		t.Errorf("absent phone read as %+v", out)
	}
}

func TestCheckRequiresPhone(t *testing.T) {
	h := newServer()

	req := httptest.NewRequest(http.MethodGet, "/check_verification", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUnverifiedReadsFalse(t *testing.T) {
	h := newServer()

	body := `{"phone":"+59177777777","verified":false}`
	req := httptest.NewRequest(http.MethodPost, "/confirm_verification", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	req = httptest.NewRequest(http.MethodGet, "/check_verification?phone=%2B59177777777", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out struct {
		Verified bool `json:"verified"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.Verified {
		t.Error("failed verification read as verified")
	}
}
