// Package webhook receives phone verification confirmations from the
// WhatsApp agent and serves the polling endpoints the onboarding flow uses.
package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tandalabs/tanda-gateway/core"
	"github.com/tandalabs/tanda-gateway/store"
)

func New(verifications core.VerificationStore, logger *slog.Logger) *Server {
	return &Server{
		verifications: verifications,
		logger:        logger.With("server", "webhook"),
	}
}

type Server struct {
	verifications core.VerificationStore
	logger        *slog.Logger
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/confirm_verification", s.confirmVerification)
	r.Get("/confirm_verification", s.checkVerification)
	// alias kept for callers of the older path
	r.Get("/check_verification", s.checkVerification)

	return r
}

type confirmPayload struct {
	Phone            string `json:"phone"`
	Verified         *bool  `json:"verified"`
	Timestamp        int64  `json:"timestamp,omitempty"` // unix millis
	WhatsappUsername string `json:"whatsappUsername,omitempty"`
	WhatsappNumber   string `json:"whatsappNumber,omitempty"`
}

func (s *Server) confirmVerification(w http.ResponseWriter, r *http.Request) {
	var payload confirmPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "invalid payload",
		})
		return
	}

	if payload.Phone == "" || payload.Verified == nil {
		renderJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Missing required fields: phone and verified",
		})
		return
	}

	timestamp := time.Now()
	if payload.Timestamp > 0 {
		timestamp = time.UnixMilli(payload.Timestamp)
	}

	record := &core.VerificationRecord{
		Phone:            payload.Phone,
		Verified:         *payload.Verified,
		Timestamp:        timestamp,
		WhatsappUsername: payload.WhatsappUsername,
		WhatsappNumber:   payload.WhatsappNumber,
	}

	if err := s.verifications.Record(r.Context(), record); err != nil {
		s.logger.Error("verifications.Record", "err", err)
		renderJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	s.logger.Info("verification received",
		"phone", core.NormalizePhone(payload.Phone),
		"verified", *payload.Verified,
		"whatsapp", payload.WhatsappUsername)

	message := "Phone verification failed"
	if *payload.Verified {
		message = "Phone verification confirmed successfully"
	}

	renderJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

func (s *Server) checkVerification(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		renderJSON(w, http.StatusBadRequest, map[string]any{
			"verified": false,
			"message":  "Phone parameter is required",
		})
		return
	}

	record, err := s.verifications.Lookup(r.Context(), phone)
	if err != nil {
		if !store.IsErrNotFound(err) {
			s.logger.Error("verifications.Lookup", "err", err)
		}

		renderJSON(w, http.StatusOK, map[string]any{
			"verified":  false,
			"timestamp": nil,
		})
		return
	}

	if !record.Verified {
		renderJSON(w, http.StatusOK, map[string]any{
			"verified":  false,
			"timestamp": nil,
		})
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{
		"verified":         true,
		"timestamp":        record.Timestamp.UnixMilli(),
		"whatsappUsername": record.WhatsappUsername,
		"whatsappNumber":   record.WhatsappNumber,
	})
}

func renderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
