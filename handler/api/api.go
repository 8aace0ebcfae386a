// Package api is the REST surface the payment page and the onboarding flow
// talk to.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/tandalabs/tanda-gateway/core"
	"github.com/tandalabs/tanda-gateway/service/claim"
)

func New(orchestrator *claim.Orchestrator, groups core.GroupService, logger *slog.Logger) *Server {
	return &Server{
		orchestrator: orchestrator,
		groups:       groups,
		logger:       logger.With("server", "api"),
	}
}

type Server struct {
	orchestrator *claim.Orchestrator
	groups       core.GroupService
	logger       *slog.Logger
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/orders", func(r chi.Router) {
		r.Get("/{id}", s.getOrder)
		r.Post("/{id}/claim", s.claimOrder)
	})

	r.Route("/onboarding", func(r chi.Router) {
		r.Post("/verify", s.requestCode)
		r.Post("/", s.createGroup)
	})

	return r
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := s.orchestrator.Load(r.Context(), id)
	if err != nil {
		s.renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, order)
}

type claimPayload struct {
	PaymentType   string `json:"paymentType"`
	ProofMetadata *struct {
		Bank          string          `json:"bank"`
		Amount        decimal.Decimal `json:"amount"`
		Reference     string          `json:"reference"`
		ScreenshotURL string          `json:"screenshotUrl,omitempty"`
	} `json:"proofMetadata,omitempty"`
}

func (s *Server) claimOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload claimPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid claim payload"})
		return
	}

	var (
		receipt *core.ClaimReceipt
		err     error
	)

	switch payload.PaymentType {
	case "fiat":
		if payload.ProofMetadata == nil {
			renderJSON(w, http.StatusBadRequest, map[string]string{"message": "fiat claim requires proofMetadata"})
			return
		}

		receipt, err = s.orchestrator.SubmitFiat(r.Context(), id, &core.PaymentProofFiat{
			Bank:          payload.ProofMetadata.Bank,
			Amount:        payload.ProofMetadata.Amount,
			Reference:     payload.ProofMetadata.Reference,
			ScreenshotURL: payload.ProofMetadata.ScreenshotURL,
		})
	case "crypto":
		receipt, err = s.orchestrator.SubmitCrypto(r.Context(), id)
	default:
		renderJSON(w, http.StatusBadRequest, map[string]string{"message": "paymentType must be fiat or crypto"})
		return
	}

	if err != nil {
		s.renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, receipt)
}

func (s *Server) requestCode(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		renderJSON(w, http.StatusBadRequest, map[string]string{"message": "phone is required"})
		return
	}

	code, err := s.groups.RequestCode(r.Context(), phone)
	if err != nil {
		s.renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{"code": code})
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req core.GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid group payload"})
		return
	}

	receipt, err := s.groups.CreateGroup(r.Context(), &req)
	if err != nil {
		s.renderError(w, err)
		return
	}

	renderJSON(w, http.StatusOK, receipt)
}

// renderError maps the error taxonomy onto HTTP statuses. Every failure
// carries a human-readable message; none is fatal to the process.
func (s *Server) renderError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway

	switch {
	case errors.Is(err, core.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrClaimInFlight):
		status = http.StatusConflict
	case errors.Is(err, core.ErrNoChallenge), errors.Is(err, core.ErrMalformedHeader):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrWalletUnavailable),
		errors.Is(err, core.ErrSignatureRejected),
		errors.Is(err, core.ErrTrustlineMissing),
		errors.Is(err, core.ErrTrustlineSubmission):
		status = http.StatusFailedDependency
	case errors.Is(err, core.ErrConfigMissing):
		status = http.StatusInternalServerError
	}

	s.logger.Warn("request failed", "status", status, "err", err)
	renderJSON(w, status, map[string]string{"message": err.Error()})
}

func renderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
