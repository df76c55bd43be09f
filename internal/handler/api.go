package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/roamline/staykeeper/internal/logger"
	"github.com/roamline/staykeeper/internal/models"
	"github.com/roamline/staykeeper/internal/reconcile"
	"github.com/roamline/staykeeper/internal/service"
	"github.com/roamline/staykeeper/internal/store"
)

// APIHandler exposes the reconciliation engine to the UI layer over the
// agent's localhost listener.
type APIHandler struct {
	engine *reconcile.Engine
	logger *logger.Logger
}

func NewAPIHandler(engine *reconcile.Engine, log *logger.Logger) *APIHandler {
	return &APIHandler{
		engine: engine,
		logger: log,
	}
}

// Register wires the handler's routes onto mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/view", h.GetView)
	mux.HandleFunc("PUT /api/draft", h.SaveDraft)
	mux.HandleFunc("DELETE /api/draft", h.DiscardDraft)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
}

type viewResponse struct {
	Count int                  `json:"count"`
	Data  []models.DisplayItem `json:"data"`
}

type draftResponse struct {
	Message string                   `json:"message"`
	Data    *models.DraftReservation `json:"data,omitempty"`
}

type checkoutResponse struct {
	Message string                       `json:"message"`
	Data    *models.ConfirmedReservation `json:"data,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}

// GetView handles GET /api/view. The pending_first query parameter
// overrides the configured ordering for this request.
func (h *APIHandler) GetView(w http.ResponseWriter, r *http.Request) {
	engine := h.engine
	if raw := r.URL.Query().Get("pending_first"); raw != "" {
		pendingFirst, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "pending_first must be a boolean", "")
			return
		}
		override := *h.engine
		override.PendingFirst = pendingFirst
		engine = &override
	}

	items, err := engine.BuildView(r.Context())
	if err != nil {
		h.logger.Error("Failed to build view", logger.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to build reservation view", "")
		return
	}

	h.writeJSON(w, http.StatusOK, viewResponse{Count: len(items), Data: items})
}

// SaveDraft handles PUT /api/draft, replacing any existing draft.
func (h *APIHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	defer func() {
		_ = r.Body.Close()
	}()

	var reservation models.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}

	draft, err := h.engine.SaveDraft(reservation)
	if err != nil {
		if errors.Is(err, store.ErrMalformedDraft) {
			h.writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		// The guest's work may be lost; the UI must warn, not swallow.
		h.writeError(w, http.StatusInternalServerError, "Failed to save draft, your reservation was not stored", "")
		return
	}

	h.writeJSON(w, http.StatusCreated, draftResponse{Message: "Draft saved", Data: draft})
}

// DiscardDraft handles DELETE /api/draft. Idempotent.
func (h *APIHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DiscardDraft(); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to discard draft", "")
		return
	}
	h.writeJSON(w, http.StatusOK, draftResponse{Message: "Draft discarded"})
}

// Checkout handles POST /api/checkout.
func (h *APIHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	defer func() {
		_ = r.Body.Close()
	}()

	var payment service.PaymentDetails
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}
	if payment.Token == "" {
		h.writeError(w, http.StatusBadRequest, "payment token is required", "")
		return
	}

	confirmed, err := h.engine.Checkout(r.Context(), payment)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, checkoutResponse{Message: "Reservation confirmed and paid", Data: confirmed})
	case errors.Is(err, store.ErrNoDraft):
		h.writeError(w, http.StatusNotFound, "No draft reservation to check out", "")
	case errors.Is(err, service.ErrCheckoutRejected):
		var rejection *service.RejectionError
		code := ""
		if errors.As(err, &rejection) {
			code = rejection.Code
		}
		h.writeError(w, http.StatusConflict, "Payment was rejected, your draft is kept for retry", code)
	default:
		h.logger.Error("Checkout failed", logger.Error(err))
		h.writeError(w, http.StatusBadGateway, "Checkout could not be completed, your draft is kept for retry", "")
	}
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, msg, code string) {
	h.writeJSON(w, status, errorResponse{Error: msg, ErrorCode: code})
}
