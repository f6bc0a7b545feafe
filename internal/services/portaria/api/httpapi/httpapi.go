// Package httpapi exposes the ordinance lifecycle over HTTP with JSON bodies.
// Errors are rendered through the shared taxonomy so callers can distinguish
// validation, state, authorization, and contention failures by status code.
package httpapi

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	apperrors "github.com/diariourbano/portaria/internal/errors"
	"github.com/diariourbano/portaria/internal/platform/i18n"
	"github.com/diariourbano/portaria/internal/services/portaria/app"
	"github.com/diariourbano/portaria/internal/services/portaria/domain"
	"github.com/diariourbano/portaria/internal/services/portaria/storage"
)

// actorHeader carries the authenticated actor identity. Authentication itself
// happens at the gateway; this service trusts the forwarded identity.
const actorHeader = "X-Actor-ID"

// Handler serves the ordinance HTTP API.
type Handler struct {
	service *app.Service
}

// NewHandler creates an HTTP handler over the lifecycle service.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Routes builds the request mux for the ordinance API.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/ordinances", h.handleCreateOrdinance)
	mux.HandleFunc("GET /v1/ordinances", h.handleListOrdinances)
	mux.HandleFunc("GET /v1/ordinances/{id}", h.handleGetOrdinance)
	mux.HandleFunc("PATCH /v1/ordinances/{id}", h.handleUpdateDraft)
	mux.HandleFunc("POST /v1/ordinances/{id}/submit", h.handleSubmit)
	mux.HandleFunc("POST /v1/ordinances/{id}/claim", h.handleClaim)
	mux.HandleFunc("POST /v1/ordinances/{id}/approve", h.handleApprove)
	mux.HandleFunc("POST /v1/ordinances/{id}/reject", h.handleReject)
	mux.HandleFunc("POST /v1/ordinances/{id}/sign", h.handleSign)
	mux.HandleFunc("POST /v1/ordinances/{id}/publish", h.handlePublish)
	mux.HandleFunc("POST /v1/ordinances/{id}/retry", h.handleRetry)
	mux.HandleFunc("GET /v1/ordinances/{id}/integrity", h.handleIntegrity)
	mux.HandleFunc("GET /v1/ordinances/{id}/timeline", h.handleTimeline)
	mux.HandleFunc("GET /v1/books/active", h.handleActiveBook)
	mux.HandleFunc("PATCH /v1/books/{id}", h.handleUpdateBook)
	mux.HandleFunc("GET /v1/books/{id}/allocations", h.handleListAllocations)
	mux.HandleFunc("GET /healthz", h.handleHealth)

	return mux
}

func (h *Handler) handleCreateOrdinance(w http.ResponseWriter, r *http.Request) {
	var req createOrdinanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ordinance, err := h.service.CreateDraft(r.Context(), domain.CreateOrdinanceInput{
		Title:      req.Title,
		ContentRef: req.ContentRef,
		AuthorID:   actorID(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrdinanceResponse(ordinance))
}

func (h *Handler) handleListOrdinances(w http.ResponseWriter, r *http.Request) {
	query := storage.ListQuery{
		Status:  domain.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
		AfterID: strings.TrimSpace(r.URL.Query().Get("after")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			writeError(w, r, apperrors.New(apperrors.CodeRequestInvalid, "page_size must be a non-negative integer"))
			return
		}
		query.PageSize = size
	}
	ordinances, err := h.service.ListOrdinances(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := ordinanceListResponse{Ordinances: make([]ordinanceResponse, 0, len(ordinances))}
	for _, o := range ordinances {
		resp.Ordinances = append(resp.Ordinances, toOrdinanceResponse(o))
	}
	if len(ordinances) > 0 {
		resp.NextAfter = ordinances[len(ordinances)-1].ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetOrdinance(w http.ResponseWriter, r *http.Request) {
	ordinance, err := h.service.GetOrdinance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrdinanceResponse(ordinance))
}

func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req updateDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ordinance, err := h.service.UpdateDraft(r.Context(), r.PathValue("id"), actorID(r), req.Title, req.ContentRef)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrdinanceResponse(ordinance))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (domain.Ordinance, error) {
		return h.service.SubmitForReview(r.Context(), r.PathValue("id"), actorID(r))
	})
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (domain.Ordinance, error) {
		return h.service.ClaimReview(r.Context(), r.PathValue("id"), actorID(r))
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (domain.Ordinance, error) {
		return h.service.ApproveReview(r.Context(), r.PathValue("id"), actorID(r))
	})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.transition(w, r, func() (domain.Ordinance, error) {
		return h.service.RejectReview(r.Context(), r.PathValue("id"), actorID(r), req.Reason)
	})
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.transition(w, r, func() (domain.Ordinance, error) {
		return h.service.Sign(r.Context(), r.PathValue("id"), actorID(r), domain.SignatureRequest{
			Mode:          domain.SignatureStatus(req.Mode),
			Justification: req.Justification,
			AttachmentRef: req.AttachmentRef,
		})
	})
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (domain.Ordinance, error) {
		return h.service.NumberAndPublish(r.Context(), r.PathValue("id"), actorID(r), originIP(r))
	})
}

func (h *Handler) handleRetry(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func() (domain.Ordinance, error) {
		return h.service.RetryProcessing(r.Context(), r.PathValue("id"), actorID(r), originIP(r))
	})
}

func (h *Handler) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	ordinanceID := r.PathValue("id")
	valid, err := h.service.ValidateIntegrity(r.Context(), ordinanceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !valid {
		writeError(w, r, apperrors.New(apperrors.CodeIntegrityViolation, "document content does not match its signed hash"))
		return
	}
	writeJSON(w, http.StatusOK, integrityResponse{OrdinanceID: ordinanceID, Valid: true})
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.GetTimeline(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := timelineResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleActiveBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.ActiveBook(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(book))
}

func (h *Handler) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	var req updateBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	book, err := h.service.UpdateBookFormat(r.Context(), r.PathValue("id"), actorID(r), req.NumberFormat)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookResponse(book))
}

func (h *Handler) handleListAllocations(w http.ResponseWriter, r *http.Request) {
	allocations, err := h.service.ListAllocations(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := allocationListResponse{Allocations: make([]allocationResponse, 0, len(allocations))}
	for _, a := range allocations {
		resp.Allocations = append(resp.Allocations, toAllocationResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func() (domain.Ordinance, error)) {
	ordinance, err := op()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrdinanceResponse(ordinance))
}

func actorID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(actorHeader))
}

// originIP resolves the client address recorded in the allocation log.
func originIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestLocale(r *http.Request) string {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return string(i18n.LocalePtBR)
	}
	return string(i18n.MatchLocale(tags))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, r, apperrors.Wrap(apperrors.CodeRequestInvalid, "invalid request body", err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := apperrors.HandleError(err, requestLocale(r))
	writeJSON(w, resp.Status, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
