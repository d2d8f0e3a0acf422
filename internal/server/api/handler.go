package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sunscout/sunscout/internal/feasibility"
	"github.com/sunscout/sunscout/internal/geo"
	"github.com/sunscout/sunscout/internal/server/history"
)

// maxListLimit bounds the ?limit= parameter on the list endpoint.
const maxListLimit = 500

// Evaluator runs one site evaluation. Satisfied by *orchestrator.Orchestrator
// and by the hot-swappable wrapper used by `sunscout serve`.
type Evaluator interface {
	Run(ctx context.Context, req feasibility.Request) *feasibility.Report
}

// Broadcaster pushes a completed report to streaming clients.
type Broadcaster interface {
	Publish(r *feasibility.Report)
}

// Notifier delivers decision notifications for a completed report.
type Notifier interface {
	Notify(r *feasibility.Report)
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	eval     Evaluator
	hist     *history.Store
	hub      Broadcaster // optional
	notifier Notifier    // optional
	mux      *http.ServeMux
}

// New creates a Handler and registers all routes. hub and notifier may be nil.
func New(eval Evaluator, hist *history.Store, hub Broadcaster, notifier Notifier) http.Handler {
	h := &Handler{eval: eval, hist: hist, hub: hub, notifier: notifier, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/evaluations", h.evaluations)
	h.mux.HandleFunc("/api/v1/evaluations/", h.getEvaluation) // subtree — extracts {id}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// evaluations dispatches POST (create) and GET (list) on /api/v1/evaluations.
func (h *Handler) evaluations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createEvaluation(w, r)
	case http.MethodGet:
		h.listEvaluations(w, r)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// createEvaluation runs the orchestrator for one address and returns the report.
// A malformed address is the caller's error (400); everything past that point
// always produces a well-formed report, even when every producer fails.
func (h *Handler) createEvaluation(w http.ResponseWriter, r *http.Request) {
	var in EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(in.Address) == "" {
		jsonErr(w, http.StatusBadRequest, "address is required")
		return
	}

	req, err := geo.ParseRequest(in.Address)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid address: expected \"123 Main St, City, ST\"")
		return
	}

	report := h.eval.Run(r.Context(), req)

	if h.hist != nil {
		if err := h.hist.Save(r.Context(), report); err != nil {
			// The evaluation itself succeeded; persistence is best-effort.
			slog.Error("api: failed to persist evaluation", "id", report.ID, "err", err)
		}
	}
	if h.hub != nil {
		h.hub.Publish(report)
	}
	if h.notifier != nil {
		h.notifier.Notify(report)
	}

	jsonResp(w, http.StatusCreated, report)
}

// listEvaluations returns GET /api/v1/evaluations?limit=N — recent reports, newest first.
func (h *Handler) listEvaluations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			jsonErr(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}

	reports, err := h.hist.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("api: list evaluations failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "storage error")
		return
	}
	if reports == nil {
		reports = []*feasibility.Report{}
	}
	jsonResp(w, http.StatusOK, reports)
}

// getEvaluation returns GET /api/v1/evaluations/{id} — a single stored report.
func (h *Handler) getEvaluation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/evaluations/")
	if id == "" {
		h.listEvaluations(w, r)
		return
	}

	report, ok, err := h.hist.Get(r.Context(), id)
	if err != nil {
		slog.Error("api: get evaluation failed", "id", id, "err", err)
		jsonErr(w, http.StatusInternalServerError, "storage error")
		return
	}
	if !ok {
		jsonErr(w, http.StatusNotFound, "evaluation not found")
		return
	}
	jsonResp(w, http.StatusOK, report)
}

// health returns GET /api/v1/health — decision counts and the mean composite
// over retained evaluations.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := h.hist.Stats(r.Context())
	if err != nil {
		slog.Error("api: health stats failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "storage error")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{Status: "ok", Evaluations: stats})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		slog.Debug("api: write response failed", "err", err)
	}
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, ErrorResponse{Error: msg})
}
