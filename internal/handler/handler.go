package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"metv/internal/codec"
	"metv/internal/domain"
	"metv/internal/frontend"
	"metv/internal/inventory"
	"metv/internal/service"
)

const defaultJournalLimit = 100

// ManagerStatus is the read side of the frontend manager
type ManagerStatus interface {
	State() frontend.State
	Stats() frontend.Stats
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status        string         `json:"status"`
	Manager       string         `json:"manager"`
	Frontends     int            `json:"frontends"`
	Stats         frontend.Stats `json:"stats"`
	DroppedEvents uint64         `json:"dropped_events"`
}

// TuningRequest is the body of POST /api/tunings
type TuningRequest struct {
	Adapter  uint16 `json:"adapter"`
	Frontend uint16 `json:"frontend"`
	Channel  string `json:"channel"`
}

// DiscoveryHandler serves inventory, tuning and journal requests
type DiscoveryHandler struct {
	svc     *service.DiscoveryService
	manager ManagerStatus
	bus     *service.EventBus
}

// NewDiscoveryHandler creates a handler. manager and bus may be nil.
func NewDiscoveryHandler(svc *service.DiscoveryService, manager ManagerStatus, bus *service.EventBus) *DiscoveryHandler {
	return &DiscoveryHandler{svc: svc, manager: manager, bus: bus}
}

// Health reports whether the manager is still forwarding events
func (h *DiscoveryHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Manager:   "unknown",
		Frontends: h.svc.Inventory().Len(),
	}
	if h.manager != nil {
		state := h.manager.State()
		resp.Manager = state.String()
		resp.Stats = h.manager.Stats()
		if state == frontend.StateTerminated {
			resp.Status = "degraded"
		}
	}
	if h.bus != nil {
		resp.DroppedEvents = h.bus.Dropped()
	}

	writeJSON(w, resp, http.StatusOK)
}

// ListFrontends returns every available frontend
func (h *DiscoveryHandler) ListFrontends(w http.ResponseWriter, r *http.Request) {
	frontends := h.svc.Inventory().List()
	if frontends == nil {
		frontends = []inventory.Frontend{}
	}
	writeJSON(w, frontends, http.StatusOK)
}

// GetFrontend returns a single frontend
func (h *DiscoveryHandler) GetFrontend(w http.ResponseWriter, r *http.Request) {
	id, err := frontendParam(r)
	if err != nil {
		writeError(w, "Invalid frontend ID", err.Error(), http.StatusBadRequest)
		return
	}

	fe, ok := h.svc.Inventory().Get(id)
	if !ok {
		writeError(w, "Not found", id.String()+" is not available", http.StatusNotFound)
		return
	}

	writeJSON(w, fe, http.StatusOK)
}

// ListAdapters returns adapters with their frontend counts
func (h *DiscoveryHandler) ListAdapters(w http.ResponseWriter, r *http.Request) {
	adapters := h.svc.Inventory().Adapters()
	if adapters == nil {
		adapters = []inventory.AdapterSummary{}
	}
	writeJSON(w, adapters, http.StatusOK)
}

// ListTunings returns the frontends currently tuned
func (h *DiscoveryHandler) ListTunings(w http.ResponseWriter, r *http.Request) {
	tunings := h.svc.Inventory().Tunings()
	if tunings == nil {
		tunings = []domain.TuningID{}
	}
	writeJSON(w, tunings, http.StatusOK)
}

// CreateTuning records a tuning of an available frontend
func (h *DiscoveryHandler) CreateTuning(w http.ResponseWriter, r *http.Request) {
	var req TuningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Channel == "" {
		writeError(w, "Invalid request body", "channel is required", http.StatusBadRequest)
		return
	}

	t := domain.TuningID{
		Frontend: domain.FrontendID{Adapter: req.Adapter, Frontend: req.Frontend},
		Channel:  req.Channel,
	}
	if err := h.svc.Tune(r.Context(), t); err != nil {
		h.writeTuningError(w, "Failed to tune", err)
		return
	}

	writeJSON(w, t, http.StatusCreated)
}

// DeleteTuning releases the tuning of a frontend
func (h *DiscoveryHandler) DeleteTuning(w http.ResponseWriter, r *http.Request) {
	id, err := frontendParam(r)
	if err != nil {
		writeError(w, "Invalid frontend ID", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Release(r.Context(), id); err != nil {
		h.writeTuningError(w, "Failed to release", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DiscoveryHandler) writeTuningError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, inventory.ErrUnknownFrontend) {
		writeError(w, "Not found", err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("%s: %v", msg, err)
	writeError(w, msg, err.Error(), http.StatusInternalServerError)
}

// Journal returns recent discovery history, newest first
func (h *DiscoveryHandler) Journal(w http.ResponseWriter, r *http.Request) {
	journal := h.svc.Journal()
	if journal == nil {
		writeError(w, "Journal disabled", "", http.StatusServiceUnavailable)
		return
	}

	limit := defaultJournalLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, "Invalid limit", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := journal.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to read journal: %v", err)
		writeError(w, "Failed to read journal", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, entries, http.StatusOK)
}

// JournalStats returns how many entries exist per event kind
func (h *DiscoveryHandler) JournalStats(w http.ResponseWriter, r *http.Request) {
	journal := h.svc.Journal()
	if journal == nil {
		writeError(w, "Journal disabled", "", http.StatusServiceUnavailable)
		return
	}

	counts, err := journal.CountByKind(r.Context())
	if err != nil {
		log.Printf("Failed to count journal: %v", err)
		writeError(w, "Failed to count journal", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, counts, http.StatusOK)
}

// Export writes an inventory snapshot in the requested format
func (h *DiscoveryHandler) Export(w http.ResponseWriter, r *http.Request) {
	exporter, ok := codec.Lookup(chi.URLParam(r, "format"))
	if !ok {
		writeError(w, "Unknown format", "supported formats: json, yaml", http.StatusNotFound)
		return
	}

	inv := h.svc.Inventory()
	snapshot := codec.Take(inv, inv.Base(), time.Now())

	w.Header().Set("Content-Type", exporter.ContentType())
	if err := exporter.Export(snapshot, w); err != nil {
		log.Printf("Failed to export %s: %v", exporter.Format(), err)
	}
}

func frontendParam(r *http.Request) (domain.FrontendID, error) {
	adapter, err := strconv.ParseUint(chi.URLParam(r, "adapter"), 10, 16)
	if err != nil {
		return domain.FrontendID{}, err
	}
	fe, err := strconv.ParseUint(chi.URLParam(r, "frontend"), 10, 16)
	if err != nil {
		return domain.FrontendID{}, err
	}
	return domain.FrontendID{Adapter: uint16(adapter), Frontend: uint16(fe)}, nil
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
