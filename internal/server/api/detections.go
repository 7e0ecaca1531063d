// Package api provides the JSON API handlers for the handsign service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/handsign/internal/store"
)

// DefaultListLimit is the number of detections returned when no limit is given.
const DefaultListLimit = 50

// DetectionsHandler handles HTTP requests for the detection history.
type DetectionsHandler struct {
	store *store.Store
}

// NewDetectionsHandler creates a new DetectionsHandler with the given store.
func NewDetectionsHandler(s *store.Store) *DetectionsHandler {
	return &DetectionsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
// Expected paths: /api/detections or /api/detections/{id}
func (h *DetectionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/detections")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, r, path)
}

type detectionResponse struct {
	ID        string `json:"id"`
	Alphabet  string `json:"alphabet"`
	Hands     int    `json:"hands"`
	Features  int    `json:"features"`
	CreatedAt string `json:"created_at"`
}

type listDetectionsResponse struct {
	Detections []detectionResponse `json:"detections"`
}

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toResponse(d *store.Detection) detectionResponse {
	return detectionResponse{
		ID:        d.ID,
		Alphabet:  d.Alphabet,
		Hands:     d.Hands,
		Features:  d.Features,
		CreatedAt: d.CreatedAt.Format(time.RFC3339Nano),
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Debug().Err(err).Msg("write response")
		}
	}
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// list handles GET /api/detections?limit=N.
func (h *DetectionsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > store.MaxListLimit {
			WriteError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(store.MaxListLimit))
			return
		}
		limit = n
	}

	detections, err := h.store.Detections().List(limit)
	if err != nil {
		log.Error().Err(err).Msg("list detections")
		WriteError(w, http.StatusInternalServerError, "Failed to list detections")
		return
	}

	response := listDetectionsResponse{
		Detections: make([]detectionResponse, 0, len(detections)),
	}
	for _, d := range detections {
		response.Detections = append(response.Detections, toResponse(d))
	}

	WriteJSON(w, http.StatusOK, response)
}

// get handles GET /api/detections/{id}.
func (h *DetectionsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.store.Detections().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Detection not found")
			return
		}
		log.Error().Err(err).Str("id", id).Msg("get detection")
		WriteError(w, http.StatusInternalServerError, "Failed to get detection")
		return
	}

	WriteJSON(w, http.StatusOK, toResponse(d))
}

// clear handles DELETE /api/detections.
func (h *DetectionsHandler) clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Detections().Clear()
	if err != nil {
		log.Error().Err(err).Msg("clear detections")
		WriteError(w, http.StatusInternalServerError, "Failed to clear detections")
		return
	}

	log.Info().Int64("deleted", n).Msg("detection history cleared")
	w.WriteHeader(http.StatusNoContent)
}
