package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/handsign/internal/server/api"
	"github.com/ayusman/handsign/internal/sign"
	"github.com/ayusman/handsign/internal/store"
)

// Error bodies returned by /detect.
const (
	msgCaptureFailed = "Failed to capture frame."
	msgDetectFailed  = "Failed to detect hand sign."
)

type detectResponse struct {
	Alphabet string `json:"alphabet"`
}

// DetectHandler classifies the hand sign in the current camera frame.
type DetectHandler struct {
	recognizer *sign.Recognizer
	store      *store.Store
	hub        *DetectionsHub
}

// NewDetectHandler creates a DetectHandler. store and hub may be nil.
func NewDetectHandler(r *sign.Recognizer, s *store.Store, hub *DetectionsHub) *DetectHandler {
	return &DetectHandler{recognizer: r, store: s, hub: hub}
}

// ServeHTTP handles GET /detect.
func (h *DetectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result, err := h.recognizer.Recognize(r.Context())
	if err != nil {
		if errors.Is(err, sign.ErrCaptureFailed) {
			log.Warn().Err(err).Msg("detect")
			api.WriteError(w, http.StatusInternalServerError, msgCaptureFailed)
			return
		}
		log.Error().Err(err).Msg("detect")
		api.WriteError(w, http.StatusInternalServerError, msgDetectFailed)
		return
	}

	h.record(result)

	api.WriteJSON(w, http.StatusOK, detectResponse{Alphabet: result.Alphabet})
}

// record stores the result and publishes it. Failures here never fail the request.
func (h *DetectHandler) record(result sign.Result) {
	d := &store.Detection{
		Alphabet:  result.Alphabet,
		Hands:     result.Hands,
		Features:  result.Features,
		CreatedAt: time.Now(),
	}

	if h.store != nil {
		if err := h.store.Detections().Create(d); err != nil {
			log.Error().Err(err).Msg("record detection")
		}
	}

	if h.hub != nil && d.Alphabet != "" {
		h.hub.Publish(d)
	}
}
