package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/stream"
)

// VideoFeedHandler serves the camera as an MJPEG stream.
type VideoFeedHandler struct {
	streamer *stream.Streamer
}

// NewVideoFeedHandler creates a new VideoFeedHandler reading from source.
func NewVideoFeedHandler(source capture.FrameSource) *VideoFeedHandler {
	return &VideoFeedHandler{streamer: stream.New(source)}
}

// ServeHTTP streams MJPEG parts until the client goes away or capture fails.
func (h *VideoFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", stream.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	frames := 0
	for part := range h.streamer.Stream(ctx) {
		if ctx.Err() != nil {
			continue
		}
		if _, err := w.Write(part); err != nil {
			log.Debug().Err(err).Int("frames", frames).Msg("video feed client gone")
			cancel()
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
		frames++
	}

	log.Debug().Int("frames", frames).Msg("video feed closed")
}
