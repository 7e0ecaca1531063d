// Package server provides the HTTP server for the handsign service.
package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/server/api"
	"github.com/ayusman/handsign/internal/sign"
	"github.com/ayusman/handsign/internal/store"
)

var allowedMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// Config holds the server configuration.
type Config struct {
	// Source feeds /video_feed. The same source should back Recognizer.
	Source     capture.FrameSource
	Recognizer *sign.Recognizer

	// Store enables detection history; nil disables it.
	Store *store.Store

	// Hub receives non-empty detections; nil disables /ws/detections.
	Hub *DetectionsHub
}

// Server represents the HTTP server for the handsign service.
type Server struct {
	config  Config
	router  *mux.Router
	handler http.Handler
	start   time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()

	s.handler = cors.New(cors.Options{
		AllowOriginFunc:  func(string) bool { return true },
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.Use(accessLog)

	s.router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	if s.config.Source != nil {
		s.router.Handle("/video_feed", NewVideoFeedHandler(s.config.Source)).Methods(http.MethodGet)
	}

	if s.config.Recognizer != nil {
		detect := NewDetectHandler(s.config.Recognizer, s.config.Store, s.config.Hub)
		s.router.Handle("/detect", detect).Methods(http.MethodGet)
	}

	if s.config.Store != nil {
		detections := api.NewDetectionsHandler(s.config.Store)
		s.router.Handle("/api/detections", detections)
		s.router.PathPrefix("/api/detections/").Handler(detections)
	}

	if s.config.Hub != nil {
		s.router.Handle("/ws/detections", s.config.Hub).Methods(http.MethodGet)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).Round(time.Second).String(),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack hands the connection to the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
