// Package app wires the camera, detector, classifier and history store into
// a running handsign HTTP service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/classifier"
	"github.com/ayusman/handsign/internal/config"
	"github.com/ayusman/handsign/internal/detector"
	"github.com/ayusman/handsign/internal/server"
	"github.com/ayusman/handsign/internal/sign"
	"github.com/ayusman/handsign/internal/store"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Components are the collaborators an App serves. Camera, Detector and
// Classifier are required; Store may be nil.
type Components struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Classifier classifier.Classifier
	Store      *store.Store
}

// App is the assembled service.
type App struct {
	config     config.Config
	components Components
	hub        *server.DetectionsHub
	server     *server.Server
	ownsORT    bool
	closeOnce  sync.Once
}

// New builds every component from cfg. Any failure is fatal: the model,
// camera and detector helper must all be usable before serving starts.
func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := classifier.InitRuntime(cfg.ORTLibPath); err != nil {
		return nil, err
	}

	var c Components
	cleanup := func() {
		closeComponents(c)
		if err := classifier.DestroyRuntime(); err != nil {
			log.Warn().Err(err).Msg("destroy onnx runtime")
		}
	}

	clf, err := classifier.NewONNXClassifier(classifier.ONNXConfig{
		ModelPath:  cfg.ModelPath,
		InputName:  cfg.InputName,
		OutputName: cfg.OutputName,
	})
	if err != nil {
		cleanup()
		return nil, err
	}
	c.Classifier = clf

	detCfg := detector.DefaultConfig()
	detCfg.MaxHands = cfg.MaxHands
	detCfg.MinConfidence = cfg.MinConfidence
	detCfg.ScriptPath = cfg.ScriptPath
	detCfg.PythonPath = cfg.PythonPath
	det, err := detector.NewMediaPipeDetector(detCfg)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("hand detector: %w", err)
	}
	c.Detector = det

	cam := capture.NewCamera(cfg.CameraID)
	if err := cam.Open(); err != nil {
		cleanup()
		return nil, err
	}
	c.Camera = cam
	log.Info().Int("camera", cfg.CameraID).Msg("camera opened")

	if cfg.DBPath != "" {
		st, err := openStore(cfg.DBPath)
		if err != nil {
			cleanup()
			return nil, err
		}
		c.Store = st
		log.Info().Str("path", cfg.DBPath).Msg("detection history enabled")
	}

	a := NewWithComponents(cfg, c)
	a.ownsORT = true
	return a, nil
}

// NewWithComponents assembles an App over already-built components.
// The App takes ownership and closes them in Close.
func NewWithComponents(cfg config.Config, c Components) *App {
	hub := server.NewDetectionsHub()

	return &App{
		config:     cfg,
		components: c,
		hub:        hub,
		server: server.New(server.Config{
			Source:     c.Camera,
			Recognizer: sign.New(c.Camera, c.Detector, c.Classifier, classifier.Alphabet()),
			Store:      c.Store,
			Hub:        hub,
		}),
	}
}

func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return store.New(path)
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return a.server
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.config.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("serving")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	// Video feeds never finish on their own; give up on them after the timeout.
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	srv.Close()

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases every component. It is safe to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.hub.Close()
		closeComponents(a.components)
		if a.ownsORT {
			if err := classifier.DestroyRuntime(); err != nil {
				log.Warn().Err(err).Msg("destroy onnx runtime")
			}
		}
	})
}

func closeComponents(c Components) {
	if c.Camera != nil {
		if err := c.Camera.Close(); err != nil {
			log.Warn().Err(err).Msg("close camera")
		}
	}
	if c.Detector != nil {
		if err := c.Detector.Close(); err != nil {
			log.Warn().Err(err).Msg("close detector")
		}
	}
	if c.Classifier != nil {
		if err := c.Classifier.Close(); err != nil {
			log.Warn().Err(err).Msg("close classifier")
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
}
