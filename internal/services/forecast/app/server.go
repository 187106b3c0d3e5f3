// Package app hosts the forecast HTTP API: stored-model and filtered
// Rayleigh forecasts over the operational tracking store.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trackforge/defectcast/internal/platform/config"
	"github.com/trackforge/defectcast/internal/platform/timeouts"
	tracking "github.com/trackforge/defectcast/internal/services/tracking/storage"
	trackingsqlite "github.com/trackforge/defectcast/internal/services/tracking/storage/sqlite"
)

type serverEnv struct {
	TrackingDBPath string `env:"DEFECTCAST_TRACKING_DB_PATH"`
	ModelFile      string `env:"DEFECTCAST_MODEL_FILE"`
	APIKey         string `env:"DEFECTCAST_API_KEY"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	cfg.TrackingDBPath = config.Default(cfg.TrackingDBPath, filepath.Join("data", "tracking.db"))
	cfg.ModelFile = config.Default(cfg.ModelFile, filepath.Join("data", "rayleigh_model.json"))
	return cfg
}

// Server hosts the forecast HTTP API and its storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *trackingsqlite.Store
	tracking   tracking.Reader
	modelPath  string
}

// New creates a configured forecast server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured forecast server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := trackingsqlite.Open(env.TrackingDBPath)
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("open tracking store: %w", err)
	}

	server := &Server{
		listener:  listener,
		store:     store,
		tracking:  store,
		modelPath: env.ModelFile,
	}
	server.httpServer = &http.Server{
		Handler:           server.routes(env.APIKey),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return server, nil
}

func (s *Server) routes(apiKey string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /predict", requireKey(apiKey, http.HandlerFunc(s.handlePredict)))
	mux.Handle("POST /predict/filtered", requireKey(apiKey, http.HandlerFunc(s.handlePredictFiltered)))
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a forecast server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("forecast server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases the server's listener and storage.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
}
