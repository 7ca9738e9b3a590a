// Package server exposes translation and speech synthesis over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/logging"
	"codeberg.org/snonux/babelcast/internal/session"
)

const (
	DefaultAddr      = ":8080"
	DefaultRateLimit = 60 // requests per minute and client IP

	maxUploadBytes = 1 << 20
	maxBodyBytes   = 64 << 10
)

// Runner evaluates one interaction.
type Runner interface {
	Run(ctx context.Context, req session.Request) (*session.Result, error)
}

// Synthesizer renders speech for text into w.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string, w io.Writer) (int64, error)
}

// Config holds the listener settings.
type Config struct {
	Addr      string
	RateLimit int
}

// Server is the HTTP front end of a Session.
type Server struct {
	cfg      Config
	runner   Runner
	synth    Synthesizer
	gatherer prometheus.Gatherer
	log      *zap.Logger
	router   chi.Router
}

// New creates a server. synth may be nil, which disables /api/speech.
func New(cfg Config, runner Runner, synth Synthesizer, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:      cfg,
		runner:   runner,
		synth:    synth,
		gatherer: gatherer,
		log:      logging.OrNop(log),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/pairs", s.handlePairs)

		api.Group(func(limited chi.Router) {
			limited.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))

			limited.Post("/translate", s.handleTranslate)
			limited.Post("/translate/file", s.handleTranslateFile)
			limited.Post("/speech", s.handleSpeech)
		})
	})

	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)))
	})
}
