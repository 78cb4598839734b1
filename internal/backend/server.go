// Package backend is a reference implementation of the HTTP contract the
// dashboard talks to. It keeps one interview session in memory, tails a
// transcript file while recording, imports screenshots from a directory
// and runs AI jobs in the background.
package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/llm"
)

// Config holds server settings.
type Config struct {
	Addr    string
	Version string

	// ScreenshotDir is where captures are stored; stored paths start with it.
	ScreenshotDir string

	// JobTimeout bounds one background AI job.
	JobTimeout time.Duration

	Solver SolverConfig
}

// DefaultConfig returns the standard server settings.
func DefaultConfig() Config {
	return Config{
		Addr:          "127.0.0.1:5050",
		Version:       "(devel)",
		ScreenshotDir: "screenshots",
		JobTimeout:    2 * time.Minute,
		Solver:        DefaultSolverConfig(),
	}
}

// Server serves the dashboard API.
type Server struct {
	cfg      Config
	session  *Session
	recorder *Recorder
	capturer Capturer
	solver   *Solver
	logger   *zap.Logger

	// inflight holds "<route>|<storage key>" for running jobs so a repeated
	// request does not start a second identical job.
	inflight *cache.Cache

	jobCtx    context.Context
	cancelJob context.CancelFunc
	jobs      sync.WaitGroup
}

// New creates a Server.
func New(cfg Config, recorder *Recorder, capturer Capturer, providers *llm.Registry, logger *zap.Logger) *Server {
	def := DefaultConfig()
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = def.ScreenshotDir
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.Solver.MaxTokens == 0 {
		cfg.Solver = def.Solver
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:       cfg,
		session:   NewSession(nil),
		recorder:  recorder,
		capturer:  capturer,
		solver:    NewSolver(providers, cfg.Solver),
		logger:    logger.With(zap.String("module", "backend")),
		inflight:  cache.New(cfg.JobTimeout, time.Minute),
		jobCtx:    ctx,
		cancelJob: cancel,
	}
}

// Session returns the interview record.
func (s *Server) Session() *Session {
	return s.session
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	api.HandleFunc("/recording/start", s.handleStartRecording).Methods("POST")
	api.HandleFunc("/recording/stop", s.handleStopRecording).Methods("POST")
	api.HandleFunc("/recording/status", s.handleRecordingStatus).Methods("GET")
	api.HandleFunc("/transcriptions", s.handleTranscriptions).Methods("GET")
	api.HandleFunc("/transcriptions/latest", s.handleLatestTranscription).Methods("GET")
	api.HandleFunc("/transcriptions/recent", s.handleRecentTranscriptions).Methods("GET")

	for route, c := range captureRoutes {
		api.HandleFunc(route, s.handleCapture(c)).Methods("POST")
	}
	api.HandleFunc("/extract-question-from-transcript", s.handleTranscriptQuestion).Methods("POST")
	api.HandleFunc("/extracted_questions", s.handleExtractedQuestions).Methods("GET")
	api.HandleFunc("/extracted_question/{filename:.+}", s.handleExtractedQuestion).Methods("GET")
	api.HandleFunc("/screenshots", s.handleScreenshots).Methods("GET")

	for route, j := range solutionRoutes {
		api.HandleFunc(route, s.handleSolution(route, j)).Methods("POST")
	}
	for route, j := range followupRoutes {
		api.HandleFunc(route, s.handleFollowup(route, j)).Methods("POST")
	}
	api.HandleFunc("/solutions", s.handleSolutions).Methods("GET")
	api.HandleFunc("/solution/status", s.handleSolutionStatus).Methods("GET")
	api.HandleFunc("/solution/{filename:.+}", s.handleSolutionForFile).Methods("GET")

	api.HandleFunc("/question/mark", s.handleMarkQuestion).Methods("POST")
	api.HandleFunc("/question/followup", s.handleMarkFollowup).Methods("POST")
	api.HandleFunc("/reset", s.handleReset).Methods("POST")

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found: "+r.URL.Path)
	})
	return router
}

// Run serves on cfg.Addr until ctx is done, then shuts down and waits for
// running jobs to finish or be cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.Close()
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close cancels running jobs, stops recording and waits for both.
func (s *Server) Close() {
	s.cancelJob()
	s.jobs.Wait()
	if s.recorder != nil {
		s.recorder.Stop()
	}
}

// Wait blocks until every background job has finished.
func (s *Server) Wait() {
	s.jobs.Wait()
}

// startJob runs fn in the background under the job timeout. It returns
// false when the same job is already running. Starting a solution job
// clears the result stored under its key so pollers wait for the new one.
func (s *Server) startJob(id, kind string, fn func(ctx context.Context) error) bool {
	if err := s.inflight.Add(id, struct{}{}, cache.DefaultExpiration); err != nil {
		s.logger.Info("job already running", zap.String("job", id))
		return false
	}
	if kind == "solution" {
		_, key, _ := strings.Cut(id, "|")
		s.session.ClearSolution(key)
	}

	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		defer s.inflight.Delete(id)

		ctx, cancel := context.WithTimeout(llm.WithJob(s.jobCtx, id), s.cfg.JobTimeout)
		defer cancel()

		start := time.Now()
		err := fn(ctx)
		fields := []zap.Field{
			zap.String("job", id),
			zap.String("kind", kind),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			s.logger.Error("job failed", append(fields, zap.String("reason", llm.Describe(err)), zap.Error(err))...)
			return
		}
		s.logger.Info("job finished", fields...)
	}()
	return true
}
