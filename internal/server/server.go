// Package server exposes the compliance engine and the guidance matcher over
// HTTP.
//
//	GET  /api/health
//	GET  /api/questions?category=<research type>
//	POST /api/report?format=json|markdown|html   body: submission (JSON or YAML)
//	POST /api/ask                                 body: {"query": "..."}
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ethixguard/internal/compliance"
	"ethixguard/internal/knowledge"
	"ethixguard/internal/policy"
	"ethixguard/internal/report"
)

// Error codes carried in error bodies.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeIncomplete        = "INCOMPLETE_SUBMISSION"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeInternal          = "INTERNAL_ERROR"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server is the HTTP API.
type Server struct {
	addr     string
	kb       *knowledge.Base
	composer *report.Composer
	logger   *zap.Logger
	router   chi.Router
}

// New creates a server listening on addr. A nil kb uses the built-in
// guidance table; a nil composer uses the wall clock.
func New(addr string, kb *knowledge.Base, composer *report.Composer, logger *zap.Logger) *Server {
	if kb == nil {
		kb = knowledge.Default()
	}
	if composer == nil {
		composer = report.NewComposer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr:     addr,
		kb:       kb,
		composer: composer,
		logger:   logger,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/questions", s.handleQuestions)
		r.Post("/report", s.handleReport)
		r.Post("/ask", s.handleAsk)
	})
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	s.logger.Info("server starting", zap.String("addr", s.addr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown", zap.Error(err))
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		s.logger.Info("server stopped")
		return nil
	}
	return fmt.Errorf("listen %s: %w", s.addr, err)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type questionsResponse struct {
	Biosafety []policy.Question `json:"biosafety"`
	Category  policy.Question   `json:"category"`
	Ethics    []policy.Question `json:"ethics,omitempty"`
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	resp := questionsResponse{
		Biosafety: policy.BiosafetyQuestions(),
		Category:  policy.CategoryQuestion(),
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		c := policy.ParseResearchCategory(raw)
		if c == policy.CategoryUnrecognized {
			writeError(w, http.StatusBadRequest, CodeInvalidInput, fmt.Sprintf("unknown research type %q", raw))
			return
		}
		resp.Ethics = policy.EthicsQuestions(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err == nil && format == report.FormatTerminal {
		err = errors.New("terminal format is only available from the CLI")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeUnsupportedFormat, err.Error())
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, fmt.Sprintf("read body: %v", err))
		return
	}
	sub, err := compliance.DecodeSubmission(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}
	if err := sub.Complete(); err != nil {
		writeError(w, http.StatusBadRequest, CodeIncomplete, err.Error())
		return
	}

	rep := s.composer.ComposeSubmission(sub)
	out, err := report.Render(rep, format, "", 0)
	if err != nil {
		s.logger.Error("render report", zap.String("format", string(format)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to render report")
		return
	}
	s.logger.Debug("report composed",
		zap.String("id", rep.ID),
		zap.String("recommendation", string(rep.Recommendation.Kind)))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Report-Id", rep.ID)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidInput, fmt.Sprintf("decode request: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Response: s.kb.Respond(req.Query)})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
