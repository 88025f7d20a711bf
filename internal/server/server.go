// Package server provides the HTTP JSON API over the answer pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dojosearch/dojosearch/internal/feedback"
	"github.com/dojosearch/dojosearch/internal/metrics"
	"github.com/dojosearch/dojosearch/internal/models"
	"github.com/dojosearch/dojosearch/internal/pipeline"
)

var errQueryRequired = errors.New("query required")

// Server wires the pipeline, feedback store, and metrics into HTTP handlers.
type Server struct {
	pipeline *pipeline.Pipeline
	feedback feedback.Store
	metrics  *metrics.Collector
	logger   *slog.Logger
	http     *http.Server
}

// New creates the HTTP server listening on addr.
func New(addr string, p *pipeline.Pipeline, fb feedback.Store, mc *metrics.Collector, logger *slog.Logger) *Server {
	s := &Server{
		pipeline: p,
		feedback: fb,
		metrics:  mc,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/answer", s.handleAnswer)
	mux.HandleFunc("GET /v1/answer/stream", s.handleAnswerStream)
	mux.HandleFunc("POST /v1/feedback", s.handleFeedback)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	s.http = &http.Server{
		Addr:         addr,
		Handler:      LoggingMiddleware(logger)(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second, // long for LLM responses
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type answerRequest struct {
	Query  string `json:"query"`
	TopK   int    `json:"top_k,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err), false)
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, errQueryRequired, false)
		return
	}

	result, err := s.pipeline.Answer(r.Context(), req.Query, pipeline.Options{
		TopK:   req.TopK,
		UserID: req.UserID,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err, pipeline.Retryable(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type feedbackRequest struct {
	ResultID string `json:"result_id"`
	Helpful  bool   `json:"helpful"`
	Comment  string `json:"comment,omitempty"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err), false)
		return
	}

	rec := models.FeedbackRecord{
		ResultID:  req.ResultID,
		Helpful:   req.Helpful,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := feedback.Validate(rec); err != nil {
		writeError(w, http.StatusBadRequest, err, false)
		return
	}

	// Fire-and-forget: the submission is acknowledged immediately and
	// persisted on a detached context.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.feedback.Submit(ctx, rec); err != nil {
			s.logger.Warn("feedback write failed", "result_id", rec.ResultID, "error", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, retryable bool) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Retryable: retryable})
}
