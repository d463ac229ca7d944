// Package http exposes the tool registry over a small JSON API. The
// server is a thin façade: all validation, quota handling and retry
// logic lives below it.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/apierr"
	"bilancio/internal/log"
	"bilancio/internal/tools"
)

// maxRequestBody caps tool call payloads.
const maxRequestBody = 1 << 20

type Server struct {
	http.Server
	registry *tools.Registry
	logger   *log.Logger
}

// NewServer wires the tool registry behind the JSON routes.
func NewServer(addr string, registry *tools.Registry) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		registry: registry,
		logger:   log.New(log.Config{Component: log.ComponentHTTP}),
	}

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /tools", s.withRequestLog(s.handleListTools))
	mux.HandleFunc("POST /tools/{name}", s.withRequestLog(s.handleToolCall))

	return s
}

// withRequestLog stamps each request with an ID and logs start and
// completion with duration and status.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		s.logger.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.status,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// statusWriter captures the response status for the completion log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, map[string]any{"tools": s.registry.Names()})
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, &apierr.Error{Kind: apierr.Validation, Detail: "unreadable request body"})
		return
	}

	result, err := s.registry.Dispatch(r.Context(), name, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, result)
}

// envelope is the uniform response shape for tool calls.
type envelope struct {
	OK     bool       `json:"ok"`
	Result any        `json:"result,omitempty"`
	Error  *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after_s,omitempty"`
}

func writeResult(w http.ResponseWriter, status int, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{OK: true, Result: result})
}

// writeError maps the error taxonomy onto HTTP statuses. Rate-limit
// failures surface the retry hint as a Retry-After header so callers
// can wait instead of hammering.
func writeError(w http.ResponseWriter, err error) {
	kind := apierr.KindOf(err)
	status := statusFor(kind)

	body := errorBody{Kind: string(kind), Message: err.Error()}
	if body.Kind == "" {
		body.Kind = string(apierr.Server)
	}

	var apiErr *apierr.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		seconds := int(apiErr.RetryAfter / time.Second)
		body.RetryAfter = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{OK: false, Error: &body})
}

func statusFor(kind apierr.Kind) int {
	switch kind {
	case apierr.Validation:
		return http.StatusBadRequest
	case apierr.Auth:
		return http.StatusUnauthorized
	case apierr.NotFound:
		return http.StatusNotFound
	case apierr.RateLimit:
		return http.StatusTooManyRequests
	case apierr.Transient, apierr.Server:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
