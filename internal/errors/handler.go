package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/render"

	"freightpulse/internal/infrastructure"
)

// Problem type URIs used in RFC 7807 responses.
const (
	TypeValidation   = "/errors/validation"
	TypeNotFound     = "/errors/not-found"
	TypeInternal     = "/errors/internal"
	TypeRateLimit    = "/errors/rate-limit"
	TypeSnapshot     = "/errors/snapshot/unavailable"
	TypeTMSUpstream  = "/errors/tms/unavailable"
	TypeDataNotFound = "/errors/data/not-found"
)

// ProblemDetails is an RFC 7807 problem details response body.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Extensions
	TraceID   string                 `json:"trace_id,omitempty"`
	ErrorCode string                 `json:"error_code,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Render implements render.Renderer.
func (p *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/problem+json")
	render.Status(r, p.Status)
	return nil
}

// WithExtension attaches an extension member to the problem body.
func (p *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if p.Extra == nil {
		p.Extra = make(map[string]interface{})
	}
	p.Extra[key] = value
	return p
}

// ErrorHandler converts errors into RFC 7807 responses and logs them.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an ErrorHandler. When includeStack is true,
// internal error responses carry a stack trace extension for debugging.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger,
		includeStack: includeStack,
	}
}

// HandleError writes the RFC 7807 response for err and logs it with the
// request ID from the chi middleware chain.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	problem := h.ErrorToProblem(r.Context(), err)
	problem.Instance = r.URL.Path
	problem.TraceID = infrastructure.GetTraceID(r.Context())

	logAttrs := []any{
		slog.String("trace_id", problem.TraceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", problem.Status),
		slog.String("error", err.Error()),
	}
	if problem.Status >= 500 {
		h.logger.ErrorContext(r.Context(), "request failed", logAttrs...)
	} else {
		h.logger.WarnContext(r.Context(), "request error", logAttrs...)
	}

	if renderErr := render.Render(w, r, problem); renderErr != nil {
		h.logger.ErrorContext(r.Context(), "failed to render error response",
			slog.String("error", renderErr.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ErrorToProblem maps an error to its problem details representation.
func (h *ErrorHandler) ErrorToProblem(ctx context.Context, err error) *ProblemDetails {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr)
	}

	problem := &ProblemDetails{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
		Detail: "An unexpected error occurred",
	}
	if h.includeStack {
		problem.WithExtension("error", err.Error())
	}
	return problem
}

func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError) *ProblemDetails {
	problem := &ProblemDetails{
		Title:     http.StatusText(apiErr.StatusCode),
		Status:    apiErr.StatusCode,
		Detail:    apiErr.Message,
		ErrorCode: apiErr.ErrorCode,
	}

	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		problem.Type = TypeValidation
	case http.StatusNotFound:
		problem.Type = TypeNotFound
	case http.StatusTooManyRequests:
		problem.Type = TypeRateLimit
	case http.StatusServiceUnavailable:
		problem.Type = TypeSnapshot
	case http.StatusBadGateway:
		problem.Type = TypeTMSUpstream
	default:
		problem.Type = TypeInternal
	}

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// HandlePanic recovers a panic value into a 500 problem response.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	stack := debug.Stack()
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.String("trace_id", infrastructure.GetTraceID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("panic", recovered),
		slog.String("stack", string(stack)))

	problem := &ProblemDetails{
		Type:     TypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   "An unexpected error occurred",
		Instance: r.URL.Path,
		TraceID:  infrastructure.GetTraceID(r.Context()),
	}
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
	}

	if renderErr := render.Render(w, r, problem); renderErr != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
