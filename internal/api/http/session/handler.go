package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/metrics"
	repo "github.com/oshokin/soccer-timer/internal/repository/session"
)

// Actions understood by the endpoint.
const (
	ActionCheck = "check"
	ActionLoad  = "load"
	ActionSave  = "save"
)

// Error messages returned to clients.
const (
	msgNoInput          = "No input provided"
	msgInvalidJSON      = "Invalid JSON input: "
	msgInvalidAction    = "Invalid action"
	msgPasswordRequired = "Password required"
	msgSaveRequired     = "Password and data required"
	msgNotFound         = "Session not found"
	msgSaveFailed       = "Failed to save session"
	msgStorageFailed    = "Session storage unavailable"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

// outcome labels beyond metrics.OutcomeOK/OutcomeError.
const (
	outcomeRejected = "rejected"
	actionInvalid   = "invalid"
)

// Request is the body of every session call.
type Request struct {
	Action   *string         `json:"action"`
	Password string          `json:"password"`
	Data     json.RawMessage `json:"data"`
}

// ErrorResponse reports a failed call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CheckResponse answers the check action.
type CheckResponse struct {
	Exists bool `json:"exists"`
}

// SaveResponse answers the save action.
type SaveResponse struct {
	Success bool `json:"success"`
}

// Handler serves the session endpoint.
type Handler struct {
	repo    repo.Repository
	maxAge  time.Duration
	metrics *metrics.Session
}

// NewHandler creates a handler over repository pruning entries older than maxAge.
// A nil metrics disables instrumentation.
func NewHandler(repository repo.Repository, maxAge time.Duration, m *metrics.Session) *Handler {
	return &Handler{
		repo:    repository,
		maxAge:  maxAge,
		metrics: m,
	}
}

// Router mounts the endpoint with request logging and permissive CORS.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)

	r.Options("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/", h.serve)

	return r
}

// CORSMiddleware allows browser clients from any origin.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type")

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs each request at debug level.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := logger.WithKV(r.Context(), "request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.DebugKV(ctx, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

//nolint:cyclop,funlen // One branch per action keeps the contract readable.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		h.reject(w, actionInvalid, http.StatusBadRequest, msgNoInput)

		return
	}

	var req Request
	if err = json.Unmarshal(body, &req); err != nil {
		h.reject(w, actionInvalid, http.StatusBadRequest, msgInvalidJSON+err.Error())

		return
	}

	if req.Action == nil {
		h.reject(w, actionInvalid, http.StatusBadRequest, msgInvalidAction)

		return
	}

	h.prune(r)

	action := *req.Action

	switch action {
	case ActionCheck:
		if req.Password == "" {
			h.reject(w, action, http.StatusBadRequest, msgPasswordRequired)

			return
		}

		exists, err := h.repo.Exists(ctx, req.Password)
		if err != nil {
			logger.ErrorKV(ctx, "Session check failed", "error", err)
			h.fail(w, action, http.StatusInternalServerError, msgStorageFailed)

			return
		}

		h.ok(w, action, CheckResponse{Exists: exists})
	case ActionLoad:
		if req.Password == "" {
			h.reject(w, action, http.StatusBadRequest, msgPasswordRequired)

			return
		}

		data, err := h.repo.Load(ctx, req.Password)

		switch {
		case errors.Is(err, repo.ErrNotFound):
			h.reject(w, action, http.StatusNotFound, msgNotFound)
		case err != nil:
			logger.ErrorKV(ctx, "Session load failed", "error", err)
			h.fail(w, action, http.StatusInternalServerError, msgStorageFailed)
		default:
			h.metrics.Request(action, metrics.OutcomeOK)
			writeRaw(w, http.StatusOK, data)
		}
	case ActionSave:
		if req.Password == "" || !present(req.Data) {
			h.reject(w, action, http.StatusBadRequest, msgSaveRequired)

			return
		}

		var compact bytes.Buffer
		if err := json.Compact(&compact, req.Data); err != nil {
			h.reject(w, action, http.StatusBadRequest, msgInvalidJSON+err.Error())

			return
		}

		if err := h.repo.Save(ctx, req.Password, compact.Bytes()); err != nil {
			logger.ErrorKV(ctx, "Session save failed", "error", err)
			h.fail(w, action, http.StatusInternalServerError, msgSaveFailed)

			return
		}

		h.ok(w, action, SaveResponse{Success: true})
	default:
		h.reject(w, actionInvalid, http.StatusBadRequest, msgInvalidAction)
	}
}

// prune drops stale sessions; failures are logged and do not fail the request.
func (h *Handler) prune(r *http.Request) {
	removed, err := h.repo.Prune(r.Context(), h.maxAge)
	if err != nil {
		logger.WarnKV(r.Context(), "Session pruning failed", "error", err)
	}

	h.metrics.Pruned(removed)
}

func (h *Handler) ok(w http.ResponseWriter, action string, body any) {
	h.metrics.Request(action, metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) reject(w http.ResponseWriter, action string, code int, message string) {
	h.metrics.Request(action, outcomeRejected)
	writeJSON(w, code, ErrorResponse{Error: message})
}

func (h *Handler) fail(w http.ResponseWriter, action string, code int, message string) {
	h.metrics.Request(action, metrics.OutcomeError)
	writeJSON(w, code, ErrorResponse{Error: message})
}

// present reports whether a JSON field was supplied with a non-null value.
func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeRaw(w, code, data)
}

func writeRaw(w http.ResponseWriter, code int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data) //nolint:errcheck // The client has gone away.
}
