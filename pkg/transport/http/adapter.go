package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/diarydepresiku/moodlog/pkg/account"
	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/assist"
	"github.com/diarydepresiku/moodlog/pkg/debug"
	"github.com/diarydepresiku/moodlog/pkg/storage"
	"github.com/diarydepresiku/moodlog/pkg/transport"
)

// Adapter serves the moodlog API over HTTP.
// It routes requests to the stores and the assistant and serializes
// their results.
type Adapter struct {
	entries    transport.EntryStore
	assistant  transport.Assistant
	accounts   transport.Accounts // nil disables /register/ and /login/
	mux        *http.ServeMux
	middleware transport.Middleware
	config     Config
	logger     *slog.Logger
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64
	Validation  api.ValidationConfig
	Logger      *slog.Logger
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20, // 1 MiB
		Validation:  api.DefaultValidationConfig(),
		Logger:      slog.Default(),
	}
}

// NewAdapter creates an HTTP adapter. The account service is optional;
// when nil, registration and login are not routed.
// Middleware wraps the whole mux in the given order.
func NewAdapter(entries transport.EntryStore, assistant transport.Assistant, accounts transport.Accounts, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	a := &Adapter{
		entries:    entries,
		assistant:  assistant,
		accounts:   accounts,
		mux:        http.NewServeMux(),
		middleware: transport.Chain(middlewares...),
		config:     cfg,
		logger:     cfg.Logger,
	}

	if accounts != nil {
		a.mux.HandleFunc("POST /register/{$}", a.handleRegister)
		a.mux.HandleFunc("POST /login/{$}", a.handleLogin)
	}

	a.mux.HandleFunc("POST /entries/{$}", a.handleCreateEntry)
	a.mux.HandleFunc("GET /entries/{$}", a.handleListEntries)
	a.mux.HandleFunc("GET /entries/{id}", a.handleGetEntry)
	a.mux.HandleFunc("GET /stats/{$}", a.handleStats)

	a.mux.HandleFunc("POST /analyze/{$}", a.handleAnalyze)
	a.mux.HandleFunc("POST /chat/{$}", a.handleChat)
	a.mux.HandleFunc("POST /articles/{$}", a.handleArticles)
	a.mux.HandleFunc("POST /openrouter_caption/{$}", a.handleCaption)

	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)

	return a
}

// Handle mounts an additional handler (metrics, MCP) behind the same
// middleware chain. It must be called before Handler.
func (a *Adapter) Handle(pattern string, h http.Handler) {
	a.mux.Handle(pattern, h)
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.middleware(a.mux)
}

// handleRegister handles POST /register/.
func (a *Adapter) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.UserCreate
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateUserCreate(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	if _, err := a.accounts.Register(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, account.ErrEmailTaken):
			transport.WriteAPIError(w, api.NewConflictError("email", "email already registered"))
		case errors.Is(err, account.ErrPasswordTooLong):
			transport.WriteAPIError(w, api.NewInvalidRequestError("password", err.Error()))
		default:
			a.writeHandlerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, api.MessageResponse{Message: "User created"})
}

// handleLogin handles POST /login/.
func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.UserLogin
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateUserLogin(&req); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	token, err := a.accounts.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			transport.WriteAPIError(w, api.NewInvalidRequestError("", "invalid email or password"))
			return
		}
		a.writeHandlerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.Token{Token: token})
}

// handleCreateEntry handles POST /entries/.
func (a *Adapter) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req api.EntryCreate
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateEntryCreate(&req, a.config.Validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	entry, err := a.entries.SaveEntry(r.Context(), &req)
	if err != nil {
		a.writeHandlerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// handleListEntries handles GET /entries/.
func (a *Adapter) handleListEntries(w http.ResponseWriter, r *http.Request) {
	opts, apiErr := parseListOptions(r)
	if apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	entries, err := a.entries.ListEntries(r.Context(), opts)
	if err != nil {
		a.writeHandlerError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*api.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleGetEntry handles GET /entries/{id}.
func (a *Adapter) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("id", "entry ID must be an integer"))
		return
	}

	entry, err := a.entries.GetEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			transport.WriteAPIError(w, api.NewNotFoundError("entry "+raw+" not found"))
			return
		}
		a.writeHandlerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// handleStats handles GET /stats/.
func (a *Adapter) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.entries.MoodStats(r.Context())
	if err != nil {
		a.writeHandlerError(w, r, err)
		return
	}
	if stats == nil {
		stats = map[string]int{}
	}

	writeJSON(w, http.StatusOK, api.MoodStatsResponse{Stats: stats})
}

// handleAnalyze handles POST /analyze/.
func (a *Adapter) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req api.TextRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateText("text", req.Text, a.config.Validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	analysis, err := a.assistant.Analyze(r.Context(), req.Text)
	if err != nil {
		a.writeHandlerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.AnalyzeResponse{
		Analysis: analysis,
		Label:    assist.SentimentLabel(analysis),
	})
}

// handleChat handles POST /chat/. The reply is returned as plain text.
func (a *Adapter) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateText("text", req.Text, a.config.Validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	reply, err := a.assistant.Chat(r.Context(), req.Text, req.History, req.Mood)
	if err != nil {
		a.writeHandlerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(reply))
}

// handleArticles handles POST /articles/.
func (a *Adapter) handleArticles(w http.ResponseWriter, r *http.Request) {
	var req api.TextRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateText("text", req.Text, a.config.Validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	articles, err := a.assistant.GenerateArticles(r.Context(), req.Text)
	if err != nil {
		a.writeHandlerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, articles)
}

// handleCaption handles POST /openrouter_caption/.
func (a *Adapter) handleCaption(w http.ResponseWriter, r *http.Request) {
	var req api.CaptionRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateImageURL(req.ImageURL); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	caption, err := a.assistant.Caption(r.Context(), req.ImageURL)
	if err != nil {
		a.writeHandlerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.CaptionResponse{Caption: caption})
}

func (a *Adapter) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (a *Adapter) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.entries.HealthCheck(r.Context()); err != nil {
		a.logger.Warn("readiness check failed", "error", err)
		transport.WriteErrorResponse(w, api.NewServerError("store unavailable"), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// decodeJSON validates the content type, limits the body size and decodes
// the body into v. On failure it writes the error response and returns false.
func (a *Adapter) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
				http.StatusUnsupportedMediaType,
			)
			return false
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return false
	}
	return true
}

// writeHandlerError logs err with its full cause chain and writes the
// client-safe classification from transport.StatusFromError.
func (a *Adapter) writeHandlerError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := transport.StatusFromError(err)

	attrs := []slog.Attr{
		slog.String("request_id", transport.RequestIDFromContext(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	var assistErr *assist.Error
	if errors.As(err, &assistErr) {
		attrs = append(attrs,
			slog.String("task", assistErr.Task),
			slog.String("kind", assistErr.Kind.String()),
		)
		if assistErr.Raw != "" {
			debug.Log("transport", "unusable provider output",
				"task", assistErr.Task,
				"raw", debug.Truncate(assistErr.Raw, 500),
			)
		}
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	a.logger.LogAttrs(r.Context(), level, "handler error", attrs...)

	transport.WriteErrorResponse(w, apiErr, status)
}

// parseListOptions extracts pagination parameters from the query string.
func parseListOptions(r *http.Request) (transport.ListOptions, *api.APIError) {
	q := r.URL.Query()
	opts := transport.ListOptions{Limit: transport.DefaultListLimit}

	if skipStr := q.Get("skip"); skipStr != "" {
		skip, err := strconv.Atoi(skipStr)
		if err != nil || skip < 0 {
			return opts, api.NewInvalidRequestError("skip", "skip must be a non-negative integer")
		}
		opts.Skip = skip
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return opts, api.NewInvalidRequestError("limit", "limit must be a positive integer")
		}
		opts.Limit = limit
	}

	return opts.Normalize(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
