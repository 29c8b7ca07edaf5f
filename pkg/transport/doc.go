// Package transport defines the store and assistant interfaces the HTTP
// layer depends on, together with the net/http middleware chain and the
// error-to-status mapping shared by all endpoints.
//
// # Interfaces
//
//   - EntryStore persists diary entries and computes mood statistics.
//   - UserStore persists registered accounts.
//   - Assistant runs the LLM-backed tasks (caption, articles, sentiment,
//     chat).
//   - Accounts registers users and issues login tokens.
//
// Concrete implementations live in pkg/storage, pkg/assist and
// pkg/account; pkg/transport/http wires them to routes.
//
// # Middleware
//
// Middleware wraps http.Handler. Built-in middleware provides panic
// recovery, request ID assignment (X-Request-ID) and structured access
// logging via log/slog.
//
// # Errors
//
// StatusFromError maps handler errors to HTTP status codes. Assistant
// failures never leak provider output: a missing credential becomes a 500,
// any other assistant failure a 502, both with a generic message.
package transport
