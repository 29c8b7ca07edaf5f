// Package api defines the request, response and domain types exchanged
// over the moodlog HTTP API, together with the structured error type and
// request validation.
//
// The package has no external dependencies and performs no I/O. JSON field
// names match the contract of the mobile client (snake_case, trailing-slash
// routes), so existing clients keep working unchanged.
//
// Core types:
//   - [Entry]: a stored, mood-tagged diary entry
//   - [EntryCreate]: client payload for a new entry
//   - [ArticleSuggestion]: one generated article idea
//   - [APIError]: structured error with type, param and message
package api
