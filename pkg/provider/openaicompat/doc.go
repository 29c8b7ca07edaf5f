// Package openaicompat is a minimal client for OpenAI-compatible Chat
// Completions endpoints such as OpenRouter. It serializes requests with
// plain-string or multi-part content, performs a single bounded round trip
// and maps transport and HTTP failures into *CallError values.
package openaicompat
