// Package http serves the moodlog API over net/http.
//
// Adapter maps the JSON endpoints (entries, stats, accounts and the
// assistant tasks) onto the transport interfaces using Go 1.22 ServeMux
// patterns. Server adds the default middleware chain and manages the
// listener lifecycle with graceful shutdown.
package http
