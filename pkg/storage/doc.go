// Package storage holds what the storage adapters (memory, postgres) share:
// sentinel errors and email normalization.
//
// The adapters implement transport.EntryStore and transport.UserStore,
// defined in pkg/transport/handler.go.
package storage
