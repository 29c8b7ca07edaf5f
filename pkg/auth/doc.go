// Package auth authenticates HTTP requests for moodlog.
//
// Authenticators vote Yes (identity found), No (credentials present but
// invalid) or Abstain (credentials not for me). An AuthChain asks each in
// turn and falls back to a default decision when all abstain. The chain
// runs as HTTP middleware and stores the identity in the request context.
package auth
