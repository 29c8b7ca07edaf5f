// Package assist turns application tasks into single provider round trips
// and normalizes the provider's free-form replies into typed results.
//
// Four tasks are supported: image captioning, article suggestions,
// sentiment analysis and a two-pass conversational follow-up. Every task
// runs through one pipeline that acquires a client, performs exactly one
// call, extracts and parses the reply and classifies failures into the
// four error kinds defined in this package. Nothing is retried and no
// task falls back to default data after a failure.
package assist
