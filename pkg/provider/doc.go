// Package provider builds authenticated handles to the LLM provider.
//
// A Factory is created once at startup from explicit configuration. Each
// task asks it for a client right before its single remote call; a missing
// credential is reported then, per request, instead of failing startup.
package provider
