// Package debug provides category-scoped debug logging for moodlog.
//
// Categories select which subsystem emits debug output (MOODLOG_DEBUG),
// the level selects how much detail slog lets through (MOODLOG_LOG_LEVEL).
//
//	debug.Log("provider", "request", "task", task, "model", model)
//	if debug.Enabled("assist") { /* expensive formatting */ }
//
// Categories: provider, assist, storage, auth, transport, config, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"
)

// LevelTrace sits below slog.LevelDebug. Raw provider replies are only
// written at this level.
const LevelTrace = slog.LevelDebug - 4

// Environment variables consulted by Init.
const (
	EnvCategories = "MOODLOG_DEBUG"
	EnvLevel      = "MOODLOG_LOG_LEVEL"
)

// categories is written by Init at startup and only read afterwards.
var categories map[string]bool

// output receives Raw text. Tests swap it out.
var output io.Writer = os.Stderr

func init() {
	categories = parseCategories(os.Getenv(EnvCategories))
}

// Init installs the default slog handler and the enabled categories.
// Environment values win over the configured ones.
func Init(configCategories, configLevel string) {
	cats := os.Getenv(EnvCategories)
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv(EnvLevel)
	if level == "" {
		level = configLevel
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	})))
}

// Enabled reports whether debug output is active for category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug record tagged with category. No-op when the category is off.
func Log(category, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level record tagged with category.
func Trace(category, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether TRACE output would be written for category.
func TraceIsEnabled(category string) bool {
	if !Enabled(category) {
		return false
	}
	return slog.Default().Enabled(context.Background(), LevelTrace)
}

// Raw writes text unformatted, only at TRACE with the category enabled.
func Raw(category, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(output, text)
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories in sorted order.
func Categories() []string {
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Truncate shortens s to at most maxLen runes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}

// minRevealLength is the shortest secret whose first and last four
// characters MaskSecret shows.
const minRevealLength = 20

// MaskSecret describes a secret without revealing it: its length plus the
// first and last four characters. Secrets shorter than minRevealLength are
// fully masked.
func MaskSecret(secret string) string {
	n := len(secret)
	if n == 0 {
		return "<empty>"
	}
	if n < minRevealLength {
		return fmt.Sprintf("len=%d ****", n)
	}
	return fmt.Sprintf("len=%d %s...%s", n, secret[:4], secret[n-4:])
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
