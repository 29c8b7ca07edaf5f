// Package mcpserver exposes diary statistics and the assistant tasks as
// Model Context Protocol tools, served over streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/assist"
	"github.com/diarydepresiku/moodlog/pkg/debug"
	"github.com/diarydepresiku/moodlog/pkg/transport"
)

// Tool names.
const (
	ToolMoodStats        = "mood_stats"
	ToolListEntries      = "list_entries"
	ToolAnalyzeSentiment = "analyze_sentiment"
	ToolSuggestArticles  = "suggest_articles"
)

// MoodStatsOutput is the structured result of mood_stats.
type MoodStatsOutput struct {
	Stats map[string]int `json:"stats"`
}

// ListEntriesInput selects a page of entries, newest first.
type ListEntriesInput struct {
	Skip  int `json:"skip,omitempty" jsonschema:"number of entries to skip, default 0"`
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of entries, default 100, max 1000"`
}

// ListEntriesOutput is the structured result of list_entries.
type ListEntriesOutput struct {
	Entries []*api.Entry `json:"entries"`
}

// TextInput is the argument of the text-based assistant tools.
type TextInput struct {
	Text string `json:"text" jsonschema:"journal text to analyse"`
}

// SentimentOutput is the structured result of analyze_sentiment.
type SentimentOutput struct {
	Analysis string `json:"analysis"`
	Label    string `json:"label"`
}

// ArticlesOutput is the structured result of suggest_articles.
type ArticlesOutput struct {
	Articles []api.ArticleSuggestion `json:"articles"`
}

// Server wraps an MCP server bound to the entry store and assistant.
type Server struct {
	server    *mcp.Server
	entries   transport.EntryStore
	assistant transport.Assistant
	logger    *slog.Logger
}

// New creates a Server and registers its tools.
func New(entries transport.EntryStore, assistant transport.Assistant, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		server: mcp.NewServer(
			&mcp.Implementation{Name: "moodlog", Version: version},
			nil,
		),
		entries:   entries,
		assistant: assistant,
		logger:    logger,
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolMoodStats,
		Description: "Counts diary entries per mood",
	}, s.moodStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListEntries,
		Description: "Lists diary entries, newest first",
	}, s.listEntries)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolAnalyzeSentiment,
		Description: "Judges the sentiment of a journal text",
	}, s.analyzeSentiment)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolSuggestArticles,
		Description: "Suggests three articles related to a journal text",
	}, s.suggestArticles)

	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server { return s.server }

// Handler serves the tools over the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) moodStats(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, MoodStatsOutput, error) {
	stats, err := s.entries.MoodStats(ctx)
	if err != nil {
		return s.toolError(ctx, ToolMoodStats, err), MoodStatsOutput{Stats: map[string]int{}}, nil
	}
	if stats == nil {
		stats = map[string]int{}
	}
	out := MoodStatsOutput{Stats: stats}
	return jsonResult(out), out, nil
}

func (s *Server) listEntries(ctx context.Context, _ *mcp.CallToolRequest, in ListEntriesInput) (*mcp.CallToolResult, ListEntriesOutput, error) {
	opts := transport.ListOptions{Skip: in.Skip, Limit: in.Limit}.Normalize()
	entries, err := s.entries.ListEntries(ctx, opts)
	if err != nil {
		return s.toolError(ctx, ToolListEntries, err), ListEntriesOutput{Entries: []*api.Entry{}}, nil
	}
	if entries == nil {
		entries = []*api.Entry{}
	}
	out := ListEntriesOutput{Entries: entries}
	return jsonResult(out), out, nil
}

func (s *Server) analyzeSentiment(ctx context.Context, _ *mcp.CallToolRequest, in TextInput) (*mcp.CallToolResult, SentimentOutput, error) {
	if apiErr := api.ValidateText("text", in.Text, api.DefaultValidationConfig()); apiErr != nil {
		return errorResult(apiErr.Message), SentimentOutput{}, nil
	}
	analysis, err := s.assistant.Analyze(ctx, in.Text)
	if err != nil {
		return s.toolError(ctx, ToolAnalyzeSentiment, err), SentimentOutput{}, nil
	}
	out := SentimentOutput{Analysis: analysis, Label: assist.SentimentLabel(analysis)}
	return jsonResult(out), out, nil
}

func (s *Server) suggestArticles(ctx context.Context, _ *mcp.CallToolRequest, in TextInput) (*mcp.CallToolResult, ArticlesOutput, error) {
	if apiErr := api.ValidateText("text", in.Text, api.DefaultValidationConfig()); apiErr != nil {
		return errorResult(apiErr.Message), ArticlesOutput{Articles: []api.ArticleSuggestion{}}, nil
	}
	articles, err := s.assistant.GenerateArticles(ctx, in.Text)
	if err != nil {
		return s.toolError(ctx, ToolSuggestArticles, err), ArticlesOutput{Articles: []api.ArticleSuggestion{}}, nil
	}
	out := ArticlesOutput{Articles: articles}
	return jsonResult(out), out, nil
}

// toolError logs err and returns an IsError result carrying only the
// client-safe message.
func (s *Server) toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	_, apiErr := transport.StatusFromError(err)
	s.logger.LogAttrs(ctx, slog.LevelWarn, "mcp tool failed",
		slog.String("tool", tool),
		slog.String("error", err.Error()),
	)
	return errorResult(apiErr.Message)
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult("encoding result failed")
	}
	debug.Log("transport", "mcp tool result", "bytes", len(data))
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
