// Command mock-provider runs a deterministic OpenAI-compatible Chat
// Completions server for local development and end-to-end testing of
// moodlog. Replies are chosen by inspecting the prompt: image captions,
// article lists, chat analysis, follow-up questions and sentiment
// sentences each get a canned answer.
//
// Configuration:
//
//	MOCK_PORT    - Listen port (default: 9090)
//	MOCK_API_KEY - When set, requests must carry "Authorization: Bearer <key>"
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newMux(os.Getenv("MOCK_API_KEY")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock provider starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock provider failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock provider shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func newMux(apiKey string) *http.ServeMux {
	mux := http.NewServeMux()
	completions := requireKey(apiKey, http.HandlerFunc(handleChatCompletions))
	// OpenRouter-style and plain roots.
	mux.Handle("POST /api/v1/chat/completions", completions)
	mux.Handle("POST /v1/chat/completions", completions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

func requireKey(key string, next http.Handler) http.Handler {
	if key == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+key {
			writeError(w, http.StatusUnauthorized, "invalid api key", "authentication_error")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// --- Response types ---

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Handler ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "invalid_request_error")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty", "invalid_request_error")
		return
	}

	resp := makeTextResponse(reply(&req))
	resp.Model = req.Model
	if resp.Model == "" {
		resp.Model = "mock-model"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// reply picks the canned answer for the prompt in req.
func reply(req *chatRequest) string {
	if hasImageContent(req) {
		return "A notebook lying open on a wooden desk next to a cup of tea."
	}

	prompt := lastUserText(req)
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "judul artikel"):
		return "```json\n" + articlesReply + "\n```"
	case strings.Contains(lower, "(issue)"):
		return chatAnalysisReply(lower)
	case strings.Contains(lower, "pertanyaan lanjutan"):
		return "Bagaimana kalau kita coba tarik napas dalam sejenak, apa yang paling kamu rasakan sekarang?"
	case strings.Contains(lower, "analyze the sentiment"):
		return sentimentReply(lower)
	default:
		return "Terima kasih sudah berbagi."
	}
}

const articlesReply = `[
  {"title": "Mengenali Emosi Sehari-hari", "summary": "Cara sederhana mencatat dan memahami perasaan."},
  {"title": "Teknik Pernapasan untuk Tenang", "summary": "Latihan napas singkat saat cemas."},
  {"title": "Menulis Jurnal Bersyukur", "summary": "Kebiasaan kecil yang memperbaiki suasana hati."}
]`

func chatAnalysisReply(prompt string) string {
	issue := "perasaan sehari-hari"
	if moodOf(prompt) == "negative" {
		issue = "stres dan kesedihan"
	}
	out, _ := json.Marshal(map[string]string{
		"issue":     issue,
		"technique": "pernapasan dalam",
		"tone":      "hangat",
	})
	return "Berikut analisisnya:\n```json\n" + string(out) + "\n```"
}

func sentimentReply(prompt string) string {
	switch moodOf(prompt) {
	case "negative":
		return "Teks ini memiliki sentimen negatif."
	case "positive":
		return "Teks ini memiliki sentimen positif."
	default:
		return "Teks ini bernada netral."
	}
}

var (
	negativeWords = []string{"sad", "sedih", "angry", "marah", "stres", "cemas", "lelah", "bad"}
	positiveWords = []string{"happy", "senang", "bahagia", "great", "good", "syukur", "gembira"}
)

// moodOf classifies text by keyword. Negative words win.
func moodOf(text string) string {
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			return "negative"
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			return "positive"
		}
	}
	return "neutral"
}

func makeTextResponse(text string) chatResponse {
	return chatResponse{
		ID:     "chatcmpl-mock-text",
		Object: "chat.completion",
		Choices: []chatChoice{
			{
				Index:        0,
				Message:      chatMsg{Role: "assistant", Content: text},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

func writeError(w http.ResponseWriter, status int, msg, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": msg, "type": typ},
	})
}

// --- Helpers ---

func lastUserText(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role != "user" {
			continue
		}
		switch v := req.Messages[i].Content.(type) {
		case string:
			return v
		case []any:
			for _, part := range v {
				if m, ok := part.(map[string]any); ok && m["type"] == "text" {
					if text, ok := m["text"].(string); ok {
						return text
					}
				}
			}
		}
	}
	return ""
}

func hasImageContent(req *chatRequest) bool {
	for _, msg := range req.Messages {
		parts, ok := msg.Content.([]any)
		if !ok {
			continue
		}
		for _, part := range parts {
			if m, ok := part.(map[string]any); ok && m["type"] == "image_url" {
				return true
			}
		}
	}
	return false
}
