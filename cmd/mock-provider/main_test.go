package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func post(t *testing.T, h http.Handler, body any, key string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/completions", bytes.NewReader(data))
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func content(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp chatResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("choices = %d, want 1", len(resp.Choices))
	}
	return resp.Choices[0].Message.Content
}

func userText(text string) map[string]any {
	return map[string]any{
		"model":    "openai/gpt-4o",
		"messages": []map[string]any{{"role": "user", "content": text}},
	}
}

func TestReplies(t *testing.T) {
	mux := newMux("")

	tests := []struct {
		name   string
		body   any
		expect string
	}{
		{"articles", userText("Buat tiga judul artikel ... stres kerja"), `"title"`},
		{"chat analysis", userText("identifikasi masalah utama (issue) ... Pesan: aku sedih"), `"issue":"stres dan kesedihan"`},
		{"follow-up", userText("Dengan nada hangat, tulis satu pertanyaan lanjutan"), "?"},
		{"negative sentiment", userText("Analyze the sentiment of the following text. Text: I am sad"), "negatif"},
		{"positive sentiment", userText("Analyze the sentiment of the following text. Text: so happy"), "positif"},
		{"neutral sentiment", userText("Analyze the sentiment of the following text. Text: the bus came"), "netral"},
		{"caption", map[string]any{
			"model": "openai/gpt-4o",
			"messages": []map[string]any{{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": "What is in this image?"},
					{"type": "image_url", "image_url": map[string]string{"url": "https://example.com/a.png"}},
				},
			}},
		}, "notebook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, mux, tt.body, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := content(t, rec); !strings.Contains(got, tt.expect) {
				t.Errorf("content = %q, want it to contain %q", got, tt.expect)
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	mux := newMux("secret")

	if rec := post(t, mux, userText("hi"), ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", rec.Code)
	}
	if rec := post(t, mux, userText("hi"), "wrong"); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", rec.Code)
	}
	if rec := post(t, mux, userText("hi"), "secret"); rec.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", rec.Code)
	}
}

func TestBadRequest(t *testing.T) {
	mux := newMux("")

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	if rec := post(t, mux, map[string]any{"messages": []any{}}, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("empty messages: status = %d, want 400", rec.Code)
	}
}
