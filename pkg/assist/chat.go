package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/diarydepresiku/moodlog/pkg/provider/openaicompat"
)

// ChatAnalysis is the structured understanding produced by the first chat pass.
type ChatAnalysis struct {
	Issue     string `json:"issue"`
	Technique string `json:"technique"`
	Tone      string `json:"tone"`
}

// Chat produces a short follow-up question for a diary message. The first
// pass extracts {issue, technique, tone}; the second phrases the reply.
// Both passes share one client. The second pass only runs after the first
// succeeded. Failures other than a missing credential are reported as
// KindMalformedResponse.
func (s *Service) Chat(ctx context.Context, text, history, mood string) (string, error) {
	client, err := s.acquire("chat_analysis", ModelGeneral)
	if err != nil {
		return "", err
	}

	analysis, err := runWith(ctx, s, client, call[ChatAnalysis]{
		task:     "chat_analysis",
		model:    ModelGeneral,
		messages: []openaicompat.ChatMessage{openaicompat.UserText(analysisPrompt(text, history, mood))},
		failKind: KindMalformedResponse,
		parse:    parseChatAnalysis,
	})
	if err != nil {
		return "", err
	}

	return runWith(ctx, s, client, call[string]{
		task:     "chat_reply",
		model:    ModelGeneral,
		messages: []openaicompat.ChatMessage{openaicompat.UserText(replyPrompt(analysis))},
		failKind: KindMalformedResponse,
		parse:    passthrough,
	})
}

func analysisPrompt(text, history, mood string) string {
	var b strings.Builder
	b.WriteString("Kamu adalah pendamping jurnal yang empatik. Dari pesan pengguna berikut, ")
	b.WriteString("identifikasi masalah utama (issue), satu teknik coping yang cocok (technique), ")
	b.WriteString("dan nada balasan yang sesuai (tone). Balas hanya dengan JSON ")
	b.WriteString(`{"issue": "...", "technique": "...", "tone": "..."}` + " tanpa penjelasan tambahan.\n")
	b.WriteString("Pesan: " + text)
	if history != "" {
		b.WriteString("\nRiwayat percakapan: " + history)
	}
	if mood != "" {
		b.WriteString("\nMood pengguna: " + mood)
	}
	return b.String()
}

func replyPrompt(a ChatAnalysis) string {
	return fmt.Sprintf(
		"Dengan nada %s, tulis satu pertanyaan lanjutan yang singkat untuk pengguna yang sedang menghadapi %s, "+
			"sambil menyarankan teknik %s. Balas hanya dengan pertanyaan tersebut.",
		a.Tone, a.Issue, a.Technique,
	)
}

func parseChatAnalysis(raw string) (ChatAnalysis, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return ChatAnalysis{}, err
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return ChatAnalysis{}, fmt.Errorf("decode chat analysis: %w", err)
	}

	var a ChatAnalysis
	if a.Issue, err = requireString(obj, "issue", false); err != nil {
		return ChatAnalysis{}, err
	}
	if a.Technique, err = requireString(obj, "technique", false); err != nil {
		return ChatAnalysis{}, err
	}
	if a.Tone, err = requireString(obj, "tone", false); err != nil {
		return ChatAnalysis{}, err
	}
	return a, nil
}
