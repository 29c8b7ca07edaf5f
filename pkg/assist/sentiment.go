package assist

import (
	"context"
	"strings"

	"github.com/diarydepresiku/moodlog/pkg/provider/openaicompat"
)

// Sentiment labels derived from an analysis.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Analyze asks the provider for a one-sentence sentiment judgment of text
// and returns it verbatim.
func (s *Service) Analyze(ctx context.Context, text string) (string, error) {
	prompt := "Analyze the sentiment of the following text and respond with a short sentence. Text: " + text
	return run(ctx, s, call[string]{
		task:     "sentiment",
		model:    ModelSentiment,
		messages: []openaicompat.ChatMessage{openaicompat.UserText(prompt)},
		failKind: KindProviderCall,
		parse:    passthrough,
	})
}

// SentimentLabel derives a coarse label from an analysis text by
// case-insensitive keyword match. "negatif" takes precedence over "positif".
func SentimentLabel(analysis string) string {
	lower := strings.ToLower(analysis)
	switch {
	case strings.Contains(lower, "negatif"):
		return SentimentNegative
	case strings.Contains(lower, "positif"):
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}
