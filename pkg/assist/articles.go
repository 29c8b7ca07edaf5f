package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diarydepresiku/moodlog/pkg/api"
	"github.com/diarydepresiku/moodlog/pkg/provider/openaicompat"
)

const articlesInstruction = "Buat tiga judul artikel beserta ringkasan singkat dalam format JSON " +
	"[{'title': 'Judul', 'summary': 'Ringkasan'}] tanpa tambahan penjelasan. " +
	"Balas hanya dengan JSON.\n"

// GenerateArticles asks for three article ideas related to seed. Any
// failure other than a missing credential is reported as
// KindMalformedResponse.
func (s *Service) GenerateArticles(ctx context.Context, seed string) ([]api.ArticleSuggestion, error) {
	return run(ctx, s, call[[]api.ArticleSuggestion]{
		task:     "articles",
		model:    ModelGeneral,
		messages: []openaicompat.ChatMessage{openaicompat.UserText(articlesInstruction + seed)},
		failKind: KindMalformedResponse,
		parse:    parseArticles,
	})
}

func parseArticles(raw string) ([]api.ArticleSuggestion, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("decode article list: %w", err)
	}
	if len(items) == 0 {
		return nil, errors.New("article list is empty")
	}

	out := make([]api.ArticleSuggestion, 0, len(items))
	for i, item := range items {
		title, err := requireString(item, "title", true)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i, err)
		}
		summary, err := requireString(item, "summary", true)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i, err)
		}
		out = append(out, api.ArticleSuggestion{Title: title, Summary: summary})
	}
	return out, nil
}

// requireString reads obj[key] and checks that it is a string, and
// non-empty when nonEmpty is set.
func requireString(obj map[string]any, key string, nonEmpty bool) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", key, v)
	}
	if nonEmpty && s == "" {
		return "", fmt.Errorf("field %q is empty", key)
	}
	return s, nil
}
