package assist

import (
	"context"

	"github.com/diarydepresiku/moodlog/pkg/provider/openaicompat"
)

const captionInstruction = "What is in this image?"

// Caption describes the image at imageURL. The reply is returned verbatim.
func (s *Service) Caption(ctx context.Context, imageURL string) (string, error) {
	return run(ctx, s, call[string]{
		task:  "caption",
		model: ModelGeneral,
		messages: []openaicompat.ChatMessage{
			openaicompat.UserParts(
				openaicompat.TextPart(captionInstruction),
				openaicompat.ImagePart(imageURL),
			),
		},
		failKind: KindProviderCall,
		parse:    passthrough,
	})
}
