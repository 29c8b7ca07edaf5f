package assist

import (
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON returns the JSON payload of a provider reply. The first
// ```json fenced block wins; without one, the whole reply is returned
// trimmed so the caller can attempt to parse it. A blank reply fails with
// KindNoPayload.
func ExtractJSON(raw string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if s := strings.TrimSpace(raw); s != "" {
		return s, nil
	}
	return "", &Error{Kind: KindNoPayload, Task: "extract"}
}
