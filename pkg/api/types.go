package api

import "time"

// Mood labels accepted for diary entries. The values are the Indonesian
// labels used by the mobile client.
const (
	MoodSenang  = "Senang"
	MoodSedih   = "Sedih"
	MoodCemas   = "Cemas"
	MoodMarah   = "Marah"
	MoodTersipu = "Tersipu"
)

// Moods lists every accepted mood label.
var Moods = []string{MoodSenang, MoodSedih, MoodCemas, MoodMarah, MoodTersipu}

// IsValidMood reports whether m is one of the accepted mood labels.
// Matching is exact (case-sensitive).
func IsValidMood(m string) bool {
	for _, v := range Moods {
		if v == m {
			return true
		}
	}
	return false
}

// EntryCreate is the client payload for creating a diary entry.
type EntryCreate struct {
	Content    string   `json:"content"`
	Mood       string   `json:"mood"`
	Timestamp  int64    `json:"timestamp"`
	Activities []string `json:"activities"`
}

// Entry is a persisted diary entry.
type Entry struct {
	ID         int64    `json:"id"`
	Content    string   `json:"content"`
	Mood       string   `json:"mood"`
	Timestamp  int64    `json:"timestamp"`
	Activities []string `json:"activities"`
}

// NewEntry builds an Entry from a create payload. Activities is never nil
// so it serializes as an empty JSON array.
func NewEntry(id int64, c *EntryCreate) *Entry {
	activities := make([]string, len(c.Activities))
	copy(activities, c.Activities)
	return &Entry{
		ID:         id,
		Content:    c.Content,
		Mood:       c.Mood,
		Timestamp:  c.Timestamp,
		Activities: activities,
	}
}

// MoodStatsResponse wraps entry counts grouped by mood.
type MoodStatsResponse struct {
	Stats map[string]int `json:"stats"`
}

// ArticleSuggestion is one generated article idea.
type ArticleSuggestion struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// TextRequest is the body shared by /analyze/ and /articles/.
type TextRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse carries the provider's free-form sentiment judgment and
// the coarse label derived from it.
type AnalyzeResponse struct {
	Analysis string `json:"analysis"`
	Label    string `json:"label"`
}

// ChatRequest is the body of /chat/. History and Mood are optional.
type ChatRequest struct {
	Text    string `json:"text"`
	History string `json:"history,omitempty"`
	Mood    string `json:"mood,omitempty"`
}

// CaptionRequest is the body of /openrouter_caption/.
type CaptionRequest struct {
	ImageURL string `json:"image_url"`
}

// CaptionResponse carries a generated image description.
type CaptionResponse struct {
	Caption string `json:"caption"`
}

// UserCreate is the registration payload.
type UserCreate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// UserLogin is the login payload.
type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is returned by a successful login.
type Token struct {
	Token string `json:"token"`
}

// MessageResponse is a generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
