package apikey

import (
	"context"
	"net/http"
	"testing"

	"github.com/diarydepresiku/moodlog/pkg/auth"
)

func newTestAuth() *Authenticator {
	return New([]Key{
		{Name: "mobile-app", Value: "sk-test-key-1"},
		{Name: "dashboard", Value: "sk-test-key-2"},
		{Name: "disabled", Value: ""},
	})
}

func request(header string) *http.Request {
	r, _ := http.NewRequest("GET", "/stats/", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}

func TestAuthenticate(t *testing.T) {
	a := newTestAuth()

	tests := []struct {
		name        string
		header      string
		want        auth.AuthDecision
		wantSubject string
	}{
		{"first key", "Bearer sk-test-key-1", auth.Yes, "mobile-app"},
		{"second key", "Bearer sk-test-key-2", auth.Yes, "dashboard"},
		{"lowercase scheme", "bearer sk-test-key-2", auth.Yes, "dashboard"},
		{"unknown key", "Bearer sk-unknown", auth.No, ""},
		{"empty token", "Bearer ", auth.No, ""},
		{"no header", "", auth.Abstain, ""},
		{"basic scheme", "Basic abc", auth.Abstain, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := a.Authenticate(context.Background(), request(tt.header))
			if res.Decision != tt.want {
				t.Fatalf("Decision = %v, want %v", res.Decision, tt.want)
			}
			if tt.want == auth.Yes {
				if res.Identity.Subject != tt.wantSubject || res.Identity.Method != "apikey" {
					t.Errorf("Identity = %+v", res.Identity)
				}
			}
		})
	}
}

func TestEmptyValueNeverMatches(t *testing.T) {
	a := newTestAuth()
	if len(a.keys) != 2 {
		t.Errorf("keys = %d, want 2 (empty value skipped)", len(a.keys))
	}
}
