package transport

import "testing"

func TestListOptionsNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListOptions
		want ListOptions
	}{
		{"zero value uses defaults", ListOptions{}, ListOptions{Skip: 0, Limit: DefaultListLimit}},
		{"negative skip clamps to zero", ListOptions{Skip: -5, Limit: 10}, ListOptions{Skip: 0, Limit: 10}},
		{"negative limit uses default", ListOptions{Limit: -1}, ListOptions{Limit: DefaultListLimit}},
		{"limit above max clamps", ListOptions{Skip: 3, Limit: 5000}, ListOptions{Skip: 3, Limit: MaxListLimit}},
		{"valid values unchanged", ListOptions{Skip: 20, Limit: 50}, ListOptions{Skip: 20, Limit: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
