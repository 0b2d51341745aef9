package layout

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 8, "a longe…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestTail(t *testing.T) {
	s := "one\ntwo\nthree\nfour"
	if got := Tail(s, 2); got != "three\nfour" {
		t.Errorf("Tail = %q", got)
	}
	if got := Tail(s, 10); got != s {
		t.Errorf("Tail = %q, want whole string", got)
	}
}

func TestRenderHeaderShowsStatus(t *testing.T) {
	h := RenderHeader("Library", "Algebra  2/5", 80)
	if !strings.Contains(h, "StudyBuddy") || !strings.Contains(h, "Algebra  2/5") {
		t.Error("expected app name and status in header")
	}
}
