package overlay

import (
	"strings"
	"testing"
)

func TestFPSLabel(t *testing.T) {
	v := NewView()
	tests := []struct {
		fps  float32
		want string
	}{
		{0, "FPS: 0.00"},
		{30, "FPS: 30.00"},
		{59.944, "FPS: 59.94"},
	}
	for _, tt := range tests {
		if got := v.FPSLabel(tt.fps); got != tt.want {
			t.Errorf("FPSLabel(%v) = %q, want %q", tt.fps, got, tt.want)
		}
	}
}

func TestAboutLinks(t *testing.T) {
	if len(AboutLinks) != 3 {
		t.Fatalf("len(AboutLinks) = %d, want 3", len(AboutLinks))
	}
	for _, l := range AboutLinks {
		if l.Label == "" || !strings.HasPrefix(l.URL, "https://") {
			t.Errorf("bad link %+v", l)
		}
	}
}
