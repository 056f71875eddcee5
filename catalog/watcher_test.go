package catalog

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSeedWatcherMatches(t *testing.T) {
	root := t.TempDir()
	w, err := NewSeedWatcher(root, "seeds/**/*.json", 0, nil)
	if err != nil {
		t.Fatalf("NewSeedWatcher: %v", err)
	}
	defer w.Stop()

	if w.debounce != defaultDebounce {
		t.Errorf("zero debounce should default, got %v", w.debounce)
	}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "seeds", "cars_data.json"), true},
		{filepath.Join(root, "seeds", "tata", "cars_data.json"), true},
		{filepath.Join(root, "seeds", "cars_data.yaml"), false},
		{filepath.Join(root, "cars_data.json"), false},
		{"/elsewhere/seeds/cars_data.json", false},
	}
	for _, tt := range tests {
		if got := w.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSeedWatcherExplicitDebounce(t *testing.T) {
	w, err := NewSeedWatcher(t.TempDir(), "*.json", 2*time.Second, nil)
	if err != nil {
		t.Fatalf("NewSeedWatcher: %v", err)
	}
	defer w.Stop()
	if w.debounce != 2*time.Second {
		t.Errorf("debounce = %v, want 2s", w.debounce)
	}
}
