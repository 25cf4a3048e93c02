package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame_002.png", "frame_001.png", "frame_003.TIF", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := ExpandPaths([]string{"single.png", dir, "https://example.com/a.png"})
	if err != nil {
		t.Fatalf("ExpandPaths failed: %v", err)
	}
	want := []string{
		"single.png",
		filepath.Join(dir, "frame_001.png"),
		filepath.Join(dir, "frame_002.png"),
		filepath.Join(dir, "frame_003.TIF"),
		"https://example.com/a.png",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExpandPaths_EmptyDirectory(t *testing.T) {
	got, err := ExpandPaths([]string{t.TempDir()})
	if err != nil {
		t.Fatalf("ExpandPaths failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want nothing", got)
	}
}
