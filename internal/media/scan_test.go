package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"b recording.mp3",
		"A lecture.M4A",
		"notes.txt",
		"clip.webm",
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "Archive"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Archive", "nested.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	want := []string{"A lecture.M4A", "b recording.mp3", "clip.webm"}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, item := range items {
		if item.Name != want[i] {
			t.Errorf("item[%d] = %q, want %q", i, item.Name, want[i])
		}
		if item.Status != StatusDiscovered {
			t.Errorf("item[%d] status = %q", i, item.Status)
		}
		if item.SourcePath != filepath.Join(dir, item.Name) {
			t.Errorf("item[%d] path = %q", i, item.SourcePath)
		}
	}
}

func TestScanSkipsDanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(dir, "gone.mp3"), filepath.Join(dir, "link.mp3")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	items, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("got %d items, want 0", len(items))
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error")
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.mp3", true},
		{"a.FLAC", true},
		{"a.oga", true},
		{"a.txt", false},
		{"a", false},
		{"a.mp3.txt", false},
	}
	for _, tt := range tests {
		if got := IsAudioFile(tt.name); got != tt.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
