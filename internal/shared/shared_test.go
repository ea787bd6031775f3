package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			title:  "Song Title",
			artist: "Artist Name",
			want:   "song title|artist name",
		},
		{
			name:   "extra whitespace",
			title:  "  Song   Title  ",
			artist: "  Artist   Name  ",
			want:   "song title|artist name",
		},
		{
			name:   "mixed case",
			title:  "SoNg TiTlE",
			artist: "ArTiSt NaMe",
			want:   "song title|artist name",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTrackKey(tt.title, tt.artist)
			if got != tt.want {
				t.Errorf("normalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateState(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("failed to generate state: %v", err)
	}
	if len(first) != 32 {
		t.Errorf("expected 32 hex characters, got %d", len(first))
	}

	second, err := GenerateState()
	if err != nil {
		t.Fatalf("failed to generate state: %v", err)
	}
	if first == second {
		t.Error("expected successive states to differ")
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "flowdj.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}

	logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("expected log output in file, got %q", data)
	}
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]string{"title": "Rainy Focus"}

	compact, err := MarshalJSON(payload, false)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if strings.Contains(string(compact), "\n") {
		t.Error("compact output should not contain newlines")
	}

	pretty, err := MarshalJSON(payload, true)
	if err != nil {
		t.Fatalf("failed to marshal pretty: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  ") {
		t.Error("pretty output should be indented")
	}
}
