package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectory(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "up", "playlist")

	// Directory should not exist initially
	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectory(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if info, err := os.Stat(testDir); err != nil || !info.IsDir() {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectory(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestCreateDirectory_Empty(t *testing.T) {
	if err := CreateDirectory(""); err == nil {
		t.Error("Expected error for empty path, got nil")
	}
}

func TestCreateDirectory_FileInTheWay(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	if err := CreateDirectory(filepath.Join(blocker, "sub")); err == nil {
		t.Error("Expected error when a file blocks the path, got nil")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Plain Title", "Plain Title"},
		{"AC/DC: Back in Black?", "AC_DC_ Back in Black_"},
		{"  dots and spaces.. ", "dots and spaces"},
		{"tab\tand\nnewline", "tabandnewline"},
		{"【MV】晴天", "【MV】晴天"},
		{"", "untitled"},
		{"...", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.expected {
				t.Errorf("SanitizeFileName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFileName_Truncates(t *testing.T) {
	long := strings.Repeat("歌", MaxFileNameRunes+20)
	if got := []rune(SanitizeFileName(long)); len(got) != MaxFileNameRunes {
		t.Errorf("Expected %d runes, got %d", MaxFileNameRunes, len(got))
	}
}

func TestAudioFileExists(t *testing.T) {
	dir := t.TempDir()

	exists, err := AudioFileExists(dir, "song: live")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if exists {
		t.Error("Expected file to not exist yet")
	}

	if err := os.WriteFile(AudioPath(dir, "song: live"), []byte("ID3"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	exists, err = AudioFileExists(dir, "song: live")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !exists {
		t.Error("Expected file to exist")
	}

	if filepath.Base(AudioPath(dir, "song: live")) != "song_ live.mp3" {
		t.Errorf("Unexpected audio path: %s", AudioPath(dir, "song: live"))
	}
}

func TestAudioFileExists_DirectoryWithSameName(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "album.mp3"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	exists, err := AudioFileExists(dir, "album")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if exists {
		t.Error("A directory must not count as an existing audio file")
	}
}

func TestDesktopDir(t *testing.T) {
	dir, err := DesktopDir()
	if err != nil {
		t.Fatalf("Failed to get desktop directory: %v", err)
	}

	if dir == "" {
		t.Fatal("Desktop directory is empty")
	}
}

func TestOpenFileInManager_NonExistentFile(t *testing.T) {
	tempDir := t.TempDir()
	nonExistentFile := filepath.Join(tempDir, "nonexistent.mp3")

	err := OpenFileInManager(nonExistentFile)
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}

	if !strings.Contains(err.Error(), "file does not exist:") {
		t.Errorf("Error message should contain 'file does not exist:', got: %v", err)
	}
}

func TestOpenFileWithDefaultApp_EmptyPath(t *testing.T) {
	if err := OpenFileWithDefaultApp(""); err == nil {
		t.Error("Expected error for empty path, got nil")
	}
}
