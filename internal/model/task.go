package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// VideoRef identifies a video to download and where its MP3 should go.
type VideoRef struct {
	Bvid    string
	Title   string
	Creator string
	Dir     string
}

// DownloadTask represents a single audio download task
type DownloadTask struct {
	ID         string
	Bvid       string
	Creator    string
	Dir        string    // target directory for the MP3
	Status     TaskStatus
	Progress   float64   // 0.0 to 1.0
	Percent    int       // 0 to 100
	Speed      string    // human readable speed (e.g., "1.2 MB/s")
	ETASec     int       // ETA in seconds, -1 if unknown
	LastError  string    // last error message if any
	OutputPath string    // path to the finished MP3
	StartedAt  time.Time // when the task was queued
	FinishedAt time.Time // when the task finished
	Title      string    // video title
	FileSize   int64     // audio stream size in bytes
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (dt *DownloadTask) GetETAString() string {
	if dt.ETASec <= 0 {
		return "—"
	}

	hours := dt.ETASec / 3600
	minutes := (dt.ETASec % 3600) / 60
	seconds := dt.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns title, filename, or bvid in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.Title != "" {
		return dt.Title
	}

	if dt.OutputPath != "" {
		name := filepath.Base(dt.OutputPath)
		return strings.TrimSuffix(name, filepath.Ext(name))
	}

	return dt.Bvid
}
