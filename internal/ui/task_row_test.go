package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/bili-audio/internal/model"
)

func TestDisplayPercent(t *testing.T) {
	tests := []struct {
		task model.DownloadTask
		want int
	}{
		{model.DownloadTask{Status: model.TaskStatusCompleted}, 100},
		{model.DownloadTask{Status: model.TaskStatusSkipped}, 100},
		{model.DownloadTask{Status: model.TaskStatusDownloading, Percent: 42}, 42},
		{model.DownloadTask{Status: model.TaskStatusDownloading, Progress: 0.255}, 26},
		{model.DownloadTask{Status: model.TaskStatusDownloading, Percent: 140}, 100},
		{model.DownloadTask{Status: model.TaskStatusPending}, 0},
	}
	for _, tt := range tests {
		if got := displayPercent(&tt.task); got != tt.want {
			t.Errorf("displayPercent(%+v) = %d, want %d", tt.task, got, tt.want)
		}
	}
}

func TestStatusPresentation(t *testing.T) {
	imp, text := statusPresentation(model.TaskStatusError)
	if imp != widget.DangerImportance || text != IconError+" Error" {
		t.Errorf("Unexpected error presentation %v %q", imp, text)
	}
	imp, _ = statusPresentation(model.TaskStatusSkipped)
	if imp != widget.SuccessImportance {
		t.Errorf("Expected skipped to look successful, got %v", imp)
	}
}

func TestTaskRow_ButtonsFollowStatus(t *testing.T) {
	test.NewApp()

	row := NewTaskRow(&model.DownloadTask{ID: "t1", Bvid: "BV1", Status: model.TaskStatusDownloading, Speed: "1.2 MB/s", ETASec: 65}, NewLocalization())
	if row.stopBtn.Disabled() {
		t.Error("Stop should be enabled while downloading")
	}
	if !row.revealBtn.Disabled() {
		t.Error("Reveal should be disabled without output")
	}
	if row.speedEtaLabel.Text != "1.2 MB/s · 01:05" {
		t.Errorf("Unexpected speed label %q", row.speedEtaLabel.Text)
	}

	var stopped string
	row.SetCallbacks(func(id string) { stopped = id }, nil, nil, nil)
	test.Tap(row.stopBtn)
	if stopped != "t1" {
		t.Errorf("Expected stop callback for t1, got %q", stopped)
	}

	row.UpdateTask(&model.DownloadTask{ID: "t1", Bvid: "BV1", Title: "Song", Status: model.TaskStatusCompleted, OutputPath: "/music/Song.mp3"})
	if !row.stopBtn.Disabled() {
		t.Error("Stop should be disabled when finished")
	}
	if row.revealBtn.Disabled() || row.playBtn.Disabled() || row.copyBtn.Disabled() {
		t.Error("File actions should be enabled when completed")
	}
	if row.titleLabel.Text != "Song" {
		t.Errorf("Unexpected title %q", row.titleLabel.Text)
	}
}
