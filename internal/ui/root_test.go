package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/bridge"
	"github.com/ytget/bili-audio/internal/config"
	"github.com/ytget/bili-audio/internal/download"
	"github.com/ytget/bili-audio/internal/library"
	"github.com/ytget/bili-audio/internal/model"
	"github.com/ytget/bili-audio/internal/platform"
)

type stubAPI struct {
	listing *bili.Listing
	err     error
}

func (s *stubAPI) ResolveVideo(ctx context.Context, videoID string) (*bili.VideoInfo, error) {
	return nil, errors.New("not used")
}

func (s *stubAPI) ResolveStreams(ctx context.Context, videoID, contentID string) (*bili.StreamSet, error) {
	return nil, errors.New("not used")
}

func (s *stubAPI) FetchListing(ctx context.Context, params bili.ListingParams) (*bili.Listing, error) {
	return s.listing, s.err
}

type stubDownloader struct {
	added []model.VideoRef
}

func (d *stubDownloader) SetUpdateCallback(func(*model.DownloadTask)) {}

func (d *stubDownloader) AddTask(ref model.VideoRef) (*model.DownloadTask, error) {
	for _, a := range d.added {
		if a.Bvid == ref.Bvid {
			return nil, download.ErrDuplicate
		}
	}
	d.added = append(d.added, ref)
	return &model.DownloadTask{ID: "task-" + ref.Bvid, Bvid: ref.Bvid, Title: ref.Title, Dir: ref.Dir, Status: model.TaskStatusPending}, nil
}

func (d *stubDownloader) GetTask(id string) (*model.DownloadTask, bool) { return nil, false }
func (d *stubDownloader) GetAllTasks() []*model.DownloadTask           { return nil }
func (d *stubDownloader) StopTask(id string) error                     { return nil }
func (d *stubDownloader) RemoveTask(id string) error                   { return nil }
func (d *stubDownloader) SetMaxParallelDownloads(max int)              {}

func newTestRoot(t *testing.T) (*RootUI, *stubDownloader) {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)

	settings := config.NewSettings(app)
	api := &stubAPI{}
	downloads := &stubDownloader{}
	ui := NewRootUI(app.NewWindow("test"), Deps{
		Settings:  settings,
		Library:   library.New(api, settings.Creators(), nil),
		Bridge:    bridge.New(api, nil),
		Downloads: downloads,
	})
	return ui, downloads
}

func TestValidateMid(t *testing.T) {
	for _, ok := range []string{"", "1", " 42 "} {
		if err := validateMid(ok); err != nil {
			t.Errorf("validateMid(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"abc", "-1", "0", "12x"} {
		if err := validateMid(bad); err == nil {
			t.Errorf("validateMid(%q) should fail", bad)
		}
	}
}

func TestRootUI_ApplyListingUpdatesPager(t *testing.T) {
	ui, _ := newTestRoot(t)

	ui.applyListing(&bili.Listing{
		Videos: []bili.ListedVideo{{Bvid: "BV1", Title: "one"}},
		Page:   bili.Page{Pn: 1, Ps: 25, Count: 60},
	})
	if ui.pageLabel.Text != "Page 1 of 3" {
		t.Errorf("Unexpected page label %q", ui.pageLabel.Text)
	}
	if !ui.prevBtn.Disabled() || ui.nextBtn.Disabled() || ui.downloadAll.Disabled() {
		t.Error("Unexpected pager button state on first page")
	}

	ui.applyListing(nil)
	if len(ui.videos) != 0 || !ui.downloadAll.Disabled() {
		t.Error("Clearing the listing should disable downloads")
	}
}

func TestRootUI_QueueDownloads(t *testing.T) {
	ui, downloads := newTestRoot(t)
	dir := filepath.Join(t.TempDir(), "music")

	queued, skipped := ui.queueDownloads(dir, []bili.ListedVideo{
		{Bvid: "BV1", Title: "one", Author: "up"},
		{Bvid: "BV2", Title: "two", Author: "up"},
	})
	if queued != 2 || skipped != 0 {
		t.Errorf("Expected 2 queued, got %d queued %d skipped", queued, skipped)
	}
	if len(downloads.added) != 2 || downloads.added[0].Dir != dir || downloads.added[0].Creator != "up" {
		t.Errorf("Unexpected refs %+v", downloads.added)
	}
	if ui.settings.GetDownloadDirectory() != dir {
		t.Errorf("Expected chosen folder to become the default, got %s", ui.settings.GetDownloadDirectory())
	}
	if len(ui.taskIDs) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(ui.taskIDs))
	}

	// duplicates are ignored
	queued, _ = ui.queueDownloads(dir, []bili.ListedVideo{{Bvid: "BV1", Title: "one"}})
	if queued != 0 {
		t.Errorf("Expected duplicate to be ignored, got %d queued", queued)
	}

	if err := os.WriteFile(platform.AudioPath(dir, "three"), []byte("ID3"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, skipped = ui.queueDownloads(dir, []bili.ListedVideo{{Bvid: "BV3", Title: "three"}})
	if skipped != 1 {
		t.Errorf("Expected existing file to count as skipped, got %d", skipped)
	}
}

func TestRootUI_ApplyTaskUpdate(t *testing.T) {
	ui, _ := newTestRoot(t)

	ui.applyTaskUpdate(&model.DownloadTask{ID: "a", Status: model.TaskStatusPending})
	ui.applyTaskUpdate(&model.DownloadTask{ID: "b", Status: model.TaskStatusPending})
	ui.applyTaskUpdate(&model.DownloadTask{ID: "a", Status: model.TaskStatusDownloading, Percent: 10})

	if len(ui.taskIDs) != 2 || ui.taskIDs[0] != "a" || ui.taskIDs[1] != "b" {
		t.Errorf("Unexpected row order %v", ui.taskIDs)
	}
	if ui.tasks["a"].Percent != 10 {
		t.Errorf("Expected task a to be updated, got %+v", ui.tasks["a"])
	}
}

func TestRootUI_ErrorMessage(t *testing.T) {
	ui, _ := newTestRoot(t)

	auth := &bili.Error{Kind: bili.KindAPI, Code: -352}
	if got := ui.errorMessage(auth); got != ui.t(KeyLoginRequired) {
		t.Errorf("Expected login hint, got %q", got)
	}
	status := &bili.Error{Kind: bili.KindStatus, StatusCode: 412}
	if got := ui.errorMessage(status); got != ui.t(KeyLoginRequired) {
		t.Errorf("Expected login hint for 412, got %q", got)
	}
	other := errors.New("boom")
	if got := ui.errorMessage(other); got != "Request failed: boom" {
		t.Errorf("Unexpected message %q", got)
	}
}

func TestRootUI_ReloadCreators(t *testing.T) {
	ui, _ := newTestRoot(t)

	if _, err := ui.settings.Creators().Add(model.Creator{Mid: "7", Name: "up"}); err != nil {
		t.Fatal(err)
	}
	ui.reloadCreators()
	if len(ui.creators) != 1 || ui.creators[0].Name != "up" {
		t.Errorf("Unexpected creators %+v", ui.creators)
	}
	if c, ok := ui.creatorByMid("7"); !ok || c.Name != "up" {
		t.Errorf("creatorByMid failed: %+v %v", c, ok)
	}
}
