package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/bridge"
	"github.com/ytget/bili-audio/internal/config"
	"github.com/ytget/bili-audio/internal/download"
	"github.com/ytget/bili-audio/internal/library"
	"github.com/ytget/bili-audio/internal/model"
	"github.com/ytget/bili-audio/internal/platform"
)

// Deps are the services the window drives.
type Deps struct {
	Settings  *config.Settings
	Library   *library.Library
	Bridge    *bridge.Bridge
	Downloads download.Downloader
	Logger    *slog.Logger
}

// RootUI represents the main window
type RootUI struct {
	window       fyne.Window
	settings     *config.Settings
	localization *Localization
	library      *library.Library
	bridge       *bridge.Bridge
	downloadSvc  download.Downloader
	logger       *slog.Logger

	// creators panel
	creators    []model.Creator
	selectedMid string
	midEntry    *widget.Entry
	addBtn      *widget.Button
	creatorList *widget.List

	// videos panel
	videos      []bili.ListedVideo
	page        bili.Page
	pageLabel   *widget.Label
	prevBtn     *widget.Button
	nextBtn     *widget.Button
	downloadAll *widget.Button
	videoList   *widget.List

	// downloads panel
	tasksMutex sync.Mutex
	taskIDs    []string
	tasks      map[string]*model.DownloadTask
	taskList   *widget.List

	tabs *container.AppTabs

	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite
	notificationSeq       int
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, deps Deps) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(deps.Settings.GetLanguage())

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ui := &RootUI{
		window:       window,
		settings:     deps.Settings,
		localization: localization,
		library:      deps.Library,
		bridge:       deps.Bridge,
		downloadSvc:  deps.Downloads,
		logger:       logger,
		tasks:        make(map[string]*model.DownloadTask),
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	ui.downloadSvc.SetUpdateCallback(ui.onTaskUpdate)

	ui.setupUI()
	ui.reloadCreators()
	return ui
}

func (ui *RootUI) t(key string) string {
	return ui.localization.GetText(key)
}

func (ui *RootUI) setupUI() {
	ui.createMenu()

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Truncation = fyne.TextTruncateEllipsis
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewBorder(nil, nil, ui.notificationSpinner, nil, ui.notificationLabel)
	ui.notificationContainer.Hide()

	top := container.NewVBox(
		container.NewBorder(nil, nil, nil, settingsBtn, widget.NewLabelWithStyle(ui.t(KeyAppTitle), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})),
		ui.notificationContainer,
	)

	ui.tabs = container.NewAppTabs(
		container.NewTabItem(ui.t(KeyVideos), ui.createVideosPanel()),
		container.NewTabItem(ui.t(KeyDownloads), ui.createDownloadsPanel()),
	)

	split := container.NewHSplit(ui.createCreatorsPanel(), ui.tabs)
	split.Offset = 0.25

	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, split))
	ui.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
}

func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.t(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.t(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		code := code
		item := fyne.NewMenuItem(name, func() { ui.onLanguageChange(code) })
		item.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, item)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.t(KeyFile), settingsItem),
		languageMenu,
	))
}

func (ui *RootUI) onLanguageChange(code string) {
	ui.localization.SetLanguage(code)
	ui.settings.SetLanguage(code)
	ui.window.SetTitle(ui.t(KeyAppTitle))
	ui.setupUI()
	ui.refreshCreatorList()
	ui.refreshVideoList()
}

func (ui *RootUI) onShowSettings() {
	before := ui.settings.GetLanguage()
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		ui.downloadSvc.SetMaxParallelDownloads(ui.settings.GetMaxParallelDownloads())
		if lang := ui.settings.GetLanguage(); lang != before {
			ui.onLanguageChange(lang)
		}
		ui.showNotification(ui.t(KeySettingsSaved), false)
	})
}

// --- creators ---

func (ui *RootUI) createCreatorsPanel() fyne.CanvasObject {
	ui.midEntry = widget.NewEntry()
	ui.midEntry.SetPlaceHolder(ui.t(KeyEnterMid))
	ui.midEntry.Validator = validateMid
	ui.midEntry.OnSubmitted = func(string) { ui.onAddCreator() }
	ui.addBtn = widget.NewButton(ui.t(KeyAddCreator), ui.onAddCreator)

	ui.creatorList = widget.NewList(
		func() int { return len(ui.creators) },
		func() fyne.CanvasObject {
			name := widget.NewLabel("")
			name.Truncation = fyne.TextTruncateEllipsis
			syncBtn := widget.NewButton(IconSync, nil)
			syncBtn.Importance = widget.LowImportance
			removeBtn := widget.NewButton(IconError, nil)
			removeBtn.Importance = widget.LowImportance
			return container.NewBorder(nil, nil, nil, container.NewHBox(syncBtn, removeBtn), name)
		},
		ui.updateCreatorItem,
	)
	ui.creatorList.OnSelected = func(id widget.ListItemID) {
		if id < 0 || id >= len(ui.creators) {
			return
		}
		ui.selectCreator(ui.creators[id].Mid)
	}

	header := widget.NewLabelWithStyle(ui.t(KeyCreators), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	addRow := container.NewBorder(nil, nil, nil, ui.addBtn, ui.midEntry)
	return container.NewBorder(container.NewVBox(header, addRow), nil, nil, nil, ui.creatorList)
}

func (ui *RootUI) updateCreatorItem(id widget.ListItemID, obj fyne.CanvasObject) {
	if id < 0 || id >= len(ui.creators) {
		return
	}
	c := ui.creators[id]

	row := obj.(*fyne.Container)
	name := row.Objects[0].(*widget.Label)
	buttons := row.Objects[1].(*fyne.Container)
	syncBtn := buttons.Objects[0].(*widget.Button)
	removeBtn := buttons.Objects[1].(*widget.Button)

	text := c.DisplayName()
	if last := c.LastSync(); !last.IsZero() {
		text += MiddleDotSeparator + humanize.Time(last)
	}
	name.SetText(text)
	syncBtn.OnTapped = func() { ui.onSyncCreator(c) }
	removeBtn.OnTapped = func() { ui.onRemoveCreator(c) }
}

func validateMid(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err != nil || n <= 0 {
		return errors.New("mid must be a positive number")
	}
	return nil
}

func (ui *RootUI) onAddCreator() {
	mid := strings.TrimSpace(ui.midEntry.Text)
	if mid == "" || validateMid(mid) != nil {
		ui.showNotification(ui.t(KeyInvalidMid), false)
		return
	}

	ui.addBtn.Disable()
	ui.showNotification(ui.t(KeyLoading), true)
	cookie := ui.settings.GetCookie()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		c, err := ui.library.AddCreator(ctx, mid, cookie)
		fyne.Do(func() {
			ui.addBtn.Enable()
			if err != nil {
				ui.showError(err)
				return
			}
			ui.midEntry.SetText("")
			ui.hideNotification()
			ui.reloadCreators()
			ui.selectCreator(c.Mid)
		})
	}()
}

func (ui *RootUI) onRemoveCreator(c model.Creator) {
	dialog.ShowConfirm(ui.t(KeyRemove), c.DisplayName()+"?", func(ok bool) {
		if !ok {
			return
		}
		if err := ui.library.RemoveCreator(c.Mid); err != nil {
			ui.showError(err)
			return
		}
		if ui.selectedMid == c.Mid {
			ui.selectedMid = ""
			ui.applyListing(nil)
		}
		ui.reloadCreators()
	}, ui.window)
}

func (ui *RootUI) reloadCreators() {
	creators, err := ui.library.Creators()
	if err != nil {
		ui.logger.Error("failed to load creators", slog.Any("err", err))
		ui.showError(err)
		return
	}
	ui.creators = creators
	ui.refreshCreatorList()
}

func (ui *RootUI) refreshCreatorList() {
	if ui.creatorList != nil {
		ui.creatorList.Refresh()
	}
}

func (ui *RootUI) creatorByMid(mid string) (model.Creator, bool) {
	for _, c := range ui.creators {
		if c.Mid == mid {
			return c, true
		}
	}
	return model.Creator{}, false
}

// --- videos ---

func (ui *RootUI) createVideosPanel() fyne.CanvasObject {
	ui.pageLabel = widget.NewLabel(ui.t(KeySelectCreator))
	ui.prevBtn = widget.NewButton(ui.t(KeyPrevPage), func() { ui.loadPage(ui.page.Pn - 1) })
	ui.nextBtn = widget.NewButton(ui.t(KeyNextPage), func() { ui.loadPage(ui.page.Pn + 1) })
	ui.downloadAll = widget.NewButton(ui.t(KeyDownloadAll), func() {
		ui.chooseFolderAndQueue(append([]bili.ListedVideo(nil), ui.videos...), nil)
	})
	ui.downloadAll.Importance = widget.HighImportance
	ui.updatePager()

	ui.videoList = widget.NewList(
		func() int { return len(ui.videos) },
		func() fyne.CanvasObject {
			title := widget.NewLabel("")
			title.TextStyle = fyne.TextStyle{Bold: true}
			title.Truncation = fyne.TextTruncateEllipsis
			meta := widget.NewLabel("")
			meta.Truncation = fyne.TextTruncateEllipsis
			btn := widget.NewButton(ui.t(KeyDownload), nil)
			return container.NewBorder(nil, nil, nil, btn, container.NewVBox(title, meta))
		},
		ui.updateVideoItem,
	)

	pager := container.NewHBox(ui.prevBtn, ui.pageLabel, ui.nextBtn, layout.NewSpacer(), ui.downloadAll)
	return container.NewBorder(pager, nil, nil, nil, ui.videoList)
}

func (ui *RootUI) updateVideoItem(id widget.ListItemID, obj fyne.CanvasObject) {
	if id < 0 || id >= len(ui.videos) {
		return
	}
	v := ui.videos[id]

	row := obj.(*fyne.Container)
	text := row.Objects[0].(*fyne.Container)
	btn := row.Objects[1].(*widget.Button)

	text.Objects[0].(*widget.Label).SetText(cleanText(v.Title))
	text.Objects[1].(*widget.Label).SetText(videoMeta(v))
	btn.SetText(ui.t(KeyDownload))
	btn.OnTapped = func() { ui.chooseFolderAndQueue([]bili.ListedVideo{v}, nil) }
}

func videoMeta(v bili.ListedVideo) string {
	parts := []string{v.Bvid}
	if v.Length != "" {
		parts = append(parts, v.Length)
	}
	if v.Created > 0 {
		parts = append(parts, humanize.Time(time.Unix(v.Created, 0)))
	}
	if v.Play > 0 {
		parts = append(parts, humanize.Comma(v.Play)+" "+IconPlay)
	}
	return strings.Join(parts, MiddleDotSeparator)
}

func (ui *RootUI) selectCreator(mid string) {
	ui.selectedMid = mid
	ui.tabs.SelectIndex(0)
	ui.loadPage(1)
}

func (ui *RootUI) loadPage(pn int) {
	if ui.selectedMid == "" || pn < 1 {
		return
	}
	mid, cookie := ui.selectedMid, ui.settings.GetCookie()
	ui.prevBtn.Disable()
	ui.nextBtn.Disable()
	ui.showNotification(ui.t(KeyLoading), true)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		listing, err := ui.library.Page(ctx, mid, cookie, pn)
		fyne.Do(func() {
			if mid != ui.selectedMid {
				return
			}
			if err != nil {
				ui.showError(err)
				ui.updatePager()
				return
			}
			ui.hideNotification()
			ui.applyListing(listing)
		})
	}()
}

// applyListing shows a listing page; nil clears the panel.
func (ui *RootUI) applyListing(listing *bili.Listing) {
	if listing == nil {
		ui.videos = nil
		ui.page = bili.Page{}
	} else {
		ui.videos = listing.Videos
		ui.page = listing.Page
	}
	ui.updatePager()
	ui.refreshVideoList()
}

func (ui *RootUI) updatePager() {
	if ui.pageLabel == nil {
		return
	}
	if ui.page.Pn == 0 {
		ui.pageLabel.SetText(ui.t(KeySelectCreator))
		ui.prevBtn.Disable()
		ui.nextBtn.Disable()
		ui.downloadAll.Disable()
		return
	}

	pages := 1
	if ui.page.Ps > 0 && ui.page.Count > 0 {
		pages = (ui.page.Count + ui.page.Ps - 1) / ui.page.Ps
	}
	ui.pageLabel.SetText(fmt.Sprintf(ui.t(KeyPageFormat), ui.page.Pn, pages))
	setEnabled(ui.prevBtn, ui.page.Pn > 1)
	setEnabled(ui.nextBtn, ui.page.HasMore())
	setEnabled(ui.downloadAll, len(ui.videos) > 0)
}

func (ui *RootUI) refreshVideoList() {
	if ui.videoList != nil {
		ui.videoList.Refresh()
	}
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

// --- sync ---

func (ui *RootUI) onSyncCreator(c model.Creator) {
	ui.showNotification(ui.t(KeySyncing), true)
	cookie := ui.settings.GetCookie()
	started := time.Now()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*RequestTimeout)
		defer cancel()

		videos, err := ui.library.NewVideos(ctx, c.Mid, cookie)
		fyne.Do(func() {
			if err != nil {
				ui.showError(err)
				return
			}
			if len(videos) == 0 {
				ui.markSynced(c.Mid, started)
				ui.showNotification(ui.t(KeyNoNewVideos), false)
				return
			}
			ui.hideNotification()
			msg := fmt.Sprintf(ui.t(KeyNewVideosFound), len(videos))
			dialog.ShowConfirm(c.DisplayName(), msg+"\n"+ui.t(KeyDownloadAll)+"?", func(ok bool) {
				if !ok {
					return
				}
				ui.chooseFolderAndQueue(videos, func() { ui.markSynced(c.Mid, started) })
			}, ui.window)
		})
	}()
}

func (ui *RootUI) markSynced(mid string, at time.Time) {
	if err := ui.library.MarkSynced(mid, at); err != nil {
		ui.logger.Error("failed to mark creator synced", slog.String("mid", mid), slog.Any("err", err))
		return
	}
	ui.reloadCreators()
}

// --- downloads ---

// chooseFolderAndQueue asks for a target folder, starting at the last one
// used, then queues every video. onQueued runs once the tasks are added.
func (ui *RootUI) chooseFolderAndQueue(videos []bili.ListedVideo, onQueued func()) {
	if len(videos) == 0 {
		return
	}

	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			ui.showError(err)
			return
		}
		if uri == nil {
			return
		}
		dir := uri.Path()
		ui.queueDownloads(dir, videos)
		if onQueued != nil {
			onQueued()
		}
	}, ui.window)

	start := ui.settings.GetDownloadDirectory()
	if ui.bridge.CreateDir(start) {
		if loc, err := storage.ListerForURI(storage.NewFileURI(start)); err == nil {
			fd.SetLocation(loc)
		}
	}
	ui.showNotification(ui.t(KeyChooseFolder), false)
	fd.Show()
}

// queueDownloads adds a task per video; videos already on disk are skipped.
func (ui *RootUI) queueDownloads(dir string, videos []bili.ListedVideo) (queued, skipped int) {
	if !ui.bridge.CreateDir(dir) {
		ui.showNotification(ui.t(KeyErrorCreateDir)+": "+dir, false)
		return 0, 0
	}
	ui.settings.SetDownloadDirectory(dir)

	creatorName := ""
	if c, ok := ui.creatorByMid(ui.selectedMid); ok {
		creatorName = c.Name
	}

	for _, v := range videos {
		author := v.Author
		if author == "" {
			author = creatorName
		}
		if ui.bridge.FileExists(dir, v.Title) {
			skipped++
		}
		task, err := ui.downloadSvc.AddTask(model.VideoRef{Bvid: v.Bvid, Title: v.Title, Creator: author, Dir: dir})
		if err != nil {
			if errors.Is(err, download.ErrDuplicate) {
				continue
			}
			ui.logger.Error("failed to queue download", slog.String("bvid", v.Bvid), slog.Any("err", err))
			continue
		}
		ui.applyTaskUpdate(task)
		queued++
	}

	if queued == skipped && skipped > 0 {
		ui.showNotification(ui.t(KeyAlreadyExists), false)
	} else if queued > 0 {
		ui.showNotification(ui.t(KeyDownloadStarted), false)
		ui.tabs.SelectIndex(1)
	} else {
		ui.showNotification(ui.t(KeyAlreadyInQueue), false)
	}
	return queued, skipped
}

func (ui *RootUI) createDownloadsPanel() fyne.CanvasObject {
	ui.taskList = widget.NewList(
		func() int {
			ui.tasksMutex.Lock()
			defer ui.tasksMutex.Unlock()
			return len(ui.taskIDs)
		},
		func() fyne.CanvasObject { return NewTaskRow(nil, ui.localization) },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			ui.tasksMutex.Lock()
			if id < 0 || id >= len(ui.taskIDs) {
				ui.tasksMutex.Unlock()
				return
			}
			task := ui.tasks[ui.taskIDs[id]]
			ui.tasksMutex.Unlock()

			row := obj.(*TaskRow)
			row.SetCallbacks(ui.onStopTask, ui.onRevealFile, ui.onOpenFile, ui.onCopyPath)
			row.UpdateTask(task)
		},
	)
	return ui.taskList
}

// onTaskUpdate handles task updates from the download service
func (ui *RootUI) onTaskUpdate(task *model.DownloadTask) {
	fyne.Do(func() { ui.applyTaskUpdate(task) })
}

func (ui *RootUI) applyTaskUpdate(task *model.DownloadTask) {
	ui.tasksMutex.Lock()
	prev, known := ui.tasks[task.ID]
	if !known {
		ui.taskIDs = append(ui.taskIDs, task.ID)
	}
	ui.tasks[task.ID] = task
	ui.tasksMutex.Unlock()

	justCompleted := task.Status == model.TaskStatusCompleted &&
		(!known || prev.Status != model.TaskStatusCompleted)
	if justCompleted {
		ui.sendCompletionNotification(task)
		if ui.settings.GetAutoRevealOnComplete() && task.OutputPath != "" {
			ui.onRevealFile(task.OutputPath)
		}
	}

	if ui.taskList != nil {
		ui.taskList.Refresh()
	}
}

func (ui *RootUI) sendCompletionNotification(task *model.DownloadTask) {
	fyne.CurrentApp().SendNotification(&fyne.Notification{
		Title:   ui.t(KeyDownloadCompleted),
		Content: task.GetDisplayTitle(),
	})
}

func (ui *RootUI) onStopTask(taskID string) {
	if err := ui.downloadSvc.StopTask(taskID); err != nil {
		ui.logger.Warn("stop task failed", slog.String("task", taskID), slog.Any("err", err))
		ui.showNotification(ui.t(KeyErrorStoppingTask)+": "+err.Error(), false)
	}
}

func (ui *RootUI) onRevealFile(filePath string) {
	if err := platform.OpenFileInManager(filePath); err != nil {
		ui.logger.Error("reveal file failed", slog.String("path", filePath), slog.Any("err", err))
		ui.showNotification(ui.t(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

func (ui *RootUI) onOpenFile(filePath string) {
	if err := platform.OpenFileWithDefaultApp(filePath); err != nil {
		ui.logger.Error("open file failed", slog.String("path", filePath), slog.Any("err", err))
		ui.showNotification(ui.t(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

func (ui *RootUI) onCopyPath(filePath string) {
	fyne.CurrentApp().Clipboard().SetContent(filePath)
	ui.showNotification(ui.t(KeyPathCopied), false)
}

// --- notifications ---

// showNotification displays a message under the title bar. Messages without
// a spinner hide themselves after a few seconds.
func (ui *RootUI) showNotification(message string, spinning bool) {
	if ui.notificationContainer == nil {
		return
	}
	ui.notificationSeq++
	seq := ui.notificationSeq

	ui.notificationLabel.SetText(message)
	if spinning {
		ui.notificationSpinner.Show()
	} else {
		ui.notificationSpinner.Hide()
		time.AfterFunc(NotificationHide, func() {
			fyne.Do(func() {
				if ui.notificationSeq == seq {
					ui.hideNotification()
				}
			})
		})
	}
	ui.notificationContainer.Show()
}

func (ui *RootUI) hideNotification() {
	if ui.notificationContainer == nil {
		return
	}
	ui.notificationSpinner.Hide()
	ui.notificationContainer.Hide()
}

func (ui *RootUI) showError(err error) {
	ui.showNotification(ui.errorMessage(err), false)
}

// errorMessage turns a failure into a user-facing line.
func (ui *RootUI) errorMessage(err error) string {
	var be *bili.Error
	if errors.As(err, &be) {
		if be.Kind == bili.KindAPI && isAuthCode(be.Code) {
			return ui.t(KeyLoginRequired)
		}
		if be.Kind == bili.KindStatus && be.StatusCode == 412 {
			return ui.t(KeyLoginRequired)
		}
	}
	return ui.t(KeyRequestFailed) + ": " + err.Error()
}

// isAuthCode reports platform codes caused by a missing or stale cookie.
func isAuthCode(code int) bool {
	switch code {
	case -101, -352, -412, -403:
		return true
	}
	return false
}
