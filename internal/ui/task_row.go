package ui

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/ytget/bili-audio/internal/model"
)

// TaskRow represents a compact download row widget
type TaskRow struct {
	widget.BaseWidget

	task         *model.DownloadTask
	localization *Localization

	titleLabel    *widget.Label
	subtitleLabel *widget.Label
	statusLabel   *widget.Label
	progressLabel *widget.Label
	speedEtaLabel *widget.Label
	progressBar   *widget.ProgressBar

	stopBtn   *widget.Button
	revealBtn *widget.Button
	playBtn   *widget.Button
	copyBtn   *widget.Button

	onStop     func(taskID string)
	onReveal   func(filePath string)
	onOpen     func(filePath string)
	onCopyPath func(filePath string)
}

// NewTaskRow creates a new task row widget
func NewTaskRow(task *model.DownloadTask, localization *Localization) *TaskRow {
	if task == nil {
		task = &model.DownloadTask{Status: model.TaskStatusPending}
	}

	tr := &TaskRow{
		task:         task,
		localization: localization,
	}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	tr.updateFromTask()
	return tr
}

// SetCallbacks sets the action callbacks
func (tr *TaskRow) SetCallbacks(
	onStop func(taskID string),
	onReveal func(filePath string),
	onOpen func(filePath string),
	onCopyPath func(filePath string),
) {
	tr.onStop = onStop
	tr.onReveal = onReveal
	tr.onOpen = onOpen
	tr.onCopyPath = onCopyPath
}

// UpdateTask updates the row with new task data
func (tr *TaskRow) UpdateTask(task *model.DownloadTask) {
	if task == nil {
		return
	}
	tr.task = task
	tr.updateFromTask()
	tr.Refresh()
}

func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.subtitleLabel = widget.NewLabel("")
	tr.subtitleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Alignment = fyne.TextAlignTrailing
	tr.progressLabel = widget.NewLabel("")
	tr.progressLabel.Alignment = fyne.TextAlignTrailing
	tr.speedEtaLabel = widget.NewLabel("")
	tr.speedEtaLabel.TextStyle = fyne.TextStyle{Monospace: true}

	tr.progressBar = widget.NewProgressBar()
	tr.progressBar.TextFormatter = func() string { return "" }

	tr.stopBtn = widget.NewButton(tr.localization.GetText(KeyStop), func() {
		if tr.onStop != nil {
			tr.onStop(tr.task.ID)
		}
	})
	tr.revealBtn = widget.NewButton(tr.localization.GetText(KeyReveal), func() {
		if tr.onReveal != nil && hasOutput(tr.task) {
			tr.onReveal(tr.task.OutputPath)
		}
	})
	tr.playBtn = widget.NewButton(tr.localization.GetText(KeyPlay), func() {
		if tr.onOpen != nil && hasOutput(tr.task) {
			tr.onOpen(tr.task.OutputPath)
		}
	})
	tr.copyBtn = widget.NewButton(tr.localization.GetText(KeyPath), func() {
		if tr.onCopyPath != nil && hasOutput(tr.task) {
			tr.onCopyPath(tr.task.OutputPath)
		}
	})
}

// hasOutput reports whether the task points at a file on disk.
func hasOutput(task *model.DownloadTask) bool {
	return task.OutputPath != "" && filepath.IsAbs(task.OutputPath)
}

func (tr *TaskRow) updateFromTask() {
	t := tr.task

	tr.titleLabel.SetText(cleanText(t.GetDisplayTitle()))
	tr.subtitleLabel.SetText(subtitle(t))

	tr.statusLabel.Importance, tr.statusLabel.Text = statusPresentation(t.Status)
	tr.statusLabel.Refresh()

	percent := displayPercent(t)
	tr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, percent))
	tr.progressBar.SetValue(float64(percent) / 100)

	if t.Status == model.TaskStatusDownloading && t.Speed != "" {
		tr.speedEtaLabel.SetText(t.Speed + MiddleDotSeparator + t.GetETAString())
	} else {
		tr.speedEtaLabel.SetText("")
	}

	if t.Status.IsFinished() {
		tr.stopBtn.Disable()
	} else {
		tr.stopBtn.Enable()
	}

	for _, b := range []*widget.Button{tr.revealBtn, tr.playBtn, tr.copyBtn} {
		if hasOutput(t) && (t.Status == model.TaskStatusCompleted || t.Status == model.TaskStatusSkipped) {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

func subtitle(t *model.DownloadTask) string {
	parts := []string{t.Bvid}
	if t.Creator != "" {
		parts = append(parts, t.Creator)
	}
	if t.FileSize > 0 {
		parts = append(parts, humanize.Bytes(uint64(t.FileSize)))
	}
	if t.Status == model.TaskStatusError && t.LastError != "" {
		parts = append(parts, t.LastError)
	}
	return cleanText(strings.Join(parts, MiddleDotSeparator))
}

func statusPresentation(status model.TaskStatus) (widget.Importance, string) {
	switch status {
	case model.TaskStatusError:
		return widget.DangerImportance, IconError + " " + status.String()
	case model.TaskStatusCompleted:
		return widget.SuccessImportance, status.String()
	case model.TaskStatusSkipped:
		return widget.SuccessImportance, IconSkip + " " + status.String()
	case model.TaskStatusDownloading:
		return widget.HighImportance, IconPlay + " " + status.String()
	case model.TaskStatusConverting:
		return widget.HighImportance, IconConvert + " " + status.String()
	case model.TaskStatusPending:
		return widget.MediumImportance, IconPending + " " + status.String()
	case model.TaskStatusStopped:
		return widget.MediumImportance, IconStopped + " " + status.String()
	default:
		return widget.MediumImportance, status.String()
	}
}

// displayPercent clamps the task percent to [0,100], deriving it from
// Progress when Percent was not set.
func displayPercent(t *model.DownloadTask) int {
	if t.Status == model.TaskStatusCompleted || t.Status == model.TaskStatusSkipped {
		return 100
	}
	p := t.Percent
	if p <= 0 && t.Progress > 0 {
		p = int(t.Progress*100 + 0.5)
	}
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func cleanText(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s))
}

// CreateRenderer creates the widget renderer
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.Transparent)
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	info := container.NewVBox(
		fixedWidth(StatusLabelWidth, tr.statusLabel),
		container.NewHBox(
			fixedWidth(SpeedLabelWidth, tr.speedEtaLabel),
			fixedWidth(PercentLabelWidth, tr.progressLabel),
		),
	)
	actions := container.NewHBox(tr.stopBtn, tr.revealBtn, tr.playBtn, tr.copyBtn)
	right := container.NewBorder(nil, nil, nil, actions, info)
	left := container.NewVBox(tr.titleLabel, tr.subtitleLabel)

	content := container.NewVBox(
		container.NewBorder(nil, nil, nil, right, left),
		tr.progressBar,
		widget.NewSeparator(),
	)
	return widget.NewSimpleRenderer(content)
}

// MinSize keeps rows readable in narrow windows
func (tr *TaskRow) MinSize() fyne.Size {
	min := tr.BaseWidget.MinSize()
	return fyne.NewSize(max(min.Width, RowMinWidth), max(min.Height, RowMinHeight))
}
