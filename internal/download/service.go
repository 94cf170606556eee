package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/model"
	"github.com/ytget/bili-audio/internal/platform"
	"github.com/ytget/bili-audio/internal/transcode"
)

const (
	// StreamReferer is required by the CDN for audio stream requests.
	StreamReferer = "https://www.bilibili.com/"

	// PartialExtension marks an audio stream that is still being fetched.
	PartialExtension = ".m4s.part"

	TaskIDPrefix = "task-"

	progressInterval = 500 * time.Millisecond
)

// ErrDuplicate is returned when an unfinished task for the same video exists.
var ErrDuplicate = errors.New("task already exists")

// Service handles download operations
type Service struct {
	resolver    Resolver
	converter   transcode.Converter
	httpClient  *http.Client
	logger      *slog.Logger
	tasks       map[string]*model.DownloadTask
	cancels     map[string]context.CancelFunc
	queue       []string
	tasksMutex  sync.RWMutex
	maxParallel int
	activeCount int
	onUpdate    func(*model.DownloadTask) // callback for UI updates
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient sets the client used to fetch audio streams.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new download service
func NewService(resolver Resolver, converter transcode.Converter, maxParallel int, opts ...Option) *Service {
	if maxParallel < 1 {
		maxParallel = 1
	}
	s := &Service{
		resolver:    resolver,
		converter:   converter,
		httpClient:  http.DefaultClient,
		logger:      slog.Default(),
		tasks:       make(map[string]*model.DownloadTask),
		cancels:     make(map[string]context.CancelFunc),
		maxParallel: maxParallel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetUpdateCallback sets the callback function for task updates. The callback
// receives a copy of the task.
func (s *Service) SetUpdateCallback(callback func(*model.DownloadTask)) {
	s.tasksMutex.Lock()
	s.onUpdate = callback
	s.tasksMutex.Unlock()
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Service) SetMaxParallelDownloads(max int) {
	if max < 1 {
		max = 1
	}
	s.tasksMutex.Lock()
	s.maxParallel = max
	s.dispatchLocked()
	s.tasksMutex.Unlock()
}

// AddTask queues a video for download. A task whose MP3 already exists in
// the target directory finishes immediately as Skipped.
func (s *Service) AddTask(ref model.VideoRef) (*model.DownloadTask, error) {
	if strings.TrimSpace(ref.Bvid) == "" {
		return nil, fmt.Errorf("empty video id")
	}
	if strings.TrimSpace(ref.Dir) == "" {
		return nil, fmt.Errorf("empty target directory")
	}

	s.tasksMutex.Lock()
	for _, task := range s.tasks {
		if task.Bvid == ref.Bvid && !task.Status.IsFinished() {
			s.tasksMutex.Unlock()
			return nil, fmt.Errorf("%w for video: %s", ErrDuplicate, ref.Bvid)
		}
	}

	task := &model.DownloadTask{
		ID:        generateTaskID(),
		Bvid:      ref.Bvid,
		Creator:   ref.Creator,
		Dir:       ref.Dir,
		Title:     ref.Title,
		Status:    model.TaskStatusPending,
		ETASec:    -1,
		StartedAt: time.Now(),
	}
	s.tasks[task.ID] = task

	if ref.Title != "" {
		if exists, _ := platform.AudioFileExists(ref.Dir, ref.Title); exists {
			s.markSkippedLocked(task)
			snap := *task
			s.tasksMutex.Unlock()
			s.notify(&snap)
			return &snap, nil
		}
	}

	s.queue = append(s.queue, task.ID)
	s.dispatchLocked()
	snap := *task
	s.tasksMutex.Unlock()

	return &snap, nil
}

// GetTask returns a copy of the task with the given ID
func (s *Service) GetTask(id string) (*model.DownloadTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[id]
	if !exists {
		return nil, false
	}
	snap := *task
	return &snap, true
}

// GetAllTasks returns copies of all tasks in creation order
func (s *Service) GetAllTasks() []*model.DownloadTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]*model.DownloadTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		snap := *task
		tasks = append(tasks, &snap)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// StopTask stops a queued or running task
func (s *Service) StopTask(id string) error {
	s.tasksMutex.Lock()

	task, exists := s.tasks[id]
	if !exists {
		s.tasksMutex.Unlock()
		return fmt.Errorf("task not found: %s", id)
	}

	switch {
	case task.Status == model.TaskStatusPending:
		task.Status = model.TaskStatusStopped
		task.FinishedAt = time.Now()
	case task.Status.IsActive():
		task.Status = model.TaskStatusStopping
		if cancel, ok := s.cancels[id]; ok {
			cancel()
		}
	default:
		s.tasksMutex.Unlock()
		return fmt.Errorf("task is not active: %s", task.Status)
	}

	snap := *task
	s.tasksMutex.Unlock()
	s.notify(&snap)
	return nil
}

// RemoveTask forgets a finished task
func (s *Service) RemoveTask(id string) error {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return fmt.Errorf("task not found: %s", id)
	}
	if !task.Status.IsFinished() {
		return fmt.Errorf("task is not finished: %s", task.Status)
	}
	delete(s.tasks, id)
	return nil
}

// dispatchLocked starts queued tasks while there is capacity.
func (s *Service) dispatchLocked() {
	for s.activeCount < s.maxParallel && len(s.queue) > 0 {
		id := s.queue[0]
		s.queue = s.queue[1:]

		task, ok := s.tasks[id]
		if !ok || task.Status != model.TaskStatusPending {
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		s.cancels[id] = cancel
		s.activeCount++
		task.Status = model.TaskStatusStarting
		go s.startTask(ctx, task)
	}
}

// startTask runs the pipeline for a task and records the outcome
func (s *Service) startTask(ctx context.Context, task *model.DownloadTask) {
	s.notifyTask(task)

	defer func() {
		s.tasksMutex.Lock()
		if cancel, ok := s.cancels[task.ID]; ok {
			cancel()
			delete(s.cancels, task.ID)
		}
		s.activeCount--
		s.dispatchLocked()
		s.tasksMutex.Unlock()
	}()

	skipped, err := s.process(ctx, task)

	s.tasksMutex.Lock()
	switch {
	case ctx.Err() != nil:
		task.Status = model.TaskStatusStopped
	case err != nil:
		task.Status = model.TaskStatusError
		task.LastError = err.Error()
	case skipped:
		s.markSkippedLocked(task)
	default:
		task.Status = model.TaskStatusCompleted
		task.Progress = 1.0
		task.Percent = 100
	}
	task.ETASec = -1
	task.Speed = ""
	task.FinishedAt = time.Now()
	snap := *task
	s.tasksMutex.Unlock()

	if snap.Status == model.TaskStatusError {
		s.logger.Error("download failed", slog.String("task", snap.ID), slog.String("bvid", snap.Bvid), slog.String("err", snap.LastError))
	} else {
		s.logger.Info("download finished", slog.String("task", snap.ID), slog.String("bvid", snap.Bvid), slog.String("status", snap.Status.String()))
	}
	s.notify(&snap)
}

// process resolves, fetches, converts and tags one video.
func (s *Service) process(ctx context.Context, task *model.DownloadTask) (skipped bool, err error) {
	info, err := s.resolver.ResolveVideo(ctx, task.Bvid)
	if err != nil {
		return false, err
	}

	s.tasksMutex.Lock()
	if task.Title == "" {
		task.Title = info.Title
	}
	if task.Creator == "" {
		task.Creator = info.Owner.Name
	}
	title, creator, dir := task.Title, task.Creator, task.Dir
	s.tasksMutex.Unlock()
	s.notifyTask(task)

	if title == "" {
		title = task.Bvid
	}
	if exists, _ := platform.AudioFileExists(dir, title); exists {
		return true, nil
	}

	set, err := s.resolver.ResolveStreams(ctx, task.Bvid, bili.FormatContentID(info.ContentID))
	if err != nil {
		return false, err
	}
	audio, ok := set.BestAudio()
	if !ok {
		return false, fmt.Errorf("no audio stream for %s", task.Bvid)
	}

	if err := platform.CreateDirectory(dir); err != nil {
		return false, err
	}
	output := platform.AudioPath(dir, title)
	partial := strings.TrimSuffix(output, platform.AudioExtension) + PartialExtension
	defer os.Remove(partial)

	s.setStatus(task, model.TaskStatusDownloading)
	if err := s.fetch(ctx, audio.BaseURL, partial, task); err != nil {
		return false, err
	}

	s.setStatus(task, model.TaskStatusConverting)
	err = s.converter.Convert(ctx, partial, output, func(p float64) {
		s.tasksMutex.Lock()
		task.Progress = p
		task.Percent = int(p * 100)
		s.tasksMutex.Unlock()
		s.notifyTask(task)
	})
	if err != nil {
		return false, fmt.Errorf("convert: %w", err)
	}

	if err := writeTags(output, title, creator); err != nil {
		s.logger.Warn("failed to write tags", slog.String("path", output), slog.Any("err", err))
	}

	s.tasksMutex.Lock()
	task.OutputPath = output
	s.tasksMutex.Unlock()
	return false, nil
}

// fetch streams the audio into path, reporting progress.
func (s *Service) fetch(ctx context.Context, url, path string, task *model.DownloadTask) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Referer", StreamReferer)
	req.Header.Set("User-Agent", bili.DefaultUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("fetch audio: unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	s.tasksMutex.Lock()
	task.FileSize = resp.ContentLength
	s.tasksMutex.Unlock()

	pw := &progressWriter{s: s, task: task, total: resp.ContentLength, started: time.Now()}
	if _, err := io.Copy(io.MultiWriter(f, pw), resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("fetch audio: %w", err)
	}
	return f.Close()
}

type progressWriter struct {
	s          *Service
	task       *model.DownloadTask
	total      int64
	written    int64
	started    time.Time
	lastNotify time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.written += int64(len(p))

	now := time.Now()
	if now.Sub(pw.lastNotify) < progressInterval && pw.written != pw.total {
		return len(p), nil
	}
	pw.lastNotify = now

	pw.s.tasksMutex.Lock()
	if pw.total > 0 {
		pw.task.Progress = float64(pw.written) / float64(pw.total)
		pw.task.Percent = int(pw.task.Progress * 100)
	}
	if elapsed := now.Sub(pw.started).Seconds(); elapsed > 0 {
		rate := float64(pw.written) / elapsed
		pw.task.Speed = humanize.Bytes(uint64(rate)) + "/s"
		if pw.total > 0 && rate > 0 {
			pw.task.ETASec = int(float64(pw.total-pw.written) / rate)
		}
	}
	pw.s.tasksMutex.Unlock()

	pw.s.notifyTask(pw.task)
	return len(p), nil
}

// writeTags sets the ID3v2 title and artist of an MP3 file.
func writeTags(path, title, artist string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(title)
	if artist != "" {
		tag.SetArtist(artist)
	}
	return tag.Save()
}

func (s *Service) setStatus(task *model.DownloadTask, status model.TaskStatus) {
	s.tasksMutex.Lock()
	if task.Status != model.TaskStatusStopping {
		task.Status = status
	}
	task.Progress = 0
	task.Percent = 0
	s.tasksMutex.Unlock()
	s.notifyTask(task)
}

func (s *Service) markSkippedLocked(task *model.DownloadTask) {
	name := task.Title
	if name == "" {
		name = task.Bvid
	}
	task.Status = model.TaskStatusSkipped
	task.OutputPath = platform.AudioPath(task.Dir, name)
	task.Progress = 1.0
	task.Percent = 100
	task.FinishedAt = time.Now()
}

// notifyTask sends a snapshot of task to the callback
func (s *Service) notifyTask(task *model.DownloadTask) {
	s.tasksMutex.RLock()
	snap := *task
	s.tasksMutex.RUnlock()
	s.notify(&snap)
}

// notify calls the update callback if set
func (s *Service) notify(task *model.DownloadTask) {
	s.tasksMutex.RLock()
	cb := s.onUpdate
	s.tasksMutex.RUnlock()
	if cb != nil {
		cb(task)
	}
}

// generateTaskID generates a unique, time-ordered task ID using UUID v7
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
