package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ytget/bili-audio/internal/download"
	"github.com/ytget/bili-audio/internal/model"
	"github.com/ytget/bili-audio/internal/transcode"
)

func newDownloadCmd(g *globals) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <bvid>...",
		Short: "Save the audio of one or more videos as MP3",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = g.cfg.GetDownloadDir()
			}
			refs := make([]model.VideoRef, 0, len(args))
			for _, bvid := range args {
				refs = append(refs, model.VideoRef{Bvid: bvid, Dir: dir})
			}
			return g.runDownloads(cmd, refs)
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "target directory (default from config)")
	return cmd
}

// runDownloads queues refs and blocks until every task has finished. Status
// changes go to stderr, finished files to stdout.
func (g *globals) runDownloads(cmd *cobra.Command, refs []model.VideoRef) error {
	converter := transcode.New(g.logger)
	if err := converter.Available(); err != nil {
		return err
	}
	svc := download.NewService(g.bridge(), converter, g.cfg.GetMaxParallel(), download.WithLogger(g.logger))

	var (
		mu       sync.Mutex
		lastSeen = map[string]model.TaskStatus{}
		finished = make(chan model.DownloadTask, len(refs))
	)
	svc.SetUpdateCallback(func(task *model.DownloadTask) {
		mu.Lock()
		prev, seen := lastSeen[task.ID]
		lastSeen[task.ID] = task.Status
		mu.Unlock()
		if seen && prev == task.Status {
			return
		}
		if task.Status.IsFinished() {
			finished <- *task
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", task.Bvid, task.Status)
	})

	queued := 0
	var errs []error
	for _, ref := range refs {
		if _, err := svc.AddTask(ref); err != nil {
			errs = append(errs, err)
			continue
		}
		queued++
	}

	out := cmd.OutOrStdout()
	for i := 0; i < queued; i++ {
		var task model.DownloadTask
		select {
		case task = <-finished:
		case <-cmd.Context().Done():
			for _, t := range svc.GetAllTasks() {
				_ = svc.StopTask(t.ID)
			}
			return cmd.Context().Err()
		}

		switch task.Status {
		case model.TaskStatusCompleted:
			fmt.Fprintf(out, "saved %s\n", task.OutputPath)
		case model.TaskStatusSkipped:
			fmt.Fprintf(out, "exists %s\n", task.GetDisplayTitle())
		default:
			errs = append(errs, fmt.Errorf("%s: %s", task.Bvid, task.LastError))
		}
	}
	return errors.Join(errs...)
}
