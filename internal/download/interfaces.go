package download

import (
	"context"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/model"
)

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(*model.DownloadTask))
	AddTask(ref model.VideoRef) (*model.DownloadTask, error)
	GetTask(id string) (*model.DownloadTask, bool)
	GetAllTasks() []*model.DownloadTask
	StopTask(id string) error
	RemoveTask(id string) error

	// SetMaxParallelDownloads sets the maximum number of parallel downloads
	SetMaxParallelDownloads(max int)
}

// Resolver is the part of the platform client the pipeline uses.
type Resolver interface {
	ResolveVideo(ctx context.Context, videoID string) (*bili.VideoInfo, error)
	ResolveStreams(ctx context.Context, videoID, contentID string) (*bili.StreamSet, error)
}
