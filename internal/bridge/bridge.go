package bridge

// Package bridge is the request boundary between the UI/CLI and the platform
// client and filesystem helpers. Every failure is logged here; network calls
// still hand the classified error back so callers can present it, while
// filesystem calls collapse to a success flag.

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/platform"
)

// API is the platform surface the bridge exposes.
type API interface {
	ResolveVideo(ctx context.Context, videoID string) (*bili.VideoInfo, error)
	ResolveStreams(ctx context.Context, videoID, contentID string) (*bili.StreamSet, error)
	FetchListing(ctx context.Context, params bili.ListingParams) (*bili.Listing, error)
}

// Bridge converts failures into logged diagnostics.
type Bridge struct {
	api    API
	logger *slog.Logger
}

// New creates a bridge over api
func New(api API, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{api: api, logger: logger}
}

// ResolveVideo returns the content id lookup for videoID.
func (b *Bridge) ResolveVideo(ctx context.Context, videoID string) (*bili.VideoInfo, error) {
	info, err := b.api.ResolveVideo(ctx, videoID)
	if err != nil {
		b.logFailure("resolve video", err, slog.String("bvid", videoID))
		return nil, err
	}
	return info, nil
}

// ResolveStreams returns the stream candidates for a video part.
func (b *Bridge) ResolveStreams(ctx context.Context, videoID, contentID string) (*bili.StreamSet, error) {
	set, err := b.api.ResolveStreams(ctx, videoID, contentID)
	if err != nil {
		b.logFailure("resolve streams", err, slog.String("bvid", videoID), slog.String("cid", contentID))
		return nil, err
	}
	return set, nil
}

// FetchListing returns one page of a creator's uploads.
func (b *Bridge) FetchListing(ctx context.Context, params bili.ListingParams) (*bili.Listing, error) {
	listing, err := b.api.FetchListing(ctx, params)
	if err != nil {
		b.logFailure("fetch listing", err, slog.Int64("mid", params.Mid), slog.Int("pn", params.Pn))
		return nil, err
	}
	return listing, nil
}

// CreateDir creates dirPath recursively; existing directories succeed.
func (b *Bridge) CreateDir(dirPath string) bool {
	if err := platform.CreateDirectory(dirPath); err != nil {
		b.logger.Error("create directory failed", slog.String("path", dirPath), slog.Any("err", err))
		return false
	}
	return true
}

// FileExists reports whether "<title>.mp3" exists in dir.
func (b *Bridge) FileExists(dir, title string) bool {
	exists, err := platform.AudioFileExists(dir, title)
	if err != nil {
		b.logger.Error("check file failed", slog.String("dir", dir), slog.String("title", title), slog.Any("err", err))
		return false
	}
	return exists
}

// DesktopPath returns the desktop directory, or "" when it cannot be found.
func (b *Bridge) DesktopPath() string {
	dir, err := platform.DesktopDir()
	if err != nil {
		b.logger.Error("desktop path lookup failed", slog.Any("err", err))
		return ""
	}
	return dir
}

func (b *Bridge) logFailure(op string, err error, attrs ...slog.Attr) {
	args := make([]any, 0, len(attrs)+3)
	for _, a := range attrs {
		args = append(args, a)
	}

	var be *bili.Error
	if errors.As(err, &be) {
		args = append(args, slog.String("kind", be.Kind.String()))
		if be.Kind == bili.KindAPI {
			args = append(args, slog.Int("code", be.Code))
		}
	}
	args = append(args, slog.Any("err", err))
	b.logger.Error(op+" failed", args...)
}
