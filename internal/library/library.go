package library

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ytget/bili-audio/internal/bili"
	"github.com/ytget/bili-audio/internal/config"
	"github.com/ytget/bili-audio/internal/model"
)

// DefaultMaxPages bounds a sync of a creator that was never synced.
const DefaultMaxPages = 40

// Lister fetches listing pages.
type Lister interface {
	FetchListing(ctx context.Context, params bili.ListingParams) (*bili.Listing, error)
}

// Library combines the creator store with listing pages.
type Library struct {
	lister   Lister
	creators *config.CreatorStore
	logger   *slog.Logger

	PageSize int
	MaxPages int
}

// New creates a library.
func New(lister Lister, creators *config.CreatorStore, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		lister:   lister,
		creators: creators,
		logger:   logger,
		PageSize: bili.DefaultPageSize,
		MaxPages: DefaultMaxPages,
	}
}

// Creators returns the followed creators.
func (l *Library) Creators() ([]model.Creator, error) {
	return l.creators.List()
}

// Creator returns the followed creator with the given mid.
func (l *Library) Creator(mid string) (model.Creator, bool, error) {
	return l.creators.Get(strings.TrimSpace(mid))
}

// AddCreator follows mid. The creator's name and avatar are looked up from
// the first listing entry; a failed lookup still adds the creator.
func (l *Library) AddCreator(ctx context.Context, mid, cookie string) (model.Creator, error) {
	mid = strings.TrimSpace(mid)
	id, err := parseMid(mid)
	if err != nil {
		return model.Creator{}, err
	}

	c := model.Creator{Mid: mid}
	listing, err := l.lister.FetchListing(ctx, bili.ListingParams{Mid: id, Ps: 1, Cookie: cookie})
	if err != nil {
		l.logger.Warn("creator lookup failed", slog.String("mid", mid), slog.Any("err", err))
	} else if len(listing.Videos) > 0 {
		c.Name = listing.Videos[0].Author
	}

	if _, err := l.creators.Add(c); err != nil {
		return model.Creator{}, err
	}
	stored, _, err := l.creators.Get(mid)
	return stored, err
}

// RemoveCreator unfollows mid.
func (l *Library) RemoveCreator(mid string) error {
	return l.creators.Remove(mid)
}

// Page fetches one page of a creator's uploads, newest first.
func (l *Library) Page(ctx context.Context, mid, cookie string, pn int) (*bili.Listing, error) {
	id, err := parseMid(mid)
	if err != nil {
		return nil, err
	}
	return l.lister.FetchListing(ctx, bili.ListingParams{Mid: id, Pn: pn, Ps: l.PageSize, Order: bili.DefaultOrder, Cookie: cookie})
}

// NewVideos returns the creator's uploads published after its last sync,
// newest first. Pages are fetched in order until an already-seen upload
// appears or the listing is exhausted.
func (l *Library) NewVideos(ctx context.Context, mid, cookie string) ([]bili.ListedVideo, error) {
	var since time.Time
	if c, ok, err := l.creators.Get(mid); err != nil {
		return nil, err
	} else if ok {
		since = c.LastSync()
	}

	var out []bili.ListedVideo
	for pn := 1; l.MaxPages <= 0 || pn <= l.MaxPages; pn++ {
		listing, err := l.Page(ctx, mid, cookie, pn)
		if err != nil {
			return nil, fmt.Errorf("sync %s page %d: %w", mid, pn, err)
		}

		for _, v := range listing.Videos {
			if !since.IsZero() && !time.Unix(v.Created, 0).After(since) {
				return out, nil
			}
			out = append(out, v)
		}
		if len(listing.Videos) == 0 || !listing.Page.HasMore() {
			break
		}
	}
	return out, nil
}

// MarkSynced records at as the creator's last sync time.
func (l *Library) MarkSynced(mid string, at time.Time) error {
	return l.creators.MarkSynced(mid, at)
}

func parseMid(mid string) (int64, error) {
	id, err := strconv.ParseInt(mid, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid creator id %q", mid)
	}
	return id, nil
}
