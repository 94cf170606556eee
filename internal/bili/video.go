package bili

import (
	"context"
	"encoding/json"
	"net/url"
)

// Owner is the uploader block of a view response.
type Owner struct {
	Mid  int64  `json:"mid"`
	Name string `json:"name"`
	Face string `json:"face"`
}

// VideoInfo is the result of resolving a public video id.
type VideoInfo struct {
	ContentID int64
	VideoID   string
	Title     string
	Duration  int64
	Owner     Owner
	// Raw is the full response body.
	Raw json.RawMessage
}

type viewData struct {
	Bvid     string `json:"bvid"`
	Cid      int64  `json:"cid"`
	Title    string `json:"title"`
	Duration int64  `json:"duration"`
	Owner    Owner  `json:"owner"`
}

// ResolveVideo maps a bvid to its content id (cid).
func (c *Client) ResolveVideo(ctx context.Context, videoID string) (*VideoInfo, error) {
	const op = "resolve video"

	q := url.Values{"bvid": {videoID}}
	body, err := c.get(ctx, op, PathView+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	env, err := decode(op, body, true)
	if err != nil {
		return nil, err
	}

	var data viewData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, shapeError(op, body, "decode data: %w", err)
	}
	if data.Cid == 0 {
		return nil, shapeError(op, body, "missing data.cid")
	}

	return &VideoInfo{
		ContentID: data.Cid,
		VideoID:   videoID,
		Title:     data.Title,
		Duration:  data.Duration,
		Owner:     data.Owner,
		Raw:       body,
	}, nil
}
