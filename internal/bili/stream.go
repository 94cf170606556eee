package bili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Stream is one DASH representation.
type Stream struct {
	ID        int      `json:"id"`
	BaseURL   string   `json:"baseUrl"`
	BackupURL []string `json:"backupUrl"`
	Bandwidth int64    `json:"bandwidth"`
	MimeType  string   `json:"mimeType"`
	Codecs    string   `json:"codecs"`
}

// Segment is a progressive (non-DASH) download candidate.
type Segment struct {
	Order  int    `json:"order"`
	URL    string `json:"url"`
	Size   int64  `json:"size"`
	Length int64  `json:"length"`
}

// StreamSet holds the stream candidates of one video part. Choosing a
// stream is left to the caller.
type StreamSet struct {
	VideoID   string
	ContentID string
	Duration  int64
	Video     []Stream
	Audio     []Stream
	Durl      []Segment
	// Raw is the full response body.
	Raw json.RawMessage
}

type playURLData struct {
	Dash *struct {
		Duration int64    `json:"duration"`
		Video    []Stream `json:"video"`
		Audio    []Stream `json:"audio"`
	} `json:"dash"`
	Durl []Segment `json:"durl"`
}

// URLs returns every candidate URL unmodified, video first, then audio,
// then progressive segments.
func (s *StreamSet) URLs() []string {
	var out []string
	for _, v := range s.Video {
		out = append(out, v.BaseURL)
	}
	for _, a := range s.Audio {
		out = append(out, a.BaseURL)
	}
	for _, d := range s.Durl {
		out = append(out, d.URL)
	}
	return out
}

// BestAudio returns the audio stream with the highest bandwidth.
func (s *StreamSet) BestAudio() (Stream, bool) {
	if len(s.Audio) == 0 {
		return Stream{}, false
	}
	best := s.Audio[0]
	for _, a := range s.Audio[1:] {
		if a.Bandwidth > best.Bandwidth {
			best = a
		}
	}
	return best, true
}

// ResolveStreams fetches the stream candidates for a (bvid, cid) pair.
func (c *Client) ResolveStreams(ctx context.Context, videoID, contentID string) (*StreamSet, error) {
	const op = "resolve streams"

	path := fmt.Sprintf("%s?fnval=%d&bvid=%s&cid=%s", PathPlayURL, FormatDash,
		url.QueryEscape(videoID), url.QueryEscape(contentID))
	body, err := c.get(ctx, op, path, nil)
	if err != nil {
		return nil, err
	}
	env, err := decode(op, body, true)
	if err != nil {
		return nil, err
	}

	var data playURLData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, shapeError(op, body, "decode data: %w", err)
	}

	set := &StreamSet{VideoID: videoID, ContentID: contentID, Durl: data.Durl, Raw: body}
	if data.Dash != nil {
		set.Duration = data.Dash.Duration
		set.Video = data.Dash.Video
		set.Audio = data.Dash.Audio
	}
	if len(set.URLs()) == 0 {
		return nil, shapeError(op, body, "no stream candidates")
	}
	return set, nil
}

// FormatContentID renders a numeric cid for ResolveStreams.
func FormatContentID(cid int64) string {
	return strconv.FormatInt(cid, 10)
}
