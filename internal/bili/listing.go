package bili

import (
	"context"
	"encoding/json"
)

// Listing defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 25
	DefaultTid      = 3
	DefaultOrder    = "pubdate"

	// TidAll lists uploads of every category.
	TidAll = 0
)

// Category returns a Tid value for ListingParams.
func Category(tid int) *int {
	return &tid
}

// ListingParams selects one page of a creator's uploads. Zero Pn, Ps and
// Order are replaced by the defaults above; a nil Tid means DefaultTid.
type ListingParams struct {
	Mid int64
	Pn  int
	Ps  int
	// Tid is the category filter. Use Category(TidAll) for every category.
	Tid     *int
	Keyword string
	Order   string
	// Cookie is sent verbatim as the Cookie header.
	Cookie string
}

// WithDefaults returns p with zero fields filled in.
func (p ListingParams) WithDefaults() ListingParams {
	if p.Pn <= 0 {
		p.Pn = DefaultPage
	}
	if p.Ps <= 0 {
		p.Ps = DefaultPageSize
	}
	if p.Tid == nil {
		p.Tid = Category(DefaultTid)
	}
	if p.Order == "" {
		p.Order = DefaultOrder
	}
	return p
}

// Query returns the parameters that get signed.
func (p ListingParams) Query() Params {
	tid := DefaultTid
	if p.Tid != nil {
		tid = *p.Tid
	}
	return Params{
		"mid":     p.Mid,
		"pn":      p.Pn,
		"ps":      p.Ps,
		"tid":     tid,
		"keyword": p.Keyword,
		"order":   p.Order,
	}
}

// ListedVideo is one entry of a creator's listing.
type ListedVideo struct {
	Aid         int64  `json:"aid"`
	Bvid        string `json:"bvid"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Mid         int64  `json:"mid"`
	Created     int64  `json:"created"`
	Length      string `json:"length"`
	Pic         string `json:"pic"`
	Play        int64  `json:"play"`
	Description string `json:"description"`
}

// Page is the pagination block of a listing.
type Page struct {
	Pn    int `json:"pn"`
	Ps    int `json:"ps"`
	Count int `json:"count"`
}

// HasMore reports whether pages after this one exist.
func (p Page) HasMore() bool {
	return p.Ps > 0 && p.Pn*p.Ps < p.Count
}

// Listing is one page of a creator's uploads.
type Listing struct {
	Videos []ListedVideo
	Page   Page
	// Raw is the full response body.
	Raw json.RawMessage
}

type listingData struct {
	List *struct {
		Vlist []ListedVideo `json:"vlist"`
	} `json:"list"`
	Page *Page `json:"page"`
}

// FetchListing fetches fresh signing keys, signs the merged parameters and
// requests one listing page. An empty cookie is sent as-is; the platform's
// answer decides the outcome.
func (c *Client) FetchListing(ctx context.Context, params ListingParams) (*Listing, error) {
	const op = "fetch listing"

	params = params.WithDefaults()
	keys, err := c.FetchSigningKeys(ctx)
	if err != nil {
		return nil, err
	}
	query, err := c.signer.Sign(params.Query(), keys)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindShape, Err: err}
	}

	body, err := c.get(ctx, op, PathListing+"?"+query, map[string]string{
		"Referer": ListingReferer,
		"Cookie":  params.Cookie,
	})
	if err != nil {
		return nil, err
	}
	env, err := decode(op, body, true)
	if err != nil {
		return nil, err
	}

	var data listingData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, shapeError(op, body, "decode data: %w", err)
	}
	if data.List == nil || data.Page == nil {
		return nil, shapeError(op, body, "missing data.list or data.page")
	}
	return &Listing{Videos: data.List.Vlist, Page: *data.Page, Raw: body}, nil
}
