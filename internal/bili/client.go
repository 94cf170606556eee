package bili

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Platform constants
const (
	DefaultBaseURL   = "https://api.bilibili.com"
	ListingReferer   = "https://message.bilibili.com/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	PathNav     = "/x/web-interface/nav"
	PathView    = "/x/web-interface/view"
	PathPlayURL = "/x/player/playurl"
	PathListing = "/x/space/wbi/arc/search"

	// FormatDash is the fnval flag requesting separate DASH audio/video.
	FormatDash = 16
)

// Client talks to the platform API. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     Signer
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another host (tests, mirrors).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSigner sets the clock and salt used for listing requests.
func WithSigner(s Signer) Option {
	return func(c *Client) { c.signer = s }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new platform client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		userAgent:  DefaultUserAgent,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common response wrapper.
type envelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// get issues a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, op, pathAndQuery string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("bili request",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, Kind: KindStatus, StatusCode: resp.StatusCode, Raw: rawJSON(body)}
	}
	return body, nil
}

// decode parses the envelope and, when checkCode is set, rejects non-zero codes.
func decode(op string, body []byte, checkCode bool) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, shapeError(op, rawJSON(body), "decode envelope: %w", err)
	}
	if env.Code == nil {
		return nil, shapeError(op, body, "missing code field")
	}
	if checkCode && *env.Code != 0 {
		return nil, &Error{Op: op, Kind: KindAPI, Code: *env.Code, Message: env.Message, Raw: body}
	}
	return &env, nil
}

// rawJSON keeps a body only if it is valid JSON, so Raw stays marshalable.
func rawJSON(body []byte) json.RawMessage {
	if json.Valid(body) {
		return body
	}
	return nil
}
