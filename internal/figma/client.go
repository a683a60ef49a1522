// Package figma is a small client for the read-only parts of the Figma
// REST API used by the MCP tools.
package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"figmamcp/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Figma API endpoint.
const DefaultBaseURL = "https://api.figma.com"

// TokenHeader carries the personal access token on every request.
const TokenHeader = "X-Figma-Token"

// maxResponseSize caps how much of a response body is read. Large design
// files run to tens of megabytes.
const maxResponseSize = 256 << 20

var (
	// ErrMissingAPIKey is returned when a request is attempted without a key.
	ErrMissingAPIKey = errors.New("figma API key is not configured")
	// ErrInvalidFileKey is returned for empty or malformed file keys.
	ErrInvalidFileKey = errors.New("invalid Figma file key")
)

// KeySource supplies the API key for each request. Implementations must
// be safe for concurrent use.
type KeySource interface {
	APIKey() string
}

// StaticKey is a KeySource that never changes.
type StaticKey string

// APIKey returns the key itself.
func (k StaticKey) APIKey() string { return string(k) }

// Options configures a Client. Zero values fall back to DefaultOptions.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// MaxRetries is the number of retries after the first attempt for
	// 429 and 5xx responses. Negative disables retries.
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// RequestsPerMinute throttles outbound calls. Zero disables throttling.
	RequestsPerMinute int

	// HTTPClient overrides the underlying transport client.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		BaseURL:      DefaultBaseURL,
		UserAgent:    "figma-mcp",
		Timeout:      60 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 30 * time.Second,
	}
}

// Client talks to the Figma REST API. It is safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	keys      KeySource
	http      *retryablehttp.Client
	limiter   *rate.Limiter
	logger    *log.Logger
}

// NewClient creates a Client reading its API key from keys.
func NewClient(keys KeySource, opts Options) (*Client, error) {
	if keys == nil {
		return nil, ErrMissingAPIKey
	}

	defaults := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = defaults.BaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.RetryWaitMin == 0 {
		opts.RetryWaitMin = defaults.RetryWaitMin
	}
	if opts.RetryWaitMax == 0 {
		opts.RetryWaitMax = defaults.RetryWaitMax
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = opts.MaxRetries
	rc.RetryWaitMin = opts.RetryWaitMin
	rc.RetryWaitMax = opts.RetryWaitMax
	rc.Logger = logging.RetryLogger{Logger: opts.Logger}
	// Hand the last response back instead of a generic "giving up" error so
	// callers can report the real status code.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		keys:      keys,
		http:      rc,
		logger:    opts.Logger,
	}
	if opts.RequestsPerMinute > 0 {
		every := time.Minute / time.Duration(opts.RequestsPerMinute)
		c.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
	return c, nil
}

// GetFile fetches and decodes a whole file.
func (c *Client) GetFile(ctx context.Context, fileKey string) (*File, error) {
	body, err := c.GetFileRaw(ctx, fileKey)
	if err != nil {
		return nil, err
	}
	var file File
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("failed to decode Figma file: %w", err)
	}
	return &file, nil
}

// GetFileRaw fetches a file and returns the undecoded JSON body.
func (c *Client) GetFileRaw(ctx context.Context, fileKey string) ([]byte, error) {
	if err := validateFileKey(fileKey); err != nil {
		return nil, err
	}
	return c.get(ctx, OpFile, "/v1/files/"+url.PathEscape(fileKey), nil)
}

// GetNodes fetches the given nodes of a file. Node ids are normalized to
// the colon form first.
func (c *Client) GetNodes(ctx context.Context, fileKey string, nodeIDs []string) (*NodesResponse, error) {
	if err := validateFileKey(fileKey); err != nil {
		return nil, err
	}
	ids, err := normalizeIDs(nodeIDs)
	if err != nil {
		return nil, err
	}

	query := url.Values{"ids": {strings.Join(ids, ",")}}
	body, err := c.get(ctx, OpNodes, "/v1/files/"+url.PathEscape(fileKey)+"/nodes", query)
	if err != nil {
		return nil, err
	}

	var resp NodesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode Figma nodes: %w", err)
	}
	return &resp, nil
}

// ImageOptions controls node rendering.
type ImageOptions struct {
	// Format is png, jpg, svg or pdf. Empty means png.
	Format string
	// Scale is between 0.01 and 4. Zero means 1.
	Scale float64
}

// ImageFormats lists the render formats Figma accepts.
var ImageFormats = []string{"png", "jpg", "svg", "pdf"}

// Validate normalizes and checks the options.
func (o *ImageOptions) Validate() error {
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	if o.Format == "" {
		o.Format = "png"
	}
	valid := false
	for _, f := range ImageFormats {
		if o.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid image format %q: must be one of %s", o.Format, strings.Join(ImageFormats, ", "))
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Scale < 0.01 || o.Scale > 4 {
		return fmt.Errorf("invalid image scale %v: must be between 0.01 and 4", o.Scale)
	}
	return nil
}

// GetImages asks Figma to render nodes and returns their temporary URLs.
func (c *Client) GetImages(ctx context.Context, fileKey string, nodeIDs []string, opts ImageOptions) (*ImagesResponse, error) {
	if err := validateFileKey(fileKey); err != nil {
		return nil, err
	}
	ids, err := normalizeIDs(nodeIDs)
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{
		"ids":    {strings.Join(ids, ",")},
		"format": {opts.Format},
		"scale":  {strconv.FormatFloat(opts.Scale, 'f', -1, 64)},
	}
	body, err := c.get(ctx, OpImages, "/v1/images/"+url.PathEscape(fileKey), query)
	if err != nil {
		return nil, err
	}

	var resp ImagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode Figma images: %w", err)
	}
	if resp.Err != nil && *resp.Err != "" {
		return nil, &APIError{Op: OpImages, StatusCode: http.StatusOK, Message: *resp.Err}
	}
	return &resp, nil
}

// get performs an authenticated GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, op Op, path string, query url.Values) ([]byte, error) {
	key := strings.TrimSpace(c.keys.APIKey())
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(TokenHeader, key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("figma request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read Figma response: %w", err)
	}

	c.logger.Debug("figma request",
		"op", string(op),
		"path", path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(op, resp.StatusCode, body)
	}
	return body, nil
}

func validateFileKey(fileKey string) error {
	if strings.TrimSpace(fileKey) == "" || strings.ContainsAny(fileKey, "/?#") {
		return fmt.Errorf("%w: %q", ErrInvalidFileKey, fileKey)
	}
	return nil
}

func normalizeIDs(nodeIDs []string) ([]string, error) {
	ids := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		id = NormalizeNodeID(strings.TrimSpace(id))
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("at least one node id is required")
	}
	return ids, nil
}
