// Package apiclient is the typed HTTP client for the ifcore API used by the
// session core and the admin CLI.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/SerjoschDuering/ifcore-platform/config"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// UserIDHeader carries the caller's identity for owner-scoped project lists.
const UserIDHeader = "X-User-ID"

// Client calls the ifcore HTTP API. GETs are retried; uploads, check runs and
// chat questions are sent once.
type Client struct {
	baseURL string
	userID  string
	timeout time.Duration
	reads   *retryablehttp.Client
	writes  *http.Client
}

// Options bundles dependencies for New.
type Options struct {
	Config config.ClientConfig
	// UserID scopes project listings. Empty lists shared projects only.
	UserID     string
	HTTPClient *http.Client
	Logger     *slog.Logger
	MaxRetries int
}

// New builds a Client.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}

	reads := retryablehttp.NewClient()
	reads.HTTPClient = base
	reads.RetryMax = opts.MaxRetries
	reads.RetryWaitMin = 100 * time.Millisecond
	reads.RetryWaitMax = time.Second
	reads.Logger = logger.With("component", "api_client")
	reads.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL: opts.Config.APIBaseURL,
		userID:  opts.UserID,
		timeout: opts.Config.RequestTimeout,
		reads:   reads,
		writes:  base,
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Upload streams a model file as multipart field "file".
func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) (*model.UploadResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", pr)
	if err != nil {
		_ = pr.Close()
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.decorate(req.Header)

	var out model.UploadResponse
	if err := c.send(req, &out); err != nil {
		// Unblocks the writer goroutine when the server replied before reading the body.
		_ = pr.CloseWithError(err)
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	return &out, nil
}

// StartCheck asks the API to run all checks on an uploaded model.
func (c *Client) StartCheck(ctx context.Context, req model.StartCheckRequest) (*model.StartCheckResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var out model.StartCheckResponse
	if err := c.postJSON(ctx, "/api/checks/run", req, &out); err != nil {
		return nil, fmt.Errorf("start check: %w", err)
	}
	return &out, nil
}

// GetJob returns a job with its results.
func (c *Client) GetJob(ctx context.Context, id string) (*model.JobWithResults, error) {
	var out model.JobWithResults
	if err := c.getJSON(ctx, "/api/checks/jobs/"+url.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return &out, nil
}

// ListProjects returns the caller's projects plus shared ones.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.getJSON(ctx, "/api/projects", &out); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// GetProject returns a project with its jobs.
func (c *Client) GetProject(ctx context.Context, id string) (*model.ProjectDetail, error) {
	var out model.ProjectDetail
	if err := c.getJSON(ctx, "/api/projects/"+url.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return &out, nil
}

// Chat asks a question about a results snapshot.
func (c *Client) Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var out model.ChatResponse
	if err := c.postJSON(ctx, "/api/chat", req, &out); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	return &out, nil
}

// FileURL returns the API route that streams a stored model for locator.
func (c *Client) FileURL(locator string) (string, bool) {
	key, ok := model.KeyFromLocator(locator)
	if !ok {
		return "", false
	}
	return c.baseURL + "/api/files/" + key, true
}

// Download fetches raw bytes from an absolute URL, usually one built by
// FileURL. At most maxBytes are read; 0 means no limit.
func (c *Client) Download(ctx context.Context, rawURL string, maxBytes int64) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userID != "" {
		req.Header.Set(UserIDHeader, c.userID)
	}
	resp, err := c.reads.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeResponse(resp, nil)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, transportError(err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("download %s: body exceeds %d bytes", rawURL, maxBytes)
	}
	return data, nil
}

func (c *Client) decorate(h http.Header) {
	h.Set("Accept", "application/json")
	if c.userID != "" {
		h.Set(UserIDHeader, c.userID)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.decorate(req.Header)

	resp, err := c.reads.Do(req)
	if err != nil {
		return transportError(err)
	}
	return decodeResponse(resp, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req.Header)
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.writes.Do(req)
	if err != nil {
		return transportError(err)
	}
	return decodeResponse(resp, out)
}
