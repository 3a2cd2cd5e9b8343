// Package inference is the HTTP client for the service that runs compliance
// checks and answers chat questions about results.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/SerjoschDuering/ifcore-platform/config"
	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

var _ core.InferenceClient = (*Client)(nil)

// maxErrorBody caps how much of a failed reply is kept for the error message.
const maxErrorBody = 512

// Client calls the inference service. Status reads are retried; submissions
// and chat questions are sent exactly once.
type Client struct {
	baseURL string
	reads   *retryablehttp.Client
	writes  *http.Client
	cfg     config.InferenceConfig
	logger  *slog.Logger
}

// Options bundles dependencies for NewClient.
type Options struct {
	Config config.InferenceConfig
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient builds a Client from configuration.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "inference_client")

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}

	reads := retryablehttp.NewClient()
	reads.HTTPClient = base
	reads.RetryMax = opts.Config.MaxRetries
	reads.RetryWaitMin = 200 * time.Millisecond
	reads.RetryWaitMax = 2 * time.Second
	reads.Logger = logger
	// Hand the last response back instead of a generic "giving up" error so
	// callers can report the upstream status.
	reads.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL: opts.Config.BaseURL,
		reads:   reads,
		writes:  base,
		cfg:     opts.Config,
		logger:  logger,
	}
}

type checkRequest struct {
	IFCB64    string `json:"ifc_b64"`
	ProjectID string `json:"project_id"`
}

type checkResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// SubmitCheck posts the base64 model and returns the external job id.
func (c *Client) SubmitCheck(ctx context.Context, projectID, modelB64 string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.CheckTimeout)
	defer cancel()

	var out checkResponse
	if err := c.postJSON(ctx, "/check", checkRequest{IFCB64: modelB64, ProjectID: projectID}, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", apperrors.Upstream("inference service returned no job id")
	}
	return out.JobID, nil
}

// GetJob reads the external job status, with results once it is done.
func (c *Client) GetJob(ctx context.Context, externalJobID string) (*core.InferenceJob, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.JobTimeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/jobs/"+url.PathEscape(externalJobID), nil)
	if err != nil {
		return nil, fmt.Errorf("build job request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.reads.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer drainClose(resp.Body)

	if err := statusError(resp); err != nil {
		return nil, err
	}

	var dto jobDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstream, "inference service returned an invalid job payload")
	}
	return dto.toJob(), nil
}

// Chat forwards a question with its results snapshot.
func (c *Client) Chat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ChatTimeout)
	defer cancel()

	var out model.ChatResponse
	if err := c.postJSON(ctx, "/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.writes.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer drainClose(resp.Body)

	if err := statusError(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "inference service returned an invalid %s payload", path)
	}
	return nil
}

// statusError maps a non-2xx reply to an Upstream error carrying the status code.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &apperrors.AppError{
		Code:    apperrors.ErrCodeUpstream,
		Message: fmt.Sprintf("inference service returned %d", resp.StatusCode),
		Cause:   &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))},
	}
}

// StatusError is the raw failed reply behind an Upstream error.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// transportError separates timeouts from an unreachable service.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "inference request canceled")
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "inference service timed out")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "inference service unreachable")
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
