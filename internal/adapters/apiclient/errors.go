package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

// maxErrorBody caps how much of a failed reply is read.
const maxErrorBody = 4 << 10

// HTTPError is a non-2xx API reply. JobID is set when a check run failed
// after its job row was created.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	JobID   string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

// errorBody accepts both the {error, message} envelope and the check-run
// failure shape {job_id, status, error}.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

func decodeResponse(resp *http.Response, out any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	httpErr := &HTTPError{Status: resp.StatusCode}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		httpErr.JobID = body.JobID
		httpErr.Code = body.Error
		httpErr.Message = body.Message
		if httpErr.Message == "" {
			httpErr.Message = body.Error
		}
	}
	if httpErr.Message == "" {
		httpErr.Message = http.StatusText(resp.StatusCode)
	}
	return &apperrors.AppError{Code: codeForStatus(resp.StatusCode), Message: httpErr.Message, Cause: httpErr}
}

func codeForStatus(status int) apperrors.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return apperrors.ErrCodeNotFound
	case status == http.StatusConflict:
		return apperrors.ErrCodeConflict
	case status == http.StatusGatewayTimeout:
		return apperrors.ErrCodeTimeout
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable:
		return apperrors.ErrCodeUpstream
	case status >= 400 && status < 500:
		return apperrors.ErrCodeValidation
	default:
		return apperrors.ErrCodeInternal
	}
}

func transportError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "request timed out")
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "api unreachable")
	}
}

// StatusOf returns the HTTP status behind err, or 0 for transport failures.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
