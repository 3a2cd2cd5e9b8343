package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/SerjoschDuering/ifcore-platform/internal/errors"
)

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeJSON(w, r, dst, true)
}

// DecodeJSONLenient is DecodeJSON without the unknown-field check, for
// payloads that echo server objects back.
func DecodeJSONLenient(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeJSON(w, r, dst, false)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, strict bool) bool {
	dec := json.NewDecoder(r.Body)
	if strict {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams. Application
// errors expose only their message; the cause stays in the logs.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := map[string]string{"error": p.ErrCode, "message": publicMessage(p.Err)}
	if field := apperrors.GetField(p.Err); field != "" {
		body["field"] = field
	}
	WriteJSON(w, p.Code, body)
}

func publicMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// statusForError maps an application error onto an HTTP status and error code.
func statusForError(err error) (int, string) {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest, "validation_failed"
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, "not_found"
	case apperrors.ErrCodeConflict, apperrors.ErrCodeForeignKey:
		return http.StatusConflict, "conflict"
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, "timeout"
	case apperrors.ErrCodeUpstream, apperrors.ErrCodeUnavailable:
		return http.StatusBadGateway, "upstream_failed"
	case apperrors.ErrCodeCanceled:
		return statusClientClosedRequest, "canceled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// statusClientClosedRequest is nginx's code for a client that went away.
const statusClientClosedRequest = 499

// writeServiceError renders err with the status its code maps to. Unmapped
// errors are reported without their internals.
func writeServiceError(w http.ResponseWriter, err error) {
	code, errCode := statusForError(err)
	if code == http.StatusInternalServerError && apperrors.GetCode(err) == "" {
		err = errors.New("internal server error")
	}
	WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: err})
}
