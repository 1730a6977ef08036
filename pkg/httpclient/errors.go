package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/Mousaahmad63636/spotlymobile/pkg/errors"
)

// remoteErrorBody matches the error shapes the Spotly backend returns:
// either {"message": "..."} or {"error": "..."}.
type remoteErrorBody struct {
	Message string `json:"message"`
	ErrMsg  string `json:"error"`
}

func (b remoteErrorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.ErrMsg
}

// ParseResponseError reads a non-2xx response body and translates it into an
// AppError. The body is fully consumed and closed. Call only when
// resp.StatusCode is outside the 2xx range.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("backend returned status %d (failed to read body: %w)", resp.StatusCode, err)
	}

	message := ""
	var body remoteErrorBody
	if json.Unmarshal(raw, &body) == nil {
		message = body.text()
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return mapStatus(resp.StatusCode, message)
}

func mapStatus(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case status == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: message,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	case status == http.StatusConflict:
		return apperrors.Conflict(message)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(message)
	case status >= 500:
		return fmt.Errorf("backend error (%d): %s: %w", status, message, apperrors.ErrServiceUnavail)
	default:
		return &apperrors.AppError{
			Code:    "REMOTE_ERROR",
			Message: message,
			Status:  status,
		}
	}
}

// MapTransportError converts a low-level client error (network failure,
// exhausted retries, open breaker, surviving 5xx) into an AppError.
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}

	var srvErr *ServerError
	switch {
	case errors.As(err, &srvErr):
		return apperrors.Unavailable(fmt.Sprintf("backend error (%d)", srvErr.Status))
	case errors.Is(err, ErrCircuitOpen):
		return apperrors.Unavailable("backend temporarily unavailable")
	default:
		return apperrors.Transport(err)
	}
}
