package supabase

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

// APIError is an error response from one of the project's APIs. Error
// returns the server's own message.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// Unwrap maps well-known responses onto the shared sentinels.
func (e *APIError) Unwrap() error {
	status := e.Status
	if n, err := strconv.Atoi(e.Code); err == nil && n >= 400 {
		status = n
	}
	switch {
	case status == http.StatusConflict, strings.EqualFold(e.Code, "Duplicate"):
		return apperrors.ErrAlreadyExists
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status == http.StatusForbidden:
		return apperrors.ErrForbidden
	case e.Code == "session_not_found", e.Code == "refresh_token_not_found", e.Code == "refresh_token_already_used":
		return apperrors.ErrInvalidRefreshToken
	case status == http.StatusUnauthorized, e.Code == "bad_jwt":
		return apperrors.ErrInvalidToken
	}
	return nil
}

// errorBody covers the shapes used by the auth, storage and PostgREST
// services.
type errorBody struct {
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	ErrorCode        string          `json:"error_code"`
	Code             json.RawMessage `json:"code"`
	StatusCode       string          `json:"statusCode"`
}

func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	for _, m := range []string{body.Msg, body.ErrorDescription, body.Message, body.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}

	switch {
	case body.ErrorCode != "":
		apiErr.Code = body.ErrorCode
	case body.StatusCode != "":
		apiErr.Code = body.StatusCode
	case len(body.Code) > 0:
		var s string
		if json.Unmarshal(body.Code, &s) == nil {
			apiErr.Code = s
		}
	}
	if apiErr.Code == "" && body.Error != "" && body.Error != apiErr.Message {
		apiErr.Code = body.Error
	}
	return apiErr
}
