package sdk

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrNoServerURL = errors.New("sdk: server url missing")
	ErrNotFound    = errors.New("sdk: not found")
)

// APIError is the control plane's error envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// handleAPIError folds the transport error and the API error envelope into
// one error value. Returns nil when the response is a success.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	if resp.IsErrorState() {
		if apiErr, ok := resp.ErrorResult().(*APIError); ok {
			return fmt.Errorf("%s: %w", operation, apiErr)
		}
		return fmt.Errorf("api error: %s %s", operation, resp.String())
	}

	return nil
}
