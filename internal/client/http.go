package client

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// newHTTPClient builds the resty client shared by all collaborators. Failed
// calls are surfaced to the user, who re-initiates the action, so no retry is
// configured.
func newHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
}
