// Package backend is the HTTP client for the locally supervised inference
// server. The server exposes GET /healthcheck and POST /chat; replies come
// back as plain text.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUnreachable is returned when the inference server cannot be reached or
// is not ready.
var ErrUnreachable = errors.New("inference server unreachable")

// Client talks to the inference server over HTTP.
type Client struct {
	http         *resty.Client
	probeTimeout time.Duration
}

// chatRequest is the JSON payload for the /chat route.
type chatRequest struct {
	Message  string `json:"message"`
	Nickname string `json:"nickname"`
}

// NewClient creates a client for the inference server at baseURL.
// requestTimeout bounds the /chat call; probeTimeout bounds the healthcheck.
func NewClient(baseURL string, requestTimeout, probeTimeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout)

	return &Client{
		http:         httpClient,
		probeTimeout: probeTimeout,
	}
}

// IsReachable reports whether the inference server answers its healthcheck.
// Any transport error or non-2xx status counts as unreachable.
func (c *Client) IsReachable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(probeCtx).
		Get("/healthcheck")
	if err != nil {
		return false
	}
	return resp.IsSuccess()
}

// Chat submits a user message and nickname to the /chat route and returns the
// raw reply body. Transport failures and non-2xx statuses are errors; an
// empty body is not (the relay pipeline substitutes a placeholder).
func (c *Client) Chat(ctx context.Context, message, nickname string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{Message: message, Nickname: nickname}).
		Post("/chat")
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("chat request returned status %d", resp.StatusCode())
	}

	return resp.String(), nil
}
