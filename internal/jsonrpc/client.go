package jsonrpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

var ErrEmptyResponse = errors.New("empty API response")

// Client posts MakeMove requests to a JSON-RPC endpoint. Calls are
// synchronous and never retried.
type Client struct {
	url     string
	timeout time.Duration
}

// NewClient returns a client for url. A zero timeout waits indefinitely.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, timeout: timeout}
}

func (c *Client) URL() string {
	return c.url
}

// Call sends raw as the request body and returns the decoded response along
// with the body exactly as received.
func (c *Client) Call(ctx context.Context, raw []byte) (*Response, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	agent := fiber.Post(c.url)
	agent.ContentType(fiber.MIMEApplicationJSON)
	agent.Body(raw)
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("post to %s: %w", c.url, errors.Join(errs...))
	}
	if len(body) == 0 {
		return nil, nil, fmt.Errorf("%w (HTTP %d)", ErrEmptyResponse, status)
	}
	resp, err := ParseResponse(body)
	if err != nil {
		return nil, body, fmt.Errorf("HTTP %d: %w", status, err)
	}
	return resp, body, nil
}
