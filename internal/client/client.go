// Package client calls the rentald dispatch endpoint.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const rentalPath = "/api/v1/rental"

// Envelope response of every operation
type Envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Success reports code 2000.
func (e *Envelope) Success() bool { return e.Code == 2000 }

type Options struct {
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
}

func DefaultOptions() Options {
	return Options{Timeout: 30 * time.Second, RetryCount: 3, RetryWait: 500 * time.Millisecond}
}

// Client rentald API client. Only read operations are retried, so a
// timed-out create is never submitted twice.
type Client struct {
	reads  *resty.Client
	writes *resty.Client
	logger *zap.Logger
}

func New(baseURL string, opts Options, logger *zap.Logger) *Client {
	reads := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryWait * 10).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})
	writes := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	return &Client{reads: reads, writes: writes, logger: logger}
}

func isReadOnly(operation string) bool {
	return strings.HasPrefix(operation, "get") || strings.HasPrefix(operation, "view")
}

// Call invokes operation with a JSON payload ("{}" when empty). imagePath,
// when set, is attached as the "image" multipart part.
func (c *Client) Call(ctx context.Context, operation, payload, imagePath string) (*Envelope, error) {
	if strings.TrimSpace(payload) == "" {
		payload = "{}"
	}

	httpClient := c.writes
	if isReadOnly(operation) && imagePath == "" {
		httpClient = c.reads
	}

	var env Envelope
	req := httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{"operation": operation, "json": payload}).
		SetResult(&env)
	if imagePath != "" {
		req.SetFile("image", imagePath)
	}

	c.logger.Debug("Calling rentald API", zap.String("operation", operation), zap.Bool("image", imagePath != ""))
	resp, err := req.Post(rentalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", operation, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: unexpected HTTP status %d", operation, resp.StatusCode())
	}
	if env.Type == "" {
		if err := json.Unmarshal(resp.Body(), &env); err != nil {
			return nil, fmt.Errorf("%s: malformed response: %w", operation, err)
		}
	}
	return &env, nil
}
