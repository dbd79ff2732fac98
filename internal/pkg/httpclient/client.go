package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps resty for outbound calls to the payment gateway.
type Client struct {
	r *resty.Client
}

// Response is the raw outcome of a request that reached the server.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// New creates a new HTTP client with sensible defaults.
func New() *Client {
	r := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{r: r}
}

// WithTimeout sets a custom timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithBaseURL makes request paths relative to url.
func (c *Client) WithBaseURL(url string) *Client {
	c.r.SetBaseURL(url)
	return c
}

// WithRetries sets how many times a failed request is retried.
// Only transport errors and 5xx responses are retried.
func (c *Client) WithRetries(n int) *Client {
	if n < 0 {
		n = 0
	}
	c.r.SetRetryCount(n).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || (resp != nil && resp.StatusCode() >= http.StatusInternalServerError)
		})
	return c
}

// WithRetryWait sets the backoff bounds between retries.
func (c *Client) WithRetryWait(min, max time.Duration) *Client {
	c.r.SetRetryWaitTime(min).SetRetryMaxWaitTime(max)
	return c
}

// WithHeader sets a custom header.
func (c *Client) WithHeader(key, value string) *Client {
	c.r.SetHeader(key, value)
	return c
}

// Get sends a GET request authenticated with a bearer token.
func (c *Client) Get(ctx context.Context, url, token string) (*Response, error) {
	resp, err := c.request(ctx, token).Get(url)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

// Post sends a POST request with JSON body authenticated with a bearer token.
func (c *Client) Post(ctx context.Context, url, token string, body interface{}) (*Response, error) {
	req := c.request(ctx, token).SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(url)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}, nil
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.r.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}
