package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/camlight/internal/logging"
	"github.com/muurk/camlight/internal/metrics"
	"github.com/muurk/camlight/internal/version"
)

// DefaultTimeout bounds every RPC call
const DefaultTimeout = 10 * time.Second

// Reply is the outcome of a single RPC round trip
type Reply struct {
	// Body is the decoded response. It is nil when a non-200 response carried no JSON.
	Body *Response

	// Cookie joins every Set-Cookie header of the response with "; "
	Cookie string

	// StatusCode is the HTTP status of the response
	StatusCode int
}

// Client posts JSON-RPC requests to a camera
type Client struct {
	// BaseURL is the device base URL (e.g., "http://192.168.1.108")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// Timeout bounds each call independently
	Timeout time.Duration
}

// NewClient creates a client for a device address.
// address may be a host, host:port or a full http(s) URL.
func NewClient(address string) *Client {
	baseURL := address
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		baseURL = "http://" + address
	}
	return NewClientWithURL(baseURL)
}

// NewClientWithURL creates a client with a full base URL
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Timeout:    DefaultTimeout,
	}
}

// SetTimeout sets the per-call timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.Timeout = timeout
	c.HTTPClient.Timeout = timeout
}

// RPCURL returns the URL of the general RPC endpoint
func (c *Client) RPCURL() string {
	return c.BaseURL + RPCPath
}

// LoginURL returns the URL of the login endpoint
func (c *Client) LoginURL() string {
	return c.BaseURL + LoginPath
}

// Send posts req to url, attaching cookie when non-empty.
// A non-200 status is not an error; callers interpret Reply.StatusCode.
func (c *Client) Send(ctx context.Context, url string, req *Request, cookie string) (*Reply, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, NewProtocolError(req.Method, "failed to encode request", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, NewNetworkError(req.Method, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	if cookie != "" {
		httpReq.Header.Set("Cookie", cookie)
	}

	logging.LogRPCPayload("RPC request", payload)

	start := time.Now()
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		metrics.ObserveRPC(req.Method, 0, time.Since(start))
		return nil, NewNetworkError(req.Method, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.ObserveRPC(req.Method, resp.StatusCode, elapsed)
	logging.LogRPCCall(url, req.Method, req.ID, resp.StatusCode, elapsed)
	if err != nil {
		return nil, NewNetworkError(req.Method, "failed to read response body", err)
	}
	logging.LogRPCPayload("RPC response", body)

	reply := &Reply{
		Cookie:     strings.Join(resp.Header.Values("Set-Cookie"), "; "),
		StatusCode: resp.StatusCode,
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Error pages on non-200 responses are often HTML; the status is what matters.
		if resp.StatusCode != http.StatusOK {
			return reply, nil
		}
		parseErr := NewParseError(fmt.Sprintf("JSON parse error in %s response", req.Method), err)
		parseErr.Method = req.Method
		return nil, parseErr
	}
	reply.Body = &decoded

	return reply, nil
}
