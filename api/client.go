package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

// ErrRequestTimeout marks a UI-side deadline expiry. The wait is abandoned
// but the underlying operation may still complete in the daemon; callers
// reconcile with a follow-up GetProxyStatus.
var ErrRequestTimeout = errors.New("request timed out")

const clientDialTimeout = 2 * time.Second

// Client is the transient-surface side of the message protocol: one
// request, one response, bounded wait.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient builds a client for the daemon at baseURL (e.g.
// "http://127.0.0.1:8799"). timeout bounds each exchange; the default of
// 5s matches the UI's abandon deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: clientDialTimeout}).DialContext,
			},
		},
	}
}

// GetProxyStatus reads the confirmed toggle state from the daemon.
func (c *Client) GetProxyStatus(ctx context.Context) (models.StatusResponse, error) {
	var out models.StatusResponse
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}

// ToggleProxy asks the daemon to switch modes. On ErrRequestTimeout the
// exchange is discarded client-side and the caller must treat the last
// confirmed state as current until it reconciles.
func (c *Client) ToggleProxy(ctx context.Context, enabled bool) (models.ToggleResponse, error) {
	var out models.ToggleResponse
	body, err := json.Marshal(models.TogglePayload{Enabled: enabled})
	if err != nil {
		return out, fmt.Errorf("failed to encode toggle payload: %w", err)
	}
	err = c.do(ctx, http.MethodPost, "/api/toggle", body, &out)
	return out, err
}

// CheckServerStatus asks the daemon for the remote endpoint's liveness.
func (c *Client) CheckServerStatus(ctx context.Context) (models.ServerStatusResponse, error) {
	var out models.ServerStatusResponse
	err := c.do(ctx, http.MethodGet, "/api/server-status", nil, &out)
	return out, err
}

// Badge fetches the current badge projection for display mirroring.
func (c *Client) Badge(ctx context.Context) (models.Badge, error) {
	var out models.Badge
	err := c.do(ctx, http.MethodGet, "/api/badge", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: no reply from daemon for %s within %s", ErrRequestTimeout, path, c.timeout)
		}
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	// Business rejections (e.g. engine failures on toggle) still carry the
	// protocol response shape; decode those instead of failing.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadGateway {
		var errResp models.ErrorResponse
		if jsonErr := json.Unmarshal(raw, &errResp); jsonErr == nil && errResp.Message != "" {
			return fmt.Errorf("daemon rejected %s: %s", path, errResp.Message)
		}
		return fmt.Errorf("daemon rejected %s: %s", path, resp.Status)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
