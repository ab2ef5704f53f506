package core

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"
	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

// ServerStatus is the result of one liveness check. StatusCode is zero when
// no HTTP response was received at all.
type ServerStatus struct {
	Health     models.ServerHealth
	StatusCode int
	Detail     string
}

// Prober classifies the remote proxy endpoint as online or offline.
type Prober interface {
	Check(ctx context.Context) ServerStatus
}

const probeDialTimeout = 5 * time.Second

// HealthProbe issues a single bounded-time GET against the configured
// liveness endpoint. It classifies, never propagates transport errors.
type HealthProbe struct {
	url    string
	client *http.Client
}

// NewHealthProbe builds a probe for baseURL+path with the given overall
// request timeout.
func NewHealthProbe(baseURL, path string, timeout time.Duration) *HealthProbe {
	return &HealthProbe{
		url: baseURL + path,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: probeDialTimeout}).DialContext,
			},
		},
	}
}

// Check performs the liveness request. Any 2xx response is Online; network
// failure, timeout, or any other status is Offline.
func (p *HealthProbe) Check(ctx context.Context) ServerStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		logger.Error("HealthProbe: failed to build request for %s: %v", p.url, err)
		return ServerStatus{Health: models.HealthOffline, Detail: err.Error()}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		logger.Debug("HealthProbe: %s unreachable: %v", p.url, err)
		return ServerStatus{Health: models.HealthOffline, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		logger.Debug("HealthProbe: %s online (status %d)", p.url, resp.StatusCode)
		return ServerStatus{Health: models.HealthOnline, StatusCode: resp.StatusCode}
	}
	logger.Debug("HealthProbe: %s returned status %d, classifying offline", p.url, resp.StatusCode)
	return ServerStatus{Health: models.HealthOffline, StatusCode: resp.StatusCode, Detail: resp.Status}
}
