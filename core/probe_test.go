package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

func TestHealthProbeClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantHealth models.ServerHealth
	}{
		{"ok", http.StatusOK, models.HealthOnline},
		{"no content", http.StatusNoContent, models.HealthOnline},
		{"not found", http.StatusNotFound, models.HealthOffline},
		{"server error", http.StatusInternalServerError, models.HealthOffline},
		{"unavailable", http.StatusServiceUnavailable, models.HealthOffline},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/pqc-info" {
					t.Errorf("probe hit %s, want /pqc-info", r.URL.Path)
				}
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			probe := NewHealthProbe(srv.URL, "/pqc-info", 2*time.Second)
			got := probe.Check(context.Background())
			if got.Health != tc.wantHealth {
				t.Errorf("health = %v, want %v", got.Health, tc.wantHealth)
			}
			if got.StatusCode != tc.status {
				t.Errorf("status code = %d, want %d", got.StatusCode, tc.status)
			}
		})
	}
}

func TestHealthProbeUnreachableIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	probe := NewHealthProbe(url, "/pqc-info", time.Second)

	start := time.Now()
	got := probe.Check(context.Background())
	if got.Health != models.HealthOffline {
		t.Errorf("health = %v, want offline", got.Health)
	}
	if got.StatusCode != 0 {
		t.Errorf("status code = %d, want 0 for transport failure", got.StatusCode)
	}
	if got.Detail == "" {
		t.Error("transport failure reported no detail")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("check took %s, want bounded by the probe timeout", elapsed)
	}
}

func TestHealthProbeSlowServerIsOffline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	probe := NewHealthProbe(srv.URL, "/pqc-info", 100*time.Millisecond)
	got := probe.Check(context.Background())
	if got.Health != models.HealthOffline {
		t.Errorf("health = %v, want offline after timeout", got.Health)
	}
}
