package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

func newDaemonStub(t *testing.T) (*httptest.Server, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mux
}

func TestClientGetProxyStatus(t *testing.T) {
	srv, mux := newDaemonStub(t)
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.StatusResponse{Enabled: true})
	})

	client := NewClient(srv.URL, time.Second)
	status, err := client.GetProxyStatus(context.Background())
	if err != nil {
		t.Fatalf("GetProxyStatus failed: %v", err)
	}
	if !status.Enabled {
		t.Error("status reports disabled, want enabled")
	}
}

func TestClientToggleProxySendsPayload(t *testing.T) {
	srv, mux := newDaemonStub(t)
	var received models.TogglePayload
	mux.HandleFunc("/api/toggle", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		enabled := received.Enabled
		json.NewEncoder(w).Encode(models.ToggleResponse{Success: true, Enabled: &enabled})
	})

	client := NewClient(srv.URL, time.Second)
	resp, err := client.ToggleProxy(context.Background(), true)
	if err != nil {
		t.Fatalf("ToggleProxy failed: %v", err)
	}
	if !received.Enabled {
		t.Error("daemon saw enabled=false, want true")
	}
	if !resp.Success || resp.Enabled == nil || !*resp.Enabled {
		t.Errorf("response = %+v, want success with enabled=true", resp)
	}
}

func TestClientToggleProxyEngineRejection(t *testing.T) {
	srv, mux := newDaemonStub(t)
	mux.HandleFunc("/api/toggle", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(models.ToggleResponse{Success: false, Error: "PermissionDenied"})
	})

	client := NewClient(srv.URL, time.Second)
	resp, err := client.ToggleProxy(context.Background(), true)
	if err != nil {
		t.Fatalf("engine rejection must decode, got error: %v", err)
	}
	if resp.Success {
		t.Error("rejection reported success")
	}
	if resp.Error != "PermissionDenied" {
		t.Errorf("error = %q, want PermissionDenied", resp.Error)
	}
}

func TestClientTimeoutIsErrRequestTimeout(t *testing.T) {
	srv, mux := newDaemonStub(t)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	mux.HandleFunc("/api/toggle", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	client := NewClient(srv.URL, 100*time.Millisecond)
	start := time.Now()
	_, err := client.ToggleProxy(context.Background(), true)
	if !errors.Is(err, ErrRequestTimeout) {
		t.Fatalf("error = %v, want ErrRequestTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("client waited %s past its deadline", elapsed)
	}
}

func TestClientDecodesDaemonError(t *testing.T) {
	srv, mux := newDaemonStub(t)
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse{Message: "storage unavailable"})
	})

	client := NewClient(srv.URL, time.Second)
	_, err := client.GetProxyStatus(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
	if !strings.Contains(err.Error(), "storage unavailable") {
		t.Errorf("error %q does not carry the daemon's message", err)
	}
}

func TestClientBadge(t *testing.T) {
	srv, mux := newDaemonStub(t)
	mux.HandleFunc("/api/badge", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Badge{Text: models.BadgeTextError, Color: models.BadgeColorRed})
	})

	client := NewClient(srv.URL, time.Second)
	badge, err := client.Badge(context.Background())
	if err != nil {
		t.Fatalf("Badge failed: %v", err)
	}
	if badge.Text != models.BadgeTextError || badge.Color != models.BadgeColorRed {
		t.Errorf("badge = %+v, want ERR/red", badge)
	}
}
