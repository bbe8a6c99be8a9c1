package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/firefly-engineering/warden-ctl/internal/config"
)

func TestLoadValidCreateRequest(t *testing.T) {
	req, err := ValidCreateRequest()
	if err != nil {
		t.Fatalf("ValidCreateRequest() error: %v", err)
	}

	if req.SocketPath != "/tmp/warden.sock" {
		t.Errorf("SocketPath = %q, want %q", req.SocketPath, "/tmp/warden.sock")
	}
	if len(req.BindMounts) != 2 {
		t.Errorf("BindMounts len = %d, want 2", len(req.BindMounts))
	}
	if req.DiskLimit != 1<<30 || req.MemoryLimit != 256<<20 {
		t.Errorf("limits = %d/%d", req.DiskLimit, req.MemoryLimit)
	}
	if !req.Network {
		t.Error("Network should be true")
	}
}

func TestLoadInvalidCreateRequest(t *testing.T) {
	_, err := InvalidCreateRequest()
	if err == nil {
		t.Fatal("InvalidCreateRequest() should fail")
	}
	if !strings.Contains(err.Error(), "memory_limit") {
		t.Errorf("error = %v, want mention of memory_limit", err)
	}
}

func TestClientConfigFixtures(t *testing.T) {
	for _, name := range []string{"client_config.toml", "client_config.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.LoadClientConfig(WriteFixture(t, name))
			if err != nil {
				t.Fatalf("LoadClientConfig error: %v", err)
			}
			if cfg.SocketPath != "/run/warden/warden.sock" {
				t.Errorf("SocketPath = %q", cfg.SocketPath)
			}
			if cfg.CallTimeout.Duration != 45*time.Second {
				t.Errorf("CallTimeout = %v", cfg.CallTimeout)
			}
			if cfg.MaxRetries != 3 {
				t.Errorf("MaxRetries = %d", cfg.MaxRetries)
			}
			if cfg.MountRoot != "/srv/warden-mounts" {
				t.Errorf("MountRoot = %q", cfg.MountRoot)
			}
		})
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("nonexistent.json")
	if err == nil {
		t.Error("LoadFixture should error for nonexistent file")
	}
}
