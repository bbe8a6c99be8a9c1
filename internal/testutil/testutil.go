package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firefly-engineering/warden-ctl/internal/app"
	"github.com/firefly-engineering/warden-ctl/internal/config"
)

// TestEnv holds the test environment
type TestEnv struct {
	T       *testing.T
	TmpDir  string
	Config  *config.ClientConfig
	Daemon  *FakeDaemon
	App     *app.App
	cleanup func()
}

// NewTestEnv starts a fake daemon and installs an app.Default that talks
// to it with real warden clients. The previous default is restored when the
// test ends.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()
	daemon := NewFakeDaemon(t)

	cfg := config.DefaultClientConfig()
	cfg.SocketPath = daemon.SocketPath
	cfg.StateDir = filepath.Join(tmpDir, "state")
	cfg.CallTimeout = config.Duration{Duration: 5 * time.Second}
	cfg.RetryBackoff = config.Duration{}

	if err := os.MkdirAll(cfg.StateDir, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", cfg.StateDir, err)
	}

	testApp := app.New(app.WithConfig(cfg))

	originalDefault := app.Default
	app.SetDefault(testApp)

	env := &TestEnv{
		T:      t,
		TmpDir: tmpDir,
		Config: cfg,
		Daemon: daemon,
		App:    testApp,
		cleanup: func() {
			app.SetDefault(originalDefault)
		},
	}
	t.Cleanup(env.Cleanup)

	return env
}

// Cleanup restores the original app default
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
}

// CreateMountSource creates a host directory to bind mount
func (e *TestEnv) CreateMountSource(name string) string {
	e.T.Helper()

	path := filepath.Join(e.TmpDir, "mounts", name)
	if err := os.MkdirAll(path, 0755); err != nil {
		e.T.Fatalf("Failed to create mount source: %v", err)
	}
	return path
}

// CreatePayload returns a create payload for the env's daemon as JSON
func (e *TestEnv) CreatePayload(mounts []config.BindMount, disk, memory uint64, network bool) string {
	e.T.Helper()

	if mounts == nil {
		mounts = []config.BindMount{}
	}
	data, err := json.Marshal(config.CreateRequest{
		SocketPath:  e.Daemon.SocketPath,
		BindMounts:  mounts,
		DiskLimit:   disk,
		MemoryLimit: memory,
		Network:     network,
	})
	if err != nil {
		e.T.Fatalf("Failed to marshal payload: %v", err)
	}
	return string(data)
}
