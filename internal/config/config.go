package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath     = "/etc/warden-ctl/config.toml"
	DefaultSocketPath     = "/tmp/warden.sock"
	DefaultStateDir       = "/var/lib/warden-ctl"
	DefaultCallTimeout    = 60 * time.Second
	DefaultConnectTimeout = 5 * time.Second
	DefaultMaxRetries     = 5
	DefaultRetryBackoff   = 100 * time.Millisecond

	// MaxRetriesLimit caps the configurable retry count.
	MaxRetriesLimit = 100
)

// Duration is a time.Duration written as a Go duration string ("30s") in
// config files.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ClientConfig holds settings for talking to the daemon.
type ClientConfig struct {
	// SocketPath is the daemon socket used by handle-based commands.
	// create takes its socket from the payload instead.
	SocketPath string `toml:"socket_path" yaml:"socket_path"`

	// CallTimeout bounds one round-trip. Zero disables the timeout.
	CallTimeout Duration `toml:"call_timeout" yaml:"call_timeout"`

	// ConnectTimeout bounds dialing the socket. Zero waits for the
	// caller's context only.
	ConnectTimeout Duration `toml:"connect_timeout" yaml:"connect_timeout"`

	// MaxRetries is how many times a request that hit a connection error
	// is retried on a fresh connection.
	MaxRetries int `toml:"max_retries" yaml:"max_retries"`

	// RetryBackoff is the wait before the first retry; it doubles per retry.
	RetryBackoff Duration `toml:"retry_backoff" yaml:"retry_backoff"`

	// StateDir holds the per-container event logs.
	StateDir string `toml:"state_dir" yaml:"state_dir"`

	// MountRoot, when set, confines bind mount sources: every source is
	// resolved inside this directory.
	MountRoot string `toml:"mount_root" yaml:"mount_root"`
}

// DefaultClientConfig returns the configuration used when no file exists.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		SocketPath:     DefaultSocketPath,
		CallTimeout:    Duration{DefaultCallTimeout},
		ConnectTimeout: Duration{DefaultConnectTimeout},
		MaxRetries:     DefaultMaxRetries,
		RetryBackoff:   Duration{DefaultRetryBackoff},
		StateDir:       DefaultStateDir,
	}
}

// Validate checks that the ClientConfig is valid.
func (c *ClientConfig) Validate() error {
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path is required")
	}
	if c.CallTimeout.Duration < 0 {
		return fmt.Errorf("call_timeout must not be negative (got %s)", c.CallTimeout)
	}
	if c.ConnectTimeout.Duration < 0 {
		return fmt.Errorf("connect_timeout must not be negative (got %s)", c.ConnectTimeout)
	}
	if c.MaxRetries < 0 || c.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("max_retries must be between 0 and %d (got %d)", MaxRetriesLimit, c.MaxRetries)
	}
	if c.RetryBackoff.Duration < 0 {
		return fmt.Errorf("retry_backoff must not be negative (got %s)", c.RetryBackoff)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if c.MountRoot != "" && !filepath.IsAbs(c.MountRoot) {
		return fmt.Errorf("mount_root must be an absolute path (got %q)", c.MountRoot)
	}
	return nil
}

// LoadClientConfig reads a TOML (.toml) or YAML (.yaml, .yml) config file.
// Keys missing from the file keep their defaults. A file that does not
// exist yields the defaults.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read client config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse client config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse client config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file type %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	return cfg, nil
}

// Paths holds the directories derived from the state dir
type Paths struct {
	StateDir      string
	ContainersDir string
}

// NewPaths returns the paths rooted at stateDir
func NewPaths(stateDir string) *Paths {
	return &Paths{
		StateDir:      stateDir,
		ContainersDir: filepath.Join(stateDir, "containers"),
	}
}

// SafePath joins name+suffix onto baseDir and refuses names that would
// escape it. Handles come from the daemon and are treated as untrusted.
func SafePath(baseDir, name, suffix string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name cannot be empty")
	}

	if filepath.IsAbs(name) {
		return "", fmt.Errorf("name cannot be an absolute path")
	}

	if filepath.Dir(name) != "." || name == "." || name == ".." {
		return "", fmt.Errorf("name cannot contain path separators")
	}

	path := filepath.Join(baseDir, name+suffix)

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base directory: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	// Separator suffix stops /var/lib/x matching /var/lib/x-evil.
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory")
	}

	return path, nil
}
