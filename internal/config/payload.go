package config

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/warden-ctl/internal/protocol"
)

// BindMount is one mount as the caller describes it
type BindMount struct {
	SrcPath string `json:"src_path" yaml:"src_path"`
	DstPath string `json:"dst_path" yaml:"dst_path"`
	Mode    string `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// Validate checks that the BindMount is valid.
func (m *BindMount) Validate() error {
	if m.SrcPath == "" {
		return fmt.Errorf("src_path is required")
	}
	if m.DstPath == "" {
		return fmt.Errorf("dst_path is required")
	}
	if _, err := protocol.ParseBindMountMode(m.Mode); err != nil {
		return err
	}
	return nil
}

// ResolveSource returns the absolute host path of the mount source. With
// a mountRoot, the source is resolved inside it and cannot escape through
// ".." or symlinks; without one, relative sources are made absolute
// against the working directory.
func (m *BindMount) ResolveSource(mountRoot string) (string, error) {
	if mountRoot != "" {
		resolved, err := securejoin.SecureJoin(mountRoot, m.SrcPath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %q under %q: %w", m.SrcPath, mountRoot, err)
		}
		return resolved, nil
	}

	resolved, err := filepath.Abs(m.SrcPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", m.SrcPath, err)
	}
	return resolved, nil
}

// ResolveDestination returns the cleaned absolute path inside the container.
func (m *BindMount) ResolveDestination() string {
	return path.Clean("/" + m.DstPath)
}

// CreateRequest is the payload read by the create command
type CreateRequest struct {
	SocketPath  string      `json:"warden_socket_path"`
	BindMounts  []BindMount `json:"bind_mounts"`
	DiskLimit   uint64      `json:"disk_limit"`
	MemoryLimit uint64      `json:"memory_limit"`
	Network     bool        `json:"network"`
}

// Validate checks that the CreateRequest is valid.
func (r *CreateRequest) Validate() error {
	if r.SocketPath == "" {
		return fmt.Errorf("warden_socket_path is required")
	}
	for i := range r.BindMounts {
		if err := r.BindMounts[i].Validate(); err != nil {
			return fmt.Errorf("bind_mounts[%d]: %w", i, err)
		}
	}
	return nil
}

// rawCreateRequest uses pointers so missing keys can be told apart from
// zero values.
type rawCreateRequest struct {
	SocketPath  *string      `json:"warden_socket_path"`
	BindMounts  *[]BindMount `json:"bind_mounts"`
	DiskLimit   *uint64      `json:"disk_limit"`
	MemoryLimit *uint64      `json:"memory_limit"`
	Network     *bool        `json:"network"`
}

// ParseCreateRequest reads a single JSON object from r. Every key is
// required.
func ParseCreateRequest(r io.Reader) (*CreateRequest, error) {
	var raw rawCreateRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse create request: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to parse create request: trailing data after JSON object")
	}

	missing := func(key string) error {
		return fmt.Errorf("create request is missing required key %q", key)
	}
	switch {
	case raw.SocketPath == nil:
		return nil, missing("warden_socket_path")
	case raw.BindMounts == nil:
		return nil, missing("bind_mounts")
	case raw.DiskLimit == nil:
		return nil, missing("disk_limit")
	case raw.MemoryLimit == nil:
		return nil, missing("memory_limit")
	case raw.Network == nil:
		return nil, missing("network")
	}

	req := &CreateRequest{
		SocketPath:  *raw.SocketPath,
		BindMounts:  *raw.BindMounts,
		DiskLimit:   *raw.DiskLimit,
		MemoryLimit: *raw.MemoryLimit,
		Network:     *raw.Network,
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid create request: %w", err)
	}
	return req, nil
}
