package protocol

import "fmt"

// Type tags a request or response kind on the wire.
type Type string

const (
	TypeError       Type = "error"
	TypePing        Type = "ping"
	TypeCreate      Type = "create"
	TypeDestroy     Type = "destroy"
	TypeInfo        Type = "info"
	TypeRun         Type = "run"
	TypeSpawn       Type = "spawn"
	TypeLimitMemory Type = "limit_memory"
	TypeLimitDisk   Type = "limit_disk"
	TypeNetIn       Type = "net_in"
)

// Request is implemented by every message the client sends.
type Request interface {
	Type() Type
	isRequest()
}

// Response is implemented by every message the daemon answers with.
type Response interface {
	Type() Type
	isResponse()
}

// BindMountMode is the access mode of a bind mount.
type BindMountMode uint8

const (
	BindMountModeRO BindMountMode = 0
	BindMountModeRW BindMountMode = 1
)

func (m BindMountMode) String() string {
	switch m {
	case BindMountModeRO:
		return "ro"
	case BindMountModeRW:
		return "rw"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// MarshalText encodes the mode as "ro" or "rw".
func (m BindMountMode) MarshalText() ([]byte, error) {
	switch m {
	case BindMountModeRO, BindMountModeRW:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("invalid bind mount mode %d", uint8(m))
}

// UnmarshalText decodes "ro" or "rw".
func (m *BindMountMode) UnmarshalText(text []byte) error {
	mode, err := ParseBindMountMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseBindMountMode parses "ro" or "rw". An empty string means read-only.
func ParseBindMountMode(s string) (BindMountMode, error) {
	switch s {
	case "ro", "":
		return BindMountModeRO, nil
	case "rw":
		return BindMountModeRW, nil
	}
	return 0, fmt.Errorf("invalid bind mount mode %q (must be ro or rw)", s)
}

// BindMount exposes SrcPath on the host at DstPath inside the container.
type BindMount struct {
	SrcPath string        `json:"src_path"`
	DstPath string        `json:"dst_path"`
	Mode    BindMountMode `json:"mode"`
}

// ResourceLimits are posix rlimits applied to a run or spawn job.
// Zero means unset.
type ResourceLimits struct {
	Nofile uint64 `json:"nofile,omitempty"`
	Nproc  uint64 `json:"nproc,omitempty"`
}

// Requests

type PingRequest struct{}

type CreateRequest struct {
	BindMounts []BindMount `json:"bind_mounts,omitempty"`
	Handle     string      `json:"handle,omitempty"`
}

type DestroyRequest struct {
	Handle string `json:"handle"`
}

type InfoRequest struct {
	Handle string `json:"handle"`
}

type RunRequest struct {
	Handle     string          `json:"handle"`
	Script     string          `json:"script"`
	Privileged bool            `json:"privileged"`
	Rlimits    *ResourceLimits `json:"rlimits,omitempty"`
}

type SpawnRequest struct {
	Handle     string          `json:"handle"`
	Script     string          `json:"script"`
	Privileged bool            `json:"privileged"`
	Rlimits    *ResourceLimits `json:"rlimits,omitempty"`
}

type LimitMemoryRequest struct {
	Handle       string `json:"handle"`
	LimitInBytes uint64 `json:"limit_in_bytes"`
}

type LimitDiskRequest struct {
	Handle string `json:"handle"`
	Byte   uint64 `json:"byte"`
}

// NetInRequest maps a host port to a container port. Zero ports let the
// daemon pick.
type NetInRequest struct {
	Handle        string `json:"handle"`
	HostPort      uint32 `json:"host_port,omitempty"`
	ContainerPort uint32 `json:"container_port,omitempty"`
}

func (*PingRequest) Type() Type        { return TypePing }
func (*CreateRequest) Type() Type      { return TypeCreate }
func (*DestroyRequest) Type() Type     { return TypeDestroy }
func (*InfoRequest) Type() Type        { return TypeInfo }
func (*RunRequest) Type() Type         { return TypeRun }
func (*SpawnRequest) Type() Type       { return TypeSpawn }
func (*LimitMemoryRequest) Type() Type { return TypeLimitMemory }
func (*LimitDiskRequest) Type() Type   { return TypeLimitDisk }
func (*NetInRequest) Type() Type       { return TypeNetIn }

func (*PingRequest) isRequest()        {}
func (*CreateRequest) isRequest()      {}
func (*DestroyRequest) isRequest()     {}
func (*InfoRequest) isRequest()        {}
func (*RunRequest) isRequest()         {}
func (*SpawnRequest) isRequest()       {}
func (*LimitMemoryRequest) isRequest() {}
func (*LimitDiskRequest) isRequest()   {}
func (*NetInRequest) isRequest()       {}

// Responses

type ErrorResponse struct {
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

type PingResponse struct{}

type CreateResponse struct {
	Handle string `json:"handle"`
}

type DestroyResponse struct{}

type InfoResponse struct {
	State         string `json:"state,omitempty"`
	HostIP        string `json:"host_ip,omitempty"`
	ContainerIP   string `json:"container_ip,omitempty"`
	ContainerPath string `json:"container_path,omitempty"`
}

type RunResponse struct {
	ExitStatus int    `json:"exit_status"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
}

type SpawnResponse struct {
	JobID uint32 `json:"job_id"`
}

type LimitMemoryResponse struct {
	LimitInBytes uint64 `json:"limit_in_bytes"`
}

type LimitDiskResponse struct {
	Byte uint64 `json:"byte"`
}

type NetInResponse struct {
	HostPort      uint32 `json:"host_port"`
	ContainerPort uint32 `json:"container_port"`
}

func (*ErrorResponse) Type() Type       { return TypeError }
func (*PingResponse) Type() Type        { return TypePing }
func (*CreateResponse) Type() Type      { return TypeCreate }
func (*DestroyResponse) Type() Type     { return TypeDestroy }
func (*InfoResponse) Type() Type        { return TypeInfo }
func (*RunResponse) Type() Type         { return TypeRun }
func (*SpawnResponse) Type() Type       { return TypeSpawn }
func (*LimitMemoryResponse) Type() Type { return TypeLimitMemory }
func (*LimitDiskResponse) Type() Type   { return TypeLimitDisk }
func (*NetInResponse) Type() Type       { return TypeNetIn }

func (*ErrorResponse) isResponse()       {}
func (*PingResponse) isResponse()        {}
func (*CreateResponse) isResponse()      {}
func (*DestroyResponse) isResponse()     {}
func (*InfoResponse) isResponse()        {}
func (*RunResponse) isResponse()         {}
func (*SpawnResponse) isResponse()       {}
func (*LimitMemoryResponse) isResponse() {}
func (*LimitDiskResponse) isResponse()   {}
func (*NetInResponse) isResponse()       {}

// NewRequest returns an empty request of the given type.
func NewRequest(t Type) (Request, error) {
	switch t {
	case TypePing:
		return &PingRequest{}, nil
	case TypeCreate:
		return &CreateRequest{}, nil
	case TypeDestroy:
		return &DestroyRequest{}, nil
	case TypeInfo:
		return &InfoRequest{}, nil
	case TypeRun:
		return &RunRequest{}, nil
	case TypeSpawn:
		return &SpawnRequest{}, nil
	case TypeLimitMemory:
		return &LimitMemoryRequest{}, nil
	case TypeLimitDisk:
		return &LimitDiskRequest{}, nil
	case TypeNetIn:
		return &NetInRequest{}, nil
	}
	return nil, fmt.Errorf("unknown request type %q", t)
}

// NewResponse returns an empty response of the given type.
func NewResponse(t Type) (Response, error) {
	switch t {
	case TypeError:
		return &ErrorResponse{}, nil
	case TypePing:
		return &PingResponse{}, nil
	case TypeCreate:
		return &CreateResponse{}, nil
	case TypeDestroy:
		return &DestroyResponse{}, nil
	case TypeInfo:
		return &InfoResponse{}, nil
	case TypeRun:
		return &RunResponse{}, nil
	case TypeSpawn:
		return &SpawnResponse{}, nil
	case TypeLimitMemory:
		return &LimitMemoryResponse{}, nil
	case TypeLimitDisk:
		return &LimitDiskResponse{}, nil
	case TypeNetIn:
		return &NetInResponse{}, nil
	}
	return nil, fmt.Errorf("unknown response type %q", t)
}
