package container

import (
	"fmt"

	"github.com/firefly-engineering/warden-ctl/internal/config"
	werrors "github.com/firefly-engineering/warden-ctl/internal/errors"
	"github.com/firefly-engineering/warden-ctl/internal/logging"
	"github.com/firefly-engineering/warden-ctl/internal/protocol"
)

// normalizeMounts turns caller mounts into wire mounts with absolute
// paths. The mode is always read-only.
func normalizeMounts(mounts []config.BindMount, mountRoot string) ([]protocol.BindMount, error) {
	out := make([]protocol.BindMount, 0, len(mounts))
	for i := range mounts {
		m := &mounts[i]
		if err := m.Validate(); err != nil {
			return nil, werrors.InvalidArgument(fmt.Sprintf("bind mount %d: %v", i, err))
		}

		src, err := m.ResolveSource(mountRoot)
		if err != nil {
			return nil, werrors.InvalidArgument(fmt.Sprintf("bind mount %d: %v", i, err))
		}

		if mode, _ := protocol.ParseBindMountMode(m.Mode); mode != protocol.BindMountModeRO {
			logging.Warn("bind mount requested read-write, mounting read-only", "src", src, "dst", m.DstPath)
		}

		out = append(out, protocol.BindMount{
			SrcPath: src,
			DstPath: m.ResolveDestination(),
			Mode:    protocol.BindMountModeRO,
		})
	}
	return out, nil
}
