// Package config provides configuration types and loading for warden-ctl.
//
// # Client Configuration
//
// ClientConfig controls how the client talks to the daemon. It is read from
// a TOML or YAML file (picked by extension); missing keys keep their
// defaults and a missing file means all defaults:
//
//	# /etc/warden-ctl/config.toml
//	socket_path   = "/tmp/warden.sock"
//	call_timeout  = "60s"
//	max_retries   = 5
//	retry_backoff = "100ms"
//	state_dir     = "/var/lib/warden-ctl"
//	mount_root    = "/srv/warden-mounts"
//
// # Create Payload
//
// CreateRequest is the JSON document the create command reads from stdin:
//
//	{
//	  "warden_socket_path": "/tmp/warden.sock",
//	  "bind_mounts": [{"src_path": "/tmp/foo", "dst_path": "/bar", "mode": "ro"}],
//	  "disk_limit": 1073741824,
//	  "memory_limit": 268435456,
//	  "network": true
//	}
//
// ParseCreateRequest rejects a payload missing any of these keys.
//
// # State
//
// Paths derives the per-container directories from the state dir. SafePath
// keeps daemon-supplied handles from escaping them.
package config
