// Package logging provides logging utilities for warden-ctl.
//
// Two kinds of output are kept apart:
//   - Debug logging: structured logs via slog, always on stderr
//   - User output: short status lines for humans
//
// # Debug Logging
//
//	logging.Debug("warden call", "type", "create", "conn", "app")
//	logging.Warn("connection lost, retrying", "attempt", 2)
//
// --verbose enables the debug level and --json switches to the JSON handler.
//
// # User Output
//
//	logging.UserInfo("Destroying container %s...", handle)
//	logging.UserSuccess("Container %s destroyed", handle)
//	logging.UserWarning("mount %s requested rw, mounting read-only", src)
//	logging.UserError("create failed: %v", err)
//
// All user output goes to stderr. Commands that print machine readable
// results (create, net, info --output json) own stdout exclusively.
package logging
