// Package tui provides terminal user interface components for warden-ctl.
//
// This package uses the Bubble Tea framework for the interactive create
// wizard and lipgloss for styled command output.
//
// # Create Wizard
//
// RunWizard walks through the fields of a create payload and returns it:
//
//	req, err := tui.RunWizard(cfg.SocketPath)
//	if errors.Is(err, tui.ErrCancelled) {
//	    // user quit
//	}
//
// Steps: socket, bind mounts (src:dst[:mode], one per line), disk and
// memory limits (sizes like 512M or 2G), network (yes/no), confirm. Esc
// goes back a step; Esc on the first step or Ctrl+C cancels.
//
// # Rendering
//
// RenderInfo and RenderEvents format info responses and event logs.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
