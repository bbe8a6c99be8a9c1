package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/firefly-engineering/warden-ctl/internal/audit"
	"github.com/firefly-engineering/warden-ctl/internal/protocol"
)

// RenderInfo formats an info response for the terminal.
func RenderInfo(handle string, info *protocol.InfoResponse) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Container " + handle))
	b.WriteString("\n")

	row := func(label, value string) {
		if value == "" {
			value = dimStyle.Render("-")
		} else {
			value = valueStyle.Render(value)
		}
		fmt.Fprintf(&b, "  %-14s %s\n", label+":", value)
	}
	row("State", info.State)
	row("Host IP", info.HostIP)
	row("Container IP", info.ContainerIP)
	row("Path", info.ContainerPath)

	return b.String()
}

// RenderEvents formats an event log, oldest first, with times relative
// to now.
func RenderEvents(handle string, events []audit.Event, now time.Time) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Events for " + handle))
	b.WriteString("\n")

	if len(events) == 0 {
		b.WriteString(dimStyle.Render("  No events recorded."))
		b.WriteString("\n")
		return b.String()
	}

	for _, e := range events {
		when := humanize.RelTime(e.Timestamp, now, "ago", "from now")
		typ := string(e.Type)
		if e.Type == audit.EventError {
			typ = errorStyle.Render(fmt.Sprintf("%-8s", typ))
		} else {
			typ = valueStyle.Render(fmt.Sprintf("%-8s", typ))
		}
		fmt.Fprintf(&b, "  %s  %s  %s\n",
			dimStyle.Render(e.Timestamp.Format(time.RFC3339)), typ, e.Details)
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render("  "+when))
	}

	return b.String()
}
