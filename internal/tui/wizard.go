package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"

	"github.com/firefly-engineering/warden-ctl/internal/config"
)

// wizardStep identifies the current step.
type wizardStep int

const (
	stepSocket wizardStep = iota
	stepMounts
	stepLimits
	stepNetwork
	stepConfirm
)

// limitField identifies a field in the limits step.
type limitField int

const (
	limitDisk limitField = iota
	limitMemory
	limitFieldCount
)

// wizardModel drives the multi-step create wizard.
type wizardModel struct {
	step wizardStep

	// Step 1: socket
	socketInput textinput.Model

	// Step 2: bind mounts, one "src:dst[:mode]" entry at a time
	mountInput textinput.Model
	mounts     []config.BindMount

	// Step 3: limits
	limitCursor limitField
	diskInput   textinput.Model
	memoryInput textinput.Model

	// Step 4: network
	networkList list.Model

	// Collected values
	socketPath  string
	diskLimit   uint64
	memoryLimit uint64
	network     bool

	errMsg string

	width  int
	height int
}

// choiceItem implements list.Item for yes/no selection.
type choiceItem struct {
	label       string
	description string
	value       bool
}

func (c choiceItem) Title() string       { return c.label }
func (c choiceItem) Description() string { return c.description }
func (c choiceItem) FilterValue() string { return c.label }

func newWizardModel(defaultSocket string) wizardModel {
	si := textinput.New()
	si.Placeholder = config.DefaultSocketPath
	si.SetValue(defaultSocket)
	si.Focus()
	si.CharLimit = 256
	si.Width = 60

	mi := textinput.New()
	mi.Placeholder = "/host/path:/container/path"
	mi.CharLimit = 512
	mi.Width = 60
	mi.ShowSuggestions = true

	di := textinput.New()
	di.Placeholder = "1G"
	di.CharLimit = 32
	di.Width = 20

	memi := textinput.New()
	memi.Placeholder = "256M"
	memi.CharLimit = 32
	memi.Width = 20

	return wizardModel{
		step:        stepSocket,
		socketInput: si,
		mountInput:  mi,
		diskInput:   di,
		memoryInput: memi,
		networkList: newNetworkList(),
	}
}

func newNetworkList() list.Model {
	items := []list.Item{
		choiceItem{label: "yes", description: "Map a primary and a console port", value: true},
		choiceItem{label: "no", description: "No network ports", value: false},
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 60, 10)
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

func (w *wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update processes a message and returns (done, request, cmd).
// done=true with a non-nil request means the wizard completed.
// done=true with a nil request means it was cancelled.
func (w *wizardModel) Update(msg tea.Msg) (bool, *config.CreateRequest, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC:
			return true, nil, nil
		case tea.KeyEsc:
			return w.handleBack()
		}
	}

	switch w.step {
	case stepSocket:
		return w.updateSocket(msg)
	case stepMounts:
		return w.updateMounts(msg)
	case stepLimits:
		return w.updateLimits(msg)
	case stepNetwork:
		return w.updateNetwork(msg)
	case stepConfirm:
		return w.updateConfirm(msg)
	}

	return false, nil, nil
}

func (w *wizardModel) handleBack() (bool, *config.CreateRequest, tea.Cmd) {
	w.errMsg = ""
	switch w.step {
	case stepSocket:
		// Esc at first step cancels wizard
		return true, nil, nil
	case stepMounts:
		w.step = stepSocket
		w.mountInput.Blur()
		w.socketInput.Focus()
		return false, nil, textinput.Blink
	case stepLimits:
		w.step = stepMounts
		w.diskInput.Blur()
		w.memoryInput.Blur()
		w.mountInput.Focus()
		return false, nil, textinput.Blink
	case stepNetwork:
		w.step = stepLimits
		return false, nil, w.focusLimitField()
	case stepConfirm:
		w.step = stepNetwork
		return false, nil, nil
	}
	return false, nil, nil
}

func (w *wizardModel) updateSocket(msg tea.Msg) (bool, *config.CreateRequest, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		path := strings.TrimSpace(w.socketInput.Value())
		if path == "" {
			return false, nil, nil
		}
		w.socketPath = path
		w.step = stepMounts
		w.socketInput.Blur()
		w.mountInput.Focus()
		return false, nil, textinput.Blink
	}

	var cmd tea.Cmd
	w.socketInput, cmd = w.socketInput.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) updateMounts(msg tea.Msg) (bool, *config.CreateRequest, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			entry := strings.TrimSpace(w.mountInput.Value())
			if entry == "" {
				// Empty entry finishes the list
				w.errMsg = ""
				w.step = stepLimits
				w.mountInput.Blur()
				return false, nil, w.focusLimitField()
			}
			mount, err := parseMount(entry)
			if err != nil {
				w.errMsg = err.Error()
				return false, nil, nil
			}
			w.errMsg = ""
			w.mounts = append(w.mounts, mount)
			w.mountInput.SetValue("")
			return false, nil, nil
		case tea.KeyCtrlR:
			if len(w.mounts) > 0 {
				w.mounts = w.mounts[:len(w.mounts)-1]
			}
			return false, nil, nil
		}
	}

	var cmd tea.Cmd
	w.mountInput, cmd = w.mountInput.Update(msg)

	w.updateMountSuggestions()

	return false, nil, cmd
}

func (w *wizardModel) limitInput(field limitField) *textinput.Model {
	if field == limitMemory {
		return &w.memoryInput
	}
	return &w.diskInput
}

func (w *wizardModel) focusLimitField() tea.Cmd {
	w.diskInput.Blur()
	w.memoryInput.Blur()
	w.limitInput(w.limitCursor).Focus()
	return textinput.Blink
}

func (w *wizardModel) updateLimits(msg tea.Msg) (bool, *config.CreateRequest, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			disk, err := ParseSize(w.diskInput.Value())
			if err != nil {
				w.errMsg = "disk limit: " + err.Error()
				w.limitCursor = limitDisk
				return false, nil, w.focusLimitField()
			}
			memory, err := ParseSize(w.memoryInput.Value())
			if err != nil {
				w.errMsg = "memory limit: " + err.Error()
				w.limitCursor = limitMemory
				return false, nil, w.focusLimitField()
			}
			w.errMsg = ""
			w.diskLimit = disk
			w.memoryLimit = memory
			w.diskInput.Blur()
			w.memoryInput.Blur()
			w.step = stepNetwork
			return false, nil, nil
		case tea.KeyTab, tea.KeyDown:
			w.limitCursor = (w.limitCursor + 1) % limitFieldCount
			return false, nil, w.focusLimitField()
		case tea.KeyShiftTab, tea.KeyUp:
			w.limitCursor = (w.limitCursor - 1 + limitFieldCount) % limitFieldCount
			return false, nil, w.focusLimitField()
		}
	}

	ti := w.limitInput(w.limitCursor)
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) updateNetwork(msg tea.Msg) (bool, *config.CreateRequest, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
		if item, ok := w.networkList.SelectedItem().(choiceItem); ok {
			w.network = item.value
			w.step = stepConfirm
		}
		return false, nil, nil
	}

	var cmd tea.Cmd
	w.networkList, cmd = w.networkList.Update(msg)
	return false, nil, cmd
}

func (w *wizardModel) updateConfirm(msg tea.Msg) (bool, *config.CreateRequest, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter", "y":
			mounts := make([]config.BindMount, len(w.mounts))
			copy(mounts, w.mounts)
			return true, &config.CreateRequest{
				SocketPath:  w.socketPath,
				BindMounts:  mounts,
				DiskLimit:   w.diskLimit,
				MemoryLimit: w.memoryLimit,
				Network:     w.network,
			}, nil
		case "n":
			// Restart wizard, keeping the socket as typed
			socket := w.socketPath
			*w = newWizardModel(socket)
			return false, nil, textinput.Blink
		}
	}
	return false, nil, nil
}

func (w *wizardModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Create Container"))
	b.WriteString("\n")
	b.WriteString(w.progressBar())
	b.WriteString("\n\n")

	switch w.step {
	case stepSocket:
		b.WriteString(labelStyle.Render("Warden socket:"))
		b.WriteString("\n")
		b.WriteString(w.socketInput.View())
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Path to the warden daemon's unix socket."))
	case stepMounts:
		b.WriteString(labelStyle.Render("Bind mounts:"))
		b.WriteString("\n")
		if len(w.mounts) == 0 {
			b.WriteString(dimStyle.Render("  (none)"))
			b.WriteString("\n")
		}
		for _, m := range w.mounts {
			fmt.Fprintf(&b, "  %s -> %s\n", valueStyle.Render(m.SrcPath), valueStyle.Render(m.DstPath))
		}
		b.WriteString("\n")
		b.WriteString(w.mountInput.View())
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("src:dst to add, Enter on empty to continue, Ctrl+R to remove last. Mounts are read-only."))
	case stepLimits:
		b.WriteString(labelStyle.Render("Resource limits:"))
		b.WriteString("\n\n")
		b.WriteString(w.renderLimit(limitDisk, "Disk", &w.diskInput))
		b.WriteString("\n")
		b.WriteString(w.renderLimit(limitMemory, "Memory", &w.memoryInput))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Sizes like 512M or 2G. Tab to switch, Enter to continue."))
	case stepNetwork:
		b.WriteString(labelStyle.Render("Network:"))
		b.WriteString("\n")
		b.WriteString(w.networkList.View())
	case stepConfirm:
		b.WriteString(labelStyle.Render("Confirm:"))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "  Socket:  %s\n", valueStyle.Render(w.socketPath))
		fmt.Fprintf(&b, "  Mounts:  %s\n", valueStyle.Render(fmt.Sprintf("%d", len(w.mounts))))
		for _, m := range w.mounts {
			fmt.Fprintf(&b, "           %s -> %s (ro)\n", m.SrcPath, m.DstPath)
		}
		fmt.Fprintf(&b, "  Disk:    %s\n", valueStyle.Render(units.BytesSize(float64(w.diskLimit))))
		fmt.Fprintf(&b, "  Memory:  %s\n", valueStyle.Render(units.BytesSize(float64(w.memoryLimit))))
		fmt.Fprintf(&b, "  Network: %s\n", valueStyle.Render(yesNo(w.network)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Enter to create, n to restart, Esc to go back."))
	}

	if w.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(w.errMsg))
	}

	return b.String()
}

func (w *wizardModel) progressBar() string {
	steps := []string{"Socket", "Mounts", "Limits", "Network", "Confirm"}

	var parts []string
	for i, name := range steps {
		label := fmt.Sprintf("%d. %s", i+1, name)
		if wizardStep(i) == w.step {
			parts = append(parts, selectedStyle.Render(label))
		} else {
			parts = append(parts, dimStyle.Render(label))
		}
	}

	return strings.Join(parts, dimStyle.Render(" > "))
}

func (w *wizardModel) renderLimit(field limitField, name string, ti *textinput.Model) string {
	cursor := " "
	if w.limitCursor == field {
		cursor = ">"
	}
	line := fmt.Sprintf("  %s %-7s %s", cursor, name+":", ti.View())
	if w.limitCursor == field {
		return selectedStyle.Render(line)
	}
	return line
}

// updateMountSuggestions completes directories for the source half of
// the mount entry.
func (w *wizardModel) updateMountSuggestions() {
	val := w.mountInput.Value()
	if val == "" || strings.Contains(val, ":") {
		w.mountInput.SetSuggestions(nil)
		return
	}

	// Expand ~ to home directory
	expanded := val
	if strings.HasPrefix(val, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = home + val[1:]
		}
	}

	dir := expanded
	prefix := ""

	info, err := os.Stat(expanded)
	if err != nil || !info.IsDir() {
		dir = filepath.Dir(expanded)
		prefix = filepath.Base(expanded)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.mountInput.SetSuggestions(nil)
		return
	}

	var suggestions []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			continue
		}
		full := filepath.Join(dir, name)
		if strings.HasPrefix(val, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				full = "~" + strings.TrimPrefix(full, home)
			}
		}
		suggestions = append(suggestions, full)
	}

	w.mountInput.SetSuggestions(suggestions)
}

// parseMount parses "src:dst" or "src:dst:mode". A leading ~ in src is
// expanded.
func parseMount(entry string) (config.BindMount, error) {
	parts := strings.Split(entry, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return config.BindMount{}, fmt.Errorf("mount must be src:dst or src:dst:mode (got %q)", entry)
	}

	m := config.BindMount{SrcPath: parts[0], DstPath: parts[1]}
	if len(parts) == 3 {
		m.Mode = parts[2]
	}
	if strings.HasPrefix(m.SrcPath, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			m.SrcPath = home + m.SrcPath[1:]
		}
	}
	if err := m.Validate(); err != nil {
		return config.BindMount{}, err
	}
	return m, nil
}

// ParseSize parses a size such as "512M", "2G" or a plain byte count.
// Suffixes are binary (1K = 1024).
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("size is required")
	}
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
