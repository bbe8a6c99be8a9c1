package tui

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/firefly-engineering/warden-ctl/internal/config"
)

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestParseMount(t *testing.T) {
	tests := []struct {
		entry   string
		want    config.BindMount
		wantErr bool
	}{
		{"/tmp/foo:/bar", config.BindMount{SrcPath: "/tmp/foo", DstPath: "/bar"}, false},
		{"/tmp/foo:/bar:ro", config.BindMount{SrcPath: "/tmp/foo", DstPath: "/bar", Mode: "ro"}, false},
		{"/tmp/foo:/bar:rw", config.BindMount{SrcPath: "/tmp/foo", DstPath: "/bar", Mode: "rw"}, false},
		{"/tmp/foo", config.BindMount{}, true},
		{"/a:/b:ro:extra", config.BindMount{}, true},
		{":/bar", config.BindMount{}, true},
		{"/tmp/foo:", config.BindMount{}, true},
		{"/tmp/foo:/bar:wx", config.BindMount{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			got, err := parseMount(tt.entry)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMount(%q) error = %v, wantErr %v", tt.entry, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseMount(%q) = %+v, want %+v", tt.entry, got, tt.want)
			}
		})
	}
}

func TestParseMount_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := parseMount("~/src:/src")
	if err != nil {
		t.Fatalf("parseMount failed: %v", err)
	}
	if got.SrcPath != home+"/src" {
		t.Errorf("SrcPath = %q, want %q", got.SrcPath, home+"/src")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"1K", 1024, false},
		{"256M", 256 << 20, false},
		{"256MiB", 256 << 20, false},
		{"2G", 2 << 30, false},
		{" 1g ", 1 << 30, false},
		{"0", 0, false},
		{"", 0, true},
		{"-1", 0, true},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestWizardStepTransitions(t *testing.T) {
	t.Run("socket prefilled and advances", func(t *testing.T) {
		w := newWizardModel("/tmp/warden.sock")
		if w.step != stepSocket {
			t.Fatalf("initial step = %v, want stepSocket", w.step)
		}
		if w.socketInput.Value() != "/tmp/warden.sock" {
			t.Errorf("socket input = %q, want prefilled", w.socketInput.Value())
		}

		done, req, _ := w.Update(enter())
		if done || req != nil {
			t.Error("should not be done after socket step")
		}
		if w.step != stepMounts {
			t.Errorf("step = %v, want stepMounts", w.step)
		}
		if w.socketPath != "/tmp/warden.sock" {
			t.Errorf("socketPath = %q", w.socketPath)
		}
	})

	t.Run("empty socket rejected", func(t *testing.T) {
		w := newWizardModel("")

		w.Update(enter())
		if w.step != stepSocket {
			t.Error("should stay on stepSocket with empty input")
		}
	})

	t.Run("mounts are collected until empty entry", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepMounts

		w.mountInput.SetValue("/tmp/foo:/bar")
		w.Update(enter())
		w.mountInput.SetValue("/tmp/baz:/qux:rw")
		w.Update(enter())

		if w.step != stepMounts {
			t.Fatalf("step = %v, want stepMounts", w.step)
		}
		if len(w.mounts) != 2 {
			t.Fatalf("mounts = %d, want 2", len(w.mounts))
		}
		if w.mountInput.Value() != "" {
			t.Error("mount input should be cleared after adding")
		}

		w.Update(enter())
		if w.step != stepLimits {
			t.Errorf("step = %v, want stepLimits", w.step)
		}
	})

	t.Run("invalid mount shows error", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepMounts
		w.mountInput.SetValue("nodst")

		w.Update(enter())
		if w.step != stepMounts {
			t.Error("should stay on stepMounts")
		}
		if len(w.mounts) != 0 {
			t.Error("invalid mount should not be added")
		}
		if w.errMsg == "" {
			t.Error("error message should be set")
		}
		if !strings.Contains(w.View(), "src:dst") {
			t.Error("view should show the error")
		}
	})

	t.Run("ctrl+r removes last mount", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepMounts
		w.mounts = []config.BindMount{{SrcPath: "/a", DstPath: "/a"}, {SrcPath: "/b", DstPath: "/b"}}

		w.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
		if len(w.mounts) != 1 || w.mounts[0].SrcPath != "/a" {
			t.Errorf("mounts = %+v, want only /a", w.mounts)
		}
	})

	t.Run("limits parsed", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepLimits
		w.diskInput.SetValue("1G")
		w.memoryInput.SetValue("256M")

		w.Update(enter())
		if w.step != stepNetwork {
			t.Fatalf("step = %v, want stepNetwork (err %q)", w.step, w.errMsg)
		}
		if w.diskLimit != 1<<30 {
			t.Errorf("diskLimit = %d", w.diskLimit)
		}
		if w.memoryLimit != 256<<20 {
			t.Errorf("memoryLimit = %d", w.memoryLimit)
		}
	})

	t.Run("bad limit keeps step and focuses field", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepLimits
		w.diskInput.SetValue("1G")
		w.memoryInput.SetValue("plenty")

		w.Update(enter())
		if w.step != stepLimits {
			t.Error("should stay on stepLimits")
		}
		if w.limitCursor != limitMemory {
			t.Errorf("cursor = %v, want limitMemory", w.limitCursor)
		}
		if !strings.HasPrefix(w.errMsg, "memory limit") {
			t.Errorf("errMsg = %q", w.errMsg)
		}
	})

	t.Run("tab switches limit field", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepLimits

		w.Update(tea.KeyMsg{Type: tea.KeyTab})
		if w.limitCursor != limitMemory {
			t.Errorf("cursor = %v, want limitMemory", w.limitCursor)
		}
		w.Update(tea.KeyMsg{Type: tea.KeyTab})
		if w.limitCursor != limitDisk {
			t.Errorf("cursor = %v, want limitDisk", w.limitCursor)
		}
	})

	t.Run("network choice", func(t *testing.T) {
		for _, tt := range []struct {
			index int
			want  bool
		}{{0, true}, {1, false}} {
			w := newWizardModel("")
			w.step = stepNetwork
			w.network = !tt.want
			w.networkList.Select(tt.index)

			w.Update(enter())
			if w.step != stepConfirm {
				t.Fatalf("step = %v, want stepConfirm", w.step)
			}
			if w.network != tt.want {
				t.Errorf("network = %v, want %v", w.network, tt.want)
			}
		}
	})
}

func TestWizardConfirm(t *testing.T) {
	t.Run("enter confirms and produces CreateRequest", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepConfirm
		w.socketPath = "/tmp/warden.sock"
		w.mounts = []config.BindMount{{SrcPath: "/tmp/foo", DstPath: "/bar"}}
		w.diskLimit = 100
		w.memoryLimit = 200
		w.network = true

		done, req, _ := w.Update(enter())
		if !done {
			t.Error("should be done after confirm")
		}
		if req == nil {
			t.Fatal("request should not be nil")
		}
		if req.SocketPath != "/tmp/warden.sock" {
			t.Errorf("SocketPath = %q", req.SocketPath)
		}
		if len(req.BindMounts) != 1 || req.BindMounts[0].DstPath != "/bar" {
			t.Errorf("BindMounts = %+v", req.BindMounts)
		}
		if req.DiskLimit != 100 || req.MemoryLimit != 200 || !req.Network {
			t.Errorf("request = %+v", req)
		}
		if err := req.Validate(); err != nil {
			t.Errorf("wizard output should validate: %v", err)
		}
	})

	t.Run("y confirms", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepConfirm
		w.socketPath = "/s"

		done, req, _ := w.Update(runes("y"))
		if !done || req == nil {
			t.Error("y should confirm")
		}
	})

	t.Run("n restarts wizard", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepConfirm
		w.socketPath = "/tmp/warden.sock"
		w.mounts = []config.BindMount{{SrcPath: "/tmp/foo", DstPath: "/bar"}}

		done, req, _ := w.Update(runes("n"))
		if done || req != nil {
			t.Error("should not be done after restart")
		}
		if w.step != stepSocket {
			t.Errorf("step = %v, want stepSocket", w.step)
		}
		if len(w.mounts) != 0 {
			t.Error("mounts should be cleared")
		}
		if w.socketInput.Value() != "/tmp/warden.sock" {
			t.Errorf("socket = %q, want kept", w.socketInput.Value())
		}
	})
}

func TestWizardCancel(t *testing.T) {
	t.Run("ctrl+c cancels", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepLimits

		done, req, _ := w.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if !done {
			t.Error("should be done after cancel")
		}
		if req != nil {
			t.Error("request should be nil (cancelled)")
		}
	})

	t.Run("esc at first step cancels", func(t *testing.T) {
		w := newWizardModel("")

		done, req, _ := w.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if !done || req != nil {
			t.Error("esc at first step should cancel")
		}
	})

	t.Run("esc goes back one step", func(t *testing.T) {
		steps := []struct {
			from, to wizardStep
		}{
			{stepMounts, stepSocket},
			{stepLimits, stepMounts},
			{stepNetwork, stepLimits},
			{stepConfirm, stepNetwork},
		}
		for _, s := range steps {
			w := newWizardModel("")
			w.step = s.from

			done, _, _ := w.Update(tea.KeyMsg{Type: tea.KeyEsc})
			if done {
				t.Errorf("esc at %v should not finish", s.from)
			}
			if w.step != s.to {
				t.Errorf("esc at %v: step = %v, want %v", s.from, w.step, s.to)
			}
		}
	})
}

func TestWizardMountSuggestions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"alpha", "alps", "beta", ".hidden"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w := newWizardModel("")
	w.step = stepMounts
	w.mountInput.Focus()
	w.mountInput.SetValue(filepath.Join(dir, "al"))
	w.updateMountSuggestions()

	got := w.mountInput.AvailableSuggestions()
	if len(got) != 2 {
		t.Errorf("suggestions = %v, want alpha and alps", got)
	}

	w.mountInput.SetValue(filepath.Join(dir, "alpha") + ":/x")
	w.updateMountSuggestions()
	if got := w.mountInput.AvailableSuggestions(); len(got) != 0 {
		t.Errorf("suggestions after ':' = %v, want none", got)
	}
}

func TestWizardView(t *testing.T) {
	t.Run("socket step", func(t *testing.T) {
		w := newWizardModel("")
		view := w.View()
		if !strings.Contains(view, "Create Container") {
			t.Error("should contain title")
		}
		if !strings.Contains(view, "Warden socket") {
			t.Error("should contain socket label")
		}
		if !strings.Contains(view, "1. Socket") {
			t.Error("should contain progress bar")
		}
	})

	t.Run("confirm step shows values", func(t *testing.T) {
		w := newWizardModel("")
		w.step = stepConfirm
		w.socketPath = "/tmp/warden.sock"
		w.mounts = []config.BindMount{{SrcPath: "/tmp/foo", DstPath: "/bar", Mode: "rw"}}
		w.diskLimit = 1 << 30
		w.memoryLimit = 256 << 20
		w.network = true

		view := w.View()
		for _, want := range []string{"/tmp/warden.sock", "/tmp/foo -> /bar (ro)", "1GiB", "256MiB", "yes"} {
			if !strings.Contains(view, want) {
				t.Errorf("view should contain %q", want)
			}
		}
	})
}

func TestWizardProgram(t *testing.T) {
	m := &wizardProgram{wizard: newWizardModel("/s")}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("cancel should quit the program")
	}
	if !m.done || m.result != nil {
		t.Errorf("done = %v, result = %+v; want cancelled", m.done, m.result)
	}
	if m.View() != "" {
		t.Error("view should be empty once done")
	}
}

func TestRunWizard_Cancelled(t *testing.T) {
	var out bytes.Buffer
	req, err := RunWizard("/tmp/warden.sock", tea.WithInput(strings.NewReader("\x03")), tea.WithOutput(&out))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("RunWizard() error = %v, want ErrCancelled", err)
	}
	if req != nil {
		t.Errorf("RunWizard() = %+v, want nil", req)
	}
}
