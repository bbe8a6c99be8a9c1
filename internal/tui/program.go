package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/firefly-engineering/warden-ctl/internal/config"
)

// ErrCancelled is returned by RunWizard when the user quits the wizard.
var ErrCancelled = errors.New("create wizard cancelled")

// wizardProgram adapts wizardModel to tea.Model.
type wizardProgram struct {
	wizard wizardModel
	result *config.CreateRequest
	done   bool
}

func (m *wizardProgram) Init() tea.Cmd {
	return m.wizard.Init()
}

func (m *wizardProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.wizard.width = size.Width
		m.wizard.height = size.Height
		m.wizard.networkList.SetWidth(size.Width - 4)
	}

	done, req, cmd := m.wizard.Update(msg)
	if done {
		m.done = true
		m.result = req
		return m, tea.Quit
	}
	return m, cmd
}

func (m *wizardProgram) View() string {
	if m.done {
		return ""
	}
	return m.wizard.View() + "\n" + helpStyle.Render("[esc] Back  [ctrl+c] Quit")
}

// RunWizard asks for a create payload interactively. defaultSocket
// prefills the socket step. Options are passed to tea.NewProgram.
func RunWizard(defaultSocket string, opts ...tea.ProgramOption) (*config.CreateRequest, error) {
	m := &wizardProgram{wizard: newWizardModel(defaultSocket)}
	p := tea.NewProgram(m, opts...)

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	result := finalModel.(*wizardProgram).result
	if result == nil {
		return nil, ErrCancelled
	}
	return result, nil
}
