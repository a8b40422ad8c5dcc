package wizard

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MosYCo/test-data-generate/internal/task"
)

type modalAction int

const (
	modalNone modalAction = iota
	modalConfirm
	modalCancel
)

const (
	modalFieldName = iota
	modalFieldLanguage
	modalFieldRemark
	modalFieldCount
)

// configModal collects the task name, language and remark before the
// wizard leaves the data source step.
type configModal struct {
	name     textinput.Model
	language textinput.Model
	remark   textarea.Model
	focus    int
	err      string
}

func newConfigModal() *configModal {
	name := textinput.New()
	name.Placeholder = "nightly seed"
	name.CharLimit = 100

	lang := textinput.New()
	lang.Placeholder = "en"
	lang.CharLimit = 35

	remark := textarea.New()
	remark.Placeholder = "Optional notes about this task"
	remark.SetHeight(3)
	remark.SetWidth(50)
	remark.ShowLineNumbers = false

	return &configModal{name: name, language: lang, remark: remark}
}

// open fills the fields from cfg and focuses the name.
func (m *configModal) open(cfg *task.Config) tea.Cmd {
	m.name.SetValue(cfg.Name)
	lang := cfg.Language
	if lang == "" {
		lang = task.DefaultLanguage()
	}
	m.language.SetValue(lang)
	m.remark.SetValue(cfg.Remark)
	m.err = ""
	m.focus = modalFieldName
	return m.applyFocus()
}

func (m *configModal) applyFocus() tea.Cmd {
	m.name.Blur()
	m.language.Blur()
	m.remark.Blur()
	switch m.focus {
	case modalFieldName:
		return m.name.Focus()
	case modalFieldLanguage:
		return m.language.Focus()
	default:
		return m.remark.Focus()
	}
}

func (m *configModal) update(msg tea.KeyMsg) (modalAction, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return modalCancel, nil
	case "ctrl+s":
		return modalConfirm, nil
	case "enter":
		if m.focus != modalFieldRemark {
			return modalConfirm, nil
		}
	case "tab", "down":
		if msg.String() == "tab" || m.focus != modalFieldRemark {
			m.focus = (m.focus + 1) % modalFieldCount
			return modalNone, m.applyFocus()
		}
	case "shift+tab", "up":
		if msg.String() == "shift+tab" || m.focus != modalFieldRemark {
			m.focus = (m.focus + modalFieldCount - 1) % modalFieldCount
			return modalNone, m.applyFocus()
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case modalFieldName:
		m.name, cmd = m.name.Update(msg)
	case modalFieldLanguage:
		m.language, cmd = m.language.Update(msg)
	default:
		m.remark, cmd = m.remark.Update(msg)
	}
	return modalNone, cmd
}

// apply validates the fields and writes them into cfg.
func (m *configModal) apply(cfg *task.Config) error {
	candidate := *cfg
	candidate.Name = strings.TrimSpace(m.name.Value())
	candidate.Language = task.NormalizeLanguage(m.language.Value())
	candidate.Remark = strings.TrimSpace(m.remark.Value())

	if err := candidate.ValidateInfo(); err != nil {
		m.err = "Please enter a task name"
		m.focus = modalFieldName
		m.applyFocus()
		return err
	}

	cfg.Name = candidate.Name
	cfg.Language = candidate.Language
	cfg.Remark = candidate.Remark
	m.err = ""
	return nil
}

func (m *configModal) view(loading bool) string {
	var b strings.Builder

	b.WriteString(renderSectionHeader("Task configuration"))
	b.WriteString("\n\n")

	fields := []struct {
		label string
		view  string
	}{
		{"Task name *", m.name.View()},
		{"Language", m.language.View()},
		{"Remark", m.remark.View()},
	}
	for i, f := range fields {
		if i == m.focus {
			b.WriteString(selectedStyle.Render(iconArrow + " " + f.label + ":"))
		} else {
			b.WriteString(labelStyle.Render("  " + f.label + ":"))
		}
		b.WriteString("\n  ")
		b.WriteString(f.view)
		b.WriteString("\n\n")
	}

	if m.err != "" {
		b.WriteString(renderError(m.err))
		b.WriteString("\n")
	}
	if loading {
		b.WriteString(infoStyle.Render(iconSpinner + " Reading tables from the data source..."))
		b.WriteString("\n")
	}

	b.WriteString(renderStatusBar("Tab: next field  Enter/Ctrl+S: confirm  Esc: cancel"))
	return modalStyle.Render(b.String())
}
