package wizard

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gosimple/slug"

	"github.com/MosYCo/test-data-generate/internal/datasource"
	"github.com/MosYCo/test-data-generate/internal/task"
)

// confirmStep summarizes the task, lets the user adjust row counts and the
// export format, and starts execution.
type confirmStep struct {
	svc Services
	cfg *task.Config

	cursor  int
	editing bool
	count   textinput.Model
}

func newConfirmStep(svc Services) *confirmStep {
	in := textinput.New()
	in.CharLimit = 7
	in.Width = 8
	return &confirmStep{svc: svc, count: in}
}

func (s *confirmStep) Activate(cfg *task.Config) tea.Cmd {
	s.cfg = cfg
	s.editing = false
	if s.cursor >= len(cfg.Tables) {
		s.cursor = 0
	}
	return nil
}

func (s *confirmStep) Commit(cfg *task.Config) error {
	return cfg.Validate()
}

func (s *confirmStep) Capturing() bool { return s.editing }

func (s *confirmStep) Help() string {
	if s.editing {
		return "Enter: set row count  Esc: cancel"
	}
	return "↑/↓: table  e: row count  f: format  d: schema  s: save task  x: execute"
}

func (s *confirmStep) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok || s.cfg == nil {
		return nil
	}

	if s.editing {
		switch key.String() {
		case "esc":
			s.editing = false
			s.count.Blur()
			return nil
		case "enter":
			n, err := strconv.Atoi(strings.TrimSpace(s.count.Value()))
			if err != nil || n < 1 {
				return notify(noticeError, "Row count must be a positive number")
			}
			s.cfg.Tables[s.cursor].RowCount = n
			s.editing = false
			s.count.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.count, cmd = s.count.Update(key)
		return cmd
	}

	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.cfg.Tables)-1 {
			s.cursor++
		}
	case "e", "enter":
		if len(s.cfg.Tables) == 0 {
			return nil
		}
		s.editing = true
		s.count.SetValue(strconv.Itoa(s.cfg.Tables[s.cursor].RowCount))
		return s.count.Focus()
	case "f":
		s.cfg.ExportFormat = nextChoice(task.Formats, s.cfg.ExportFormat)
	case "d":
		s.cfg.IncludeSchema = !s.cfg.IncludeSchema
	case "s":
		return s.saveTask()
	case "x":
		return func() tea.Msg { return executeRequestMsg{} }
	}
	return nil
}

// saveTask writes the task as YAML next to the generated data so it can be
// rerun with the generate command.
func (s *confirmStep) saveTask() tea.Cmd {
	name := slug.Make(s.cfg.Name)
	if name == "" {
		name = "task"
	}
	path := filepath.Join(s.svc.Config.ResolvePath(s.svc.Config.OutputDir), name+".task.yaml")
	if err := s.cfg.Save(path); err != nil {
		s.svc.Logger.Error("failed to save task", "path", path, "error", err)
		return notify(noticeError, "Could not save task: "+err.Error())
	}
	s.svc.Logger.Info("task saved", "path", path)
	return notify(noticeSuccess, "Task saved to "+path)
}

func (s *confirmStep) View() string {
	var b strings.Builder
	b.WriteString(renderSectionHeader("Confirmation"))
	b.WriteString("\n\n")
	if s.cfg == nil {
		return b.String()
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Task", s.cfg.Name)
	row("Language", s.cfg.Language)
	if s.cfg.Remark != "" {
		row("Remark", s.cfg.Remark)
	}
	ds := s.cfg.DataSource
	row("Data source", fmt.Sprintf("%s (%s, %s)", ds.Name, ds.Type, ds.Address()))
	charset := ds.Charset
	if charset == "" {
		charset = datasource.DefaultCharset
	}
	row("Charset", charset)
	if ds.Description != "" {
		row("Description", ds.Description)
	}
	row("Format", selectedStyle.Render(s.cfg.ExportFormat))
	if s.cfg.ExportFormat == task.FormatSQL {
		schema := "no"
		if s.cfg.IncludeSchema {
			schema = "yes, CREATE TABLE before the rows"
		}
		row("Schema", schema)
	}

	b.WriteString("\n")
	b.WriteString(sectionHeaderStyle.Render(fmt.Sprintf("Tables (%d rows total)", s.cfg.TotalRows())))
	b.WriteString("\n")
	for i, t := range s.cfg.Tables {
		count := strconv.Itoa(t.RowCount)
		if s.editing && i == s.cursor {
			count = s.count.View()
		}
		line := fmt.Sprintf("%-24s %s rows, %d columns", t.Name, count, len(t.Columns))
		b.WriteString(renderOption(i == s.cursor, line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderInfo("Press x to generate the data. Results are kept on the next step."))
	return b.String()
}
