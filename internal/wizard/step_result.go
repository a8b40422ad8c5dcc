package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"

	"github.com/MosYCo/test-data-generate/internal/history"
	"github.com/MosYCo/test-data-generate/internal/task"
)

// historyLoadedMsg carries the execution history read from the store.
type historyLoadedMsg struct {
	results []history.ExecutionResult
	err     error
}

// resultStep lists past executions, newest first, and shows the details of
// the selected one.
type resultStep struct {
	ctx context.Context
	svc Services

	results []history.ExecutionResult
	cursor  int
	err     error

	showConfig    bool
	showArtifacts bool
	confirmDelete bool
}

func newResultStep(ctx context.Context, svc Services) *resultStep {
	return &resultStep{ctx: ctx, svc: svc}
}

func (s *resultStep) Activate(*task.Config) tea.Cmd {
	s.confirmDelete = false
	return s.reload()
}

func (s *resultStep) reload() tea.Cmd {
	store := s.svc.History
	if store == nil {
		return nil
	}
	ctx := s.ctx
	return func() tea.Msg {
		results, err := store.List(ctx)
		return historyLoadedMsg{results: results, err: err}
	}
}

func (s *resultStep) Commit(*task.Config) error { return nil }

func (s *resultStep) Capturing() bool { return false }

func (s *resultStep) Help() string {
	if s.confirmDelete {
		return "y: delete this result  any other key: keep"
	}
	return "↑/↓: select  v: configuration  a: artifacts  delete: remove  r: refresh"
}

func (s *resultStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.err = msg.err
		if msg.err == nil {
			s.results = msg.results
		} else {
			s.svc.Logger.Error("failed to load history", "error", msg.err)
		}
		s.clampCursor()
		return nil

	case executionDoneMsg:
		s.cursor = 0
		if s.svc.History != nil {
			return s.reload()
		}
		s.results = append([]history.ExecutionResult{msg.result}, s.results...)
		return nil

	case tea.KeyMsg:
		return s.updateKeys(msg)
	}
	return nil
}

func (s *resultStep) updateKeys(msg tea.KeyMsg) tea.Cmd {
	if s.confirmDelete {
		s.confirmDelete = false
		if msg.String() == "y" {
			return s.deleteSelected()
		}
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.results)-1 {
			s.cursor++
		}
	case "v":
		s.showConfig = !s.showConfig
	case "a":
		s.showArtifacts = !s.showArtifacts
	case "r":
		return s.reload()
	case "delete", "backspace":
		if len(s.results) > 0 {
			s.confirmDelete = true
		}
	}
	return nil
}

func (s *resultStep) deleteSelected() tea.Cmd {
	if len(s.results) == 0 {
		return nil
	}
	id := s.results[s.cursor].ID

	if s.svc.History != nil {
		if err := s.svc.History.Delete(s.ctx, id); err != nil {
			return notify(noticeError, "Could not delete result: "+err.Error())
		}
	}
	s.results = append(s.results[:s.cursor], s.results[s.cursor+1:]...)
	s.clampCursor()
	s.svc.Logger.Info("execution result deleted", "id", id)
	return notify(noticeSuccess, "Deleted result "+id)
}

func (s *resultStep) clampCursor() {
	if s.cursor >= len(s.results) {
		s.cursor = max(len(s.results)-1, 0)
	}
}

func (s *resultStep) View() string {
	var b strings.Builder
	b.WriteString(renderSectionHeader("Execution result"))
	b.WriteString("\n\n")

	if s.err != nil {
		b.WriteString(renderError("Could not read history: " + s.err.Error()))
		b.WriteString("\n\n")
	}
	if len(s.results) == 0 {
		b.WriteString(labelStyle.Render("No executions yet."))
		return b.String()
	}

	for i, r := range s.results {
		status := successStyle.Render(iconSuccess)
		if !r.Success {
			status = errorStyle.Render(iconError)
		}
		line := fmt.Sprintf("%s  %-20s %-5s %6d rows  %s",
			r.StartTime.Format(time.DateTime), r.Configuration.Name, r.Format, r.RowsWritten, r.Duration().Round(time.Millisecond))
		b.WriteString(status + " " + renderOption(i == s.cursor, line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.renderDetail(s.results[s.cursor]))
	return b.String()
}

func (s *resultStep) renderDetail(r history.ExecutionResult) string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Result " + r.ID))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Status:   "))
	b.WriteString(r.Status())
	b.WriteString("\n")
	if r.ErrorMessage != "" {
		b.WriteString(renderError(r.ErrorMessage))
		b.WriteString("\n")
	}
	if r.RowsLoaded > 0 {
		b.WriteString(labelStyle.Render("Loaded:   "))
		b.WriteString(fmt.Sprintf("%d rows into %s", r.RowsLoaded, r.Configuration.DataSource.Name))
		b.WriteString("\n")
	}

	if s.showArtifacts {
		b.WriteString(labelStyle.Render("Files:"))
		b.WriteString("\n")
		if len(r.Artifacts) == 0 {
			b.WriteString("  (none)\n")
		}
		for _, path := range r.Artifacts {
			b.WriteString("  " + path + "\n")
		}
	}

	if s.showConfig {
		data, err := yaml.Marshal(r.Configuration)
		if err != nil {
			b.WriteString(renderError(err.Error()))
		} else {
			b.WriteString(labelStyle.Render("Configuration:"))
			b.WriteString("\n")
			b.WriteString(string(data))
		}
	}
	return b.String()
}
