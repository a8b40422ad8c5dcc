package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/internal/driver"
	"github.com/MosYCo/test-data-generate/internal/export"
	"github.com/MosYCo/test-data-generate/internal/generator"
	"github.com/MosYCo/test-data-generate/internal/task"
)

const maxCellWidth = 20

// previewLoadedMsg carries a generated preview. Results with a stale seq are dropped.
type previewLoadedMsg struct {
	seq  int
	data *generator.Dataset
	err  error
}

// previewStep generates a small sample of every table so the user can check
// the rules before running the task.
type previewStep struct {
	ctx context.Context
	svc Services
	cfg *task.Config

	rowCount    int
	rowsInput   textinput.Model
	editingRows bool

	seq     int
	seed    int64
	loading bool
	data    *generator.Dataset
	err     error

	active int
	grid   table.Model
}

func newPreviewStep(ctx context.Context, svc Services) *previewStep {
	in := textinput.New()
	in.Placeholder = strconv.Itoa(task.DefaultRowCount)
	in.CharLimit = 4
	in.Width = 6

	return &previewStep{
		ctx:       ctx,
		svc:       svc,
		rowCount:  task.ClampPreviewRows(svc.Config.PreviewRows),
		rowsInput: in,
		grid:      table.New(table.WithFocused(true), table.WithHeight(12)),
	}
}

func (s *previewStep) Activate(cfg *task.Config) tea.Cmd {
	s.cfg = cfg
	s.editingRows = false
	if s.active >= len(cfg.Tables) {
		s.active = 0
	}
	s.seed = cfg.Seed
	if s.seed == 0 {
		s.seed = time.Now().UnixNano()
	}
	return s.regenerate()
}

func (s *previewStep) regenerate() tea.Cmd {
	s.seq++
	s.loading = true
	s.err = nil

	seq := s.seq
	ctx := s.ctx
	tables := append([]task.TableSpec(nil), s.cfg.Tables...)
	opts := generator.Options{
		Seed:     s.seed,
		Language: s.cfg.Language,
		RowCount: s.rowCount,
		Logger:   s.svc.Logger,
	}
	return func() tea.Msg {
		data, err := generator.Generate(ctx, tables, opts)
		return previewLoadedMsg{seq: seq, data: data, err: err}
	}
}

// Commit only requires that the last preview succeeded.
func (s *previewStep) Commit(cfg *task.Config) error {
	if s.err != nil {
		return fmt.Errorf("preview failed, fix the table rules first: %w", s.err)
	}
	return nil
}

func (s *previewStep) Capturing() bool { return s.editingRows }

func (s *previewStep) Help() string {
	if s.editingRows {
		return fmt.Sprintf("Enter: apply (1-%d)  Esc: cancel", task.MaxPreviewRows)
	}
	return "Tab: next table  ↑/↓: scroll  n: row count  r: regenerate  d: download"
}

func (s *previewStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case previewLoadedMsg:
		if msg.seq != s.seq {
			return nil
		}
		s.loading = false
		s.data, s.err = msg.data, msg.err
		if s.err != nil {
			s.svc.Logger.Warn("preview generation failed", "error", s.err)
		}
		s.refreshGrid()
		return nil

	case tea.KeyMsg:
		if s.cfg == nil {
			return nil
		}
		if s.editingRows {
			return s.updateRowsInput(msg)
		}
		return s.updateKeys(msg)
	}
	return nil
}

func (s *previewStep) updateRowsInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.editingRows = false
		s.rowsInput.Blur()
		return nil
	case "enter":
		s.editingRows = false
		s.rowsInput.Blur()
		n, err := strconv.Atoi(strings.TrimSpace(s.rowsInput.Value()))
		if err != nil || task.ClampPreviewRows(n) != n {
			s.rowCount = task.DefaultRowCount
			return tea.Batch(
				notify(noticeWarning, fmt.Sprintf("Row count must be 1-%d, using %d", task.MaxPreviewRows, task.DefaultRowCount)),
				s.regenerate(),
			)
		}
		s.rowCount = n
		return s.regenerate()
	}
	var cmd tea.Cmd
	s.rowsInput, cmd = s.rowsInput.Update(msg)
	return cmd
}

func (s *previewStep) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		if n := len(s.cfg.Tables); n > 0 {
			s.active = (s.active + 1) % n
			s.refreshGrid()
		}
		return nil
	case "shift+tab":
		if n := len(s.cfg.Tables); n > 0 {
			s.active = (s.active + n - 1) % n
			s.refreshGrid()
		}
		return nil
	case "n":
		s.editingRows = true
		s.rowsInput.SetValue(strconv.Itoa(s.rowCount))
		return s.rowsInput.Focus()
	case "r":
		s.seed = time.Now().UnixNano()
		return s.regenerate()
	case "d":
		return s.download()
	}
	var cmd tea.Cmd
	s.grid, cmd = s.grid.Update(msg)
	return cmd
}

// download writes the current preview to the output directory in the task's format.
func (s *previewStep) download() tea.Cmd {
	if s.data == nil || s.loading {
		return notify(noticeWarning, "Nothing to download yet")
	}

	data := s.data
	format := s.cfg.ExportFormat
	dir := s.svc.Config.ResolvePath(s.svc.Config.OutputDir)
	base := s.cfg.Name + "-preview"
	dbType := s.cfg.DataSource.Type
	var schema []database.Table
	if s.cfg.IncludeSchema {
		schema = s.cfg.DatabaseTables()
	}
	logger := s.svc.Logger
	return func() tea.Msg {
		opts := export.Options{Schema: schema}
		if format == task.FormatSQL {
			d, err := driver.NewDriver(dbType)
			if err != nil {
				return noticeMsg{level: noticeError, text: err.Error()}
			}
			opts.Dialect = d
		}
		paths, err := export.Export(dir, base, format, data, opts)
		if err != nil {
			logger.Error("preview export failed", "error", err)
			return noticeMsg{level: noticeError, text: "Download failed: " + err.Error()}
		}
		logger.Info("preview exported", "files", paths)
		return noticeMsg{level: noticeSuccess, text: "Saved " + strings.Join(paths, ", ")}
	}
}

func (s *previewStep) currentData() *generator.TableData {
	if s.data == nil || s.cfg == nil || len(s.cfg.Tables) == 0 {
		return nil
	}
	return s.data.Table(s.cfg.Tables[s.active].Name)
}

func (s *previewStep) refreshGrid() {
	s.grid.SetRows(nil)
	t := s.currentData()
	if t == nil {
		s.grid.SetColumns(nil)
		return
	}

	cols := make([]table.Column, len(t.Columns))
	for i, name := range t.Columns {
		cols[i] = table.Column{Title: name, Width: min(max(len(name), 8), maxCellWidth)}
	}
	rows := make([]table.Row, len(t.Rows))
	for i, r := range t.Rows {
		row := make(table.Row, len(r))
		for j, v := range r {
			row[j] = cellText(v)
		}
		rows[i] = row
	}
	s.grid.SetColumns(cols)
	s.grid.SetRows(rows)
	s.grid.SetCursor(0)
}

func cellText(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return v.Format(time.DateTime)
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func (s *previewStep) View() string {
	var b strings.Builder
	b.WriteString(renderSectionHeader("Data preview"))
	b.WriteString("\n\n")

	if s.cfg == nil || len(s.cfg.Tables) == 0 {
		b.WriteString(renderWarning("No tables to preview."))
		return b.String()
	}

	b.WriteString(labelStyle.Render("Rows per table: "))
	if s.editingRows {
		b.WriteString(s.rowsInput.View())
	} else {
		b.WriteString(strconv.Itoa(s.rowCount))
	}
	b.WriteString(labelStyle.Render("   Format: "))
	b.WriteString(s.cfg.ExportFormat)
	b.WriteString("\n\n")

	names := make([]string, len(s.cfg.Tables))
	for i, t := range s.cfg.Tables {
		names[i] = t.Name
	}
	b.WriteString(renderTabs(names, s.active))
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(infoStyle.Render(iconSpinner + " Generating preview..."))
	case s.err != nil:
		b.WriteString(renderError(s.err.Error()))
	case s.currentData() == nil:
		b.WriteString(renderWarning("No rows generated for this table."))
	default:
		b.WriteString(s.grid.View())
	}
	return b.String()
}
