package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MosYCo/test-data-generate/internal/datasource"
	"github.com/MosYCo/test-data-generate/internal/generator"
	"github.com/MosYCo/test-data-generate/internal/task"
)

var columnTableColumns = []table.Column{
	{Title: "Column", Width: 18},
	{Title: "Type", Width: 14},
	{Title: "Null", Width: 4},
	{Title: "PK", Width: 3},
	{Title: "Reference", Width: 18},
	{Title: "Rule", Width: 16},
	{Title: "Description", Width: 20},
}

// tableDetailStep shows one tab per table with its columns, and edits table
// descriptions, encodings and column definitions in place.
type tableDetailStep struct {
	cfg     *task.Config
	active  int
	columns table.Model

	editingDescription bool
	description        textinput.Model

	editor *columnEditor
}

func newTableDetailStep() *tableDetailStep {
	desc := textinput.New()
	desc.Placeholder = "What this table holds"
	desc.CharLimit = 200

	return &tableDetailStep{
		columns: table.New(
			table.WithColumns(columnTableColumns),
			table.WithFocused(true),
			table.WithHeight(10),
		),
		description: desc,
	}
}

func (s *tableDetailStep) Activate(cfg *task.Config) tea.Cmd {
	s.cfg = cfg
	if s.active >= len(cfg.Tables) {
		s.active = 0
	}
	s.editor = nil
	s.editingDescription = false
	s.refreshRows()
	return nil
}

func (s *tableDetailStep) current() *task.TableSpec {
	if s.cfg == nil || len(s.cfg.Tables) == 0 {
		return nil
	}
	return &s.cfg.Tables[s.active]
}

func (s *tableDetailStep) refreshRows() {
	t := s.current()
	if t == nil {
		s.columns.SetRows(nil)
		return
	}
	rows := make([]table.Row, len(t.Columns))
	for i, c := range t.Columns {
		ref := ""
		if c.IsForeignKey {
			ref = c.ForeignKeyTable + "." + c.ForeignKeyColumn
		}
		rows[i] = table.Row{c.Name, c.Type, yesNo(c.Nullable), yesNo(c.IsPrimaryKey), ref, c.GenerationRule, c.Description}
	}
	s.columns.SetRows(rows)
	if s.columns.Cursor() >= len(rows) {
		s.columns.SetCursor(0)
	}
}

func (s *tableDetailStep) Commit(cfg *task.Config) error {
	if err := cfg.ValidateTables(); err != nil {
		return err
	}
	for _, t := range cfg.Tables {
		for _, c := range t.Columns {
			if err := generator.CheckRule(c); err != nil {
				return fmt.Errorf("table %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

func (s *tableDetailStep) Capturing() bool {
	return s.editor != nil || s.editingDescription
}

func (s *tableDetailStep) Help() string {
	switch {
	case s.editor != nil:
		return "Tab: field  Space/←/→: toggle or choose  Enter: save  Esc: cancel"
	case s.editingDescription:
		return "Enter: save description  Esc: cancel"
	default:
		return "Tab: next table  ↑/↓: column  e: edit column  i: describe table  c: encoding"
	}
}

func (s *tableDetailStep) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok || s.current() == nil {
		return nil
	}

	if s.editor != nil {
		return s.updateEditor(key)
	}

	if s.editingDescription {
		switch key.String() {
		case "enter":
			s.current().Description = strings.TrimSpace(s.description.Value())
			s.editingDescription = false
			s.description.Blur()
			return nil
		case "esc":
			s.editingDescription = false
			s.description.Blur()
			return nil
		}
		var cmd tea.Cmd
		s.description, cmd = s.description.Update(key)
		return cmd
	}

	switch key.String() {
	case "tab":
		s.active = (s.active + 1) % len(s.cfg.Tables)
		s.columns.SetCursor(0)
		s.refreshRows()
		return nil
	case "shift+tab":
		s.active = (s.active + len(s.cfg.Tables) - 1) % len(s.cfg.Tables)
		s.columns.SetCursor(0)
		s.refreshRows()
		return nil
	case "e", "enter":
		t := s.current()
		if len(t.Columns) == 0 {
			return nil
		}
		s.editor = newColumnEditor(s.cfg, t, s.columns.Cursor())
		return s.editor.applyFocus()
	case "i":
		s.editingDescription = true
		s.description.SetValue(s.current().Description)
		return s.description.Focus()
	case "c":
		t := s.current()
		t.Encoding = nextChoice(datasource.Charsets, t.Encoding)
		return nil
	}

	var cmd tea.Cmd
	s.columns, cmd = s.columns.Update(key)
	return cmd
}

func (s *tableDetailStep) updateEditor(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		s.editor = nil
		return nil
	case "enter":
		t := s.current()
		if err := s.editor.save(t); err != nil {
			s.editor.err = err.Error()
			return nil
		}
		s.editor = nil
		s.refreshRows()
		return notify(noticeSuccess, "Column updated")
	}
	return s.editor.update(key)
}

func (s *tableDetailStep) View() string {
	var b strings.Builder
	b.WriteString(renderSectionHeader("Table detail"))
	b.WriteString("\n\n")

	t := s.current()
	if t == nil {
		b.WriteString(renderWarning("No tables loaded. Go back and pick a data source."))
		return b.String()
	}

	names := make([]string, len(s.cfg.Tables))
	for i, tb := range s.cfg.Tables {
		names[i] = tb.Name
	}
	b.WriteString(renderTabs(names, s.active))
	b.WriteString("\n\n")

	if s.editor != nil {
		b.WriteString(s.editor.view())
		return b.String()
	}

	b.WriteString(labelStyle.Render("Description: "))
	if s.editingDescription {
		b.WriteString(s.description.View())
	} else if t.Description != "" {
		b.WriteString(t.Description)
	} else {
		b.WriteString(unselectedStyle.Render("(none)"))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Encoding: "))
	b.WriteString(t.Encoding)
	b.WriteString("\n\n")
	b.WriteString(s.columns.View())
	return b.String()
}

// Column editor fields
const (
	editName = iota
	editType
	editRule
	editExample
	editDescription
	editForeignKey
	editRefTable
	editRefColumn
	editFieldCount
)

// columnEditor is the modal for editing one column, including its foreign key.
type columnEditor struct {
	cfg   *task.Config
	index int

	inputs     [editForeignKey]textinput.Model
	foreignKey bool
	refTable   string
	refColumn  string

	focus int
	err   string
}

func newColumnEditor(cfg *task.Config, t *task.TableSpec, index int) *columnEditor {
	col := t.Columns[index]
	e := &columnEditor{cfg: cfg, index: index}

	values := [editForeignKey]string{col.Name, col.Type, col.GenerationRule, col.Example, col.Description}
	placeholders := [editForeignKey]string{"column name", "varchar(255)", "random", "example value", "description"}
	for i := range e.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 200
		in.SetValue(values[i])
		e.inputs[i] = in
	}

	e.foreignKey = col.IsForeignKey
	e.refTable = col.ForeignKeyTable
	e.refColumn = col.ForeignKeyColumn
	return e
}

func (e *columnEditor) visibleCount() int {
	if e.foreignKey {
		return editFieldCount
	}
	return editRefTable
}

func (e *columnEditor) applyFocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range e.inputs {
		if i == e.focus {
			cmd = e.inputs[i].Focus()
		} else {
			e.inputs[i].Blur()
		}
	}
	return cmd
}

func (e *columnEditor) tableNames() []string {
	names := make([]string, len(e.cfg.Tables))
	for i, t := range e.cfg.Tables {
		names[i] = t.Name
	}
	return names
}

func (e *columnEditor) columnNames() []string {
	ref := e.cfg.Table(e.refTable)
	if ref == nil {
		return nil
	}
	return ref.ColumnNames()
}

func (e *columnEditor) update(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "tab", "down":
		e.focus = (e.focus + 1) % e.visibleCount()
		return e.applyFocus()
	case "shift+tab", "up":
		e.focus = (e.focus + e.visibleCount() - 1) % e.visibleCount()
		return e.applyFocus()
	case " ", "left", "right":
		switch e.focus {
		case editForeignKey:
			e.foreignKey = !e.foreignKey
			if !e.foreignKey {
				e.refTable, e.refColumn = "", ""
			}
			return nil
		case editRefTable:
			e.refTable = cycle(e.tableNames(), e.refTable, key.String() == "left")
			e.refColumn = ""
			return nil
		case editRefColumn:
			e.refColumn = cycle(e.columnNames(), e.refColumn, key.String() == "left")
			return nil
		}
	}

	if e.focus < editForeignKey {
		var cmd tea.Cmd
		e.inputs[e.focus], cmd = e.inputs[e.focus].Update(key)
		return cmd
	}
	return nil
}

// save validates the edit against the task and writes it into t.
func (e *columnEditor) save(t *task.TableSpec) error {
	col := t.Columns[e.index]
	col.Name = strings.TrimSpace(e.inputs[editName].Value())
	col.Type = strings.TrimSpace(e.inputs[editType].Value())
	col.GenerationRule = strings.TrimSpace(e.inputs[editRule].Value())
	col.Example = e.inputs[editExample].Value()
	col.Description = strings.TrimSpace(e.inputs[editDescription].Value())

	col.SetForeignKey(e.foreignKey)
	if e.foreignKey {
		col.ForeignKeyTable = e.refTable
		col.ForeignKeyColumn = e.refColumn
	}

	for i, other := range t.Columns {
		if i != e.index && other.Name == col.Name {
			return fmt.Errorf("column %s already exists", col.Name)
		}
	}
	if err := e.cfg.ValidateColumn(col); err != nil {
		return err
	}
	if err := generator.CheckRule(col); err != nil {
		return err
	}

	t.Columns[e.index] = col
	return nil
}

func (e *columnEditor) view() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Edit column"))
	b.WriteString("\n\n")

	labels := [editFieldCount]string{"Name *", "Type *", "Generation rule", "Example", "Description", "Foreign key", "Referenced table *", "Referenced column *"}
	for i := 0; i < e.visibleCount(); i++ {
		if i == e.focus {
			b.WriteString(selectedStyle.Render(iconArrow + " " + labels[i] + ":"))
		} else {
			b.WriteString(labelStyle.Render("  " + labels[i] + ":"))
		}
		b.WriteString(" ")
		switch i {
		case editForeignKey:
			if e.foreignKey {
				b.WriteString(successStyle.Render("[on]"))
			} else {
				b.WriteString(unselectedStyle.Render("[off]"))
			}
		case editRefTable:
			b.WriteString(orPlaceholder(e.refTable, "choose with ←/→"))
		case editRefColumn:
			b.WriteString(orPlaceholder(e.refColumn, "choose with ←/→"))
		default:
			b.WriteString(e.inputs[i].View())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Rules: " + strings.Join(generator.Rules(), " ")))
	if e.err != "" {
		b.WriteString("\n\n")
		b.WriteString(renderError(e.err))
	}
	return modalStyle.Render(b.String())
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return unselectedStyle.Render(placeholder)
	}
	return v
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// cycle returns the item after (or before) current, wrapping around.
func cycle(items []string, current string, backwards bool) string {
	if len(items) == 0 {
		return ""
	}
	for i, it := range items {
		if it == current {
			if backwards {
				return items[(i+len(items)-1)%len(items)]
			}
			return items[(i+1)%len(items)]
		}
	}
	return items[0]
}

func nextChoice(items []string, current string) string {
	return cycle(items, current, false)
}
