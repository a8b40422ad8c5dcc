package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MosYCo/test-data-generate/internal/clierr"
	"github.com/MosYCo/test-data-generate/internal/datasource"
	"github.com/MosYCo/test-data-generate/internal/driver"
	"github.com/MosYCo/test-data-generate/internal/task"
)

// Form field keys
const (
	fieldName        = "name"
	fieldType        = "type"
	fieldHost        = "host"
	fieldPort        = "port"
	fieldDatabase    = "database"
	fieldUser        = "user"
	fieldPassword    = "password"
	fieldFilePath    = "file_path"
	fieldURL         = "url"
	fieldAuthToken   = "auth_token"
	fieldCharset     = "charset"
	fieldDescription = "description"
)

type formField struct {
	key     string
	label   string
	types   []string // empty means every type
	input   textinput.Model
	choices []string // non-nil for select fields
	choice  int
}

func (f *formField) appliesTo(typ string) bool {
	if len(f.types) == 0 {
		return true
	}
	for _, t := range f.types {
		if t == typ {
			return true
		}
	}
	return false
}

func (f *formField) value() string {
	if f.choices != nil {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

func (f *formField) setValue(v string) {
	if f.choices != nil {
		for i, c := range f.choices {
			if c == v {
				f.choice = i
			}
		}
		return
	}
	f.input.SetValue(v)
}

// connectionTestedMsg reports the outcome of ctrl+t.
type connectionTestedMsg struct {
	name string
	err  error
}

// dataSourceStep is the connection form with test, save and pick actions.
type dataSourceStep struct {
	ctx context.Context
	svc Services

	fields []*formField
	focus  int // index into visibleFields()

	testing bool
	tested  string // name of the last source that passed the test

	picking     bool
	pickerItems []datasource.DataSource
	pickerIndex int
}

func newDataSourceStep(ctx context.Context, svc Services) *dataSourceStep {
	typeIDs := make([]string, len(datasource.DatabaseTypes))
	for i, t := range datasource.DatabaseTypes {
		typeIDs[i] = t.ID
	}

	postgres := []string{driver.TypePostgres}
	s := &dataSourceStep{
		ctx: ctx,
		svc: svc,
		fields: []*formField{
			{key: fieldName, label: "Data source name *", input: makeInput("shop", false)},
			{key: fieldType, label: "Database type", choices: typeIDs},
			{key: fieldHost, label: "Host *", types: postgres, input: makeInput("localhost", false)},
			{key: fieldPort, label: "Port *", types: postgres, input: makeInput("5432", false)},
			{key: fieldDatabase, label: "Database *", types: postgres, input: makeInput("shop", false)},
			{key: fieldUser, label: "User *", types: postgres, input: makeInput("postgres", false)},
			{key: fieldPassword, label: "Password", types: postgres, input: makeInput("", true)},
			{key: fieldFilePath, label: "Database file *", types: []string{driver.TypeSQLite}, input: makeInput("shop.db", false)},
			{key: fieldURL, label: "Database URL *", types: []string{driver.TypeLibSQL}, input: makeInput("libsql://[name]-[org].turso.io", false)},
			{key: fieldAuthToken, label: "Auth token", types: []string{driver.TypeLibSQL}, input: makeInput("", true)},
			{key: fieldCharset, label: "Charset", choices: datasource.Charsets},
			{key: fieldDescription, label: "Description", input: makeInput("", false)},
		},
	}
	s.fill(datasource.New(driver.TypePostgres))
	return s
}

func makeInput(placeholder string, secret bool) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 512
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '*'
	}
	return input
}

func (s *dataSourceStep) field(key string) *formField {
	for _, f := range s.fields {
		if f.key == key {
			return f
		}
	}
	return nil
}

func (s *dataSourceStep) currentType() string {
	return s.field(fieldType).value()
}

func (s *dataSourceStep) visibleFields() []*formField {
	typ := s.currentType()
	var out []*formField
	for _, f := range s.fields {
		if f.appliesTo(typ) {
			out = append(out, f)
		}
	}
	return out
}

// fill loads a data source into the form.
func (s *dataSourceStep) fill(ds datasource.DataSource) {
	s.field(fieldType).setValue(driver.NormalizeType(ds.Type))
	s.field(fieldName).setValue(ds.Name)
	s.field(fieldHost).setValue(ds.Host)
	port := ""
	if ds.Port > 0 {
		port = strconv.Itoa(ds.Port)
	}
	s.field(fieldPort).setValue(port)
	s.field(fieldDatabase).setValue(ds.Database)
	s.field(fieldUser).setValue(ds.User)
	s.field(fieldPassword).setValue(ds.Password)
	s.field(fieldFilePath).setValue(ds.FilePath)
	s.field(fieldURL).setValue(ds.URL)
	s.field(fieldAuthToken).setValue(ds.AuthToken)
	charset := ds.Charset
	if charset == "" {
		charset = datasource.DefaultCharset
	}
	s.field(fieldCharset).setValue(charset)
	s.field(fieldDescription).setValue(ds.Description)
}

// collect builds a data source from the form.
func (s *dataSourceStep) collect() (datasource.DataSource, error) {
	ds := datasource.DataSource{
		Name:        s.field(fieldName).value(),
		Type:        s.currentType(),
		Charset:     s.field(fieldCharset).value(),
		Description: s.field(fieldDescription).value(),
	}

	switch ds.Type {
	case driver.TypePostgres:
		port := s.field(fieldPort).value()
		if err := datasource.ValidatePort(port); err != nil {
			return ds, clierr.Validation(err)
		}
		ds.Port, _ = strconv.Atoi(port)
		ds.Host = s.field(fieldHost).value()
		ds.Database = s.field(fieldDatabase).value()
		ds.User = s.field(fieldUser).value()
		ds.Password = s.field(fieldPassword).input.Value()
	case driver.TypeSQLite:
		ds.FilePath = s.field(fieldFilePath).value()
	case driver.TypeLibSQL:
		ds.URL = s.field(fieldURL).value()
		ds.AuthToken = s.field(fieldAuthToken).input.Value()
	}
	return ds, ds.Validate()
}

func (s *dataSourceStep) Activate(cfg *task.Config) tea.Cmd {
	if cfg.DataSource.Type != "" && s.field(fieldName).value() == "" {
		s.fill(cfg.DataSource)
	}
	return s.applyFocus()
}

func (s *dataSourceStep) applyFocus() tea.Cmd {
	visible := s.visibleFields()
	if s.focus >= len(visible) {
		s.focus = len(visible) - 1
	}
	var cmd tea.Cmd
	for i, f := range visible {
		if f.choices != nil {
			continue
		}
		if i == s.focus {
			cmd = f.input.Focus()
		} else {
			f.input.Blur()
		}
	}
	for _, f := range s.fields {
		if !f.appliesTo(s.currentType()) && f.choices == nil {
			f.input.Blur()
		}
	}
	return cmd
}

func (s *dataSourceStep) Commit(cfg *task.Config) error {
	ds, err := s.collect()
	if err != nil {
		return err
	}
	if prev := cfg.DataSource; prev.Key != "" && prev.Name == ds.Name && prev.Type == ds.Type {
		ds.Key = prev.Key
	}
	cfg.DataSource = ds
	return nil
}

func (s *dataSourceStep) Capturing() bool { return true }

func (s *dataSourceStep) Help() string {
	if s.picking {
		return "↑/↓: select  Enter: use  Esc: close"
	}
	return "Tab/↑/↓: field  ←/→: change choice  Ctrl+T: test  Ctrl+O: saved sources  Ctrl+S: save"
}

func (s *dataSourceStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case connectionTestedMsg:
		s.testing = false
		if msg.err != nil {
			s.tested = ""
			return notify(noticeError, clierr.Pretty(msg.err))
		}
		s.tested = msg.name
		return notify(noticeSuccess, fmt.Sprintf("Connected to %s", msg.name))
	case tea.KeyMsg:
		if s.picking {
			return s.updatePicker(msg)
		}
		return s.updateForm(msg)
	}
	return nil
}

func (s *dataSourceStep) updateForm(msg tea.KeyMsg) tea.Cmd {
	visible := s.visibleFields()
	current := visible[s.focus]

	switch msg.String() {
	case "tab", "down", "enter":
		s.focus = (s.focus + 1) % len(visible)
		return s.applyFocus()
	case "shift+tab", "up":
		s.focus = (s.focus + len(visible) - 1) % len(visible)
		return s.applyFocus()
	case "ctrl+t":
		return s.testConnection()
	case "ctrl+o":
		return s.openPicker()
	case "ctrl+s":
		return s.save()
	case "left", "right", " ":
		if current.choices != nil {
			step := 1
			if msg.String() == "left" {
				step = len(current.choices) - 1
			}
			current.choice = (current.choice + step) % len(current.choices)
			if current.key == fieldType {
				s.onTypeChanged()
			}
			return s.applyFocus()
		}
	}

	if current.choices != nil {
		return nil
	}
	var cmd tea.Cmd
	current.input, cmd = current.input.Update(msg)
	return cmd
}

// onTypeChanged applies the defaults of the newly selected type to empty fields.
func (s *dataSourceStep) onTypeChanged() {
	defaults := datasource.New(s.currentType())
	if defaults.Port > 0 && s.field(fieldPort).value() == "" {
		s.field(fieldPort).setValue(strconv.Itoa(defaults.Port))
	}
	if defaults.Host != "" && s.field(fieldHost).value() == "" {
		s.field(fieldHost).setValue(defaults.Host)
	}
	s.tested = ""
}

func (s *dataSourceStep) testConnection() tea.Cmd {
	if s.testing {
		return nil
	}
	ds, err := s.collect()
	if err != nil {
		return notify(noticeError, clierr.Pretty(err))
	}

	s.testing = true
	test := s.svc.TestConnection
	ctx := s.ctx
	return tea.Batch(
		notify(noticeInfo, "Testing connection to "+ds.Name),
		func() tea.Msg {
			return connectionTestedMsg{name: ds.Name, err: test(ctx, ds)}
		},
	)
}

func (s *dataSourceStep) save() tea.Cmd {
	ds, err := s.collect()
	if err != nil {
		return notify(noticeError, clierr.Pretty(err))
	}
	saved, err := s.svc.Sources.Add(ds)
	if err != nil {
		return notify(noticeError, "Could not save data source: "+err.Error())
	}
	s.svc.Logger.Info("data source saved", "key", saved.Key, "type", saved.Type)
	return notify(noticeSuccess, fmt.Sprintf("Saved data source as %q", saved.Key))
}

func (s *dataSourceStep) openPicker() tea.Cmd {
	s.pickerItems = s.svc.Sources.List()
	if len(s.pickerItems) == 0 {
		return notify(noticeWarning, "No saved data sources yet (Ctrl+S saves the current form)")
	}
	s.picking = true
	s.pickerIndex = 0
	return nil
}

func (s *dataSourceStep) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.picking = false
	case "up", "k":
		if s.pickerIndex > 0 {
			s.pickerIndex--
		}
	case "down", "j":
		if s.pickerIndex < len(s.pickerItems)-1 {
			s.pickerIndex++
		}
	case "enter":
		chosen := s.pickerItems[s.pickerIndex]
		ds, err := s.svc.Sources.Get(chosen.Key)
		if err != nil {
			return notify(noticeError, err.Error())
		}
		s.fill(ds)
		s.picking = false
		s.focus = 0
		s.tested = ""
		return tea.Batch(s.applyFocus(), notify(noticeInfo, "Loaded "+ds.Name))
	}
	return nil
}

func (s *dataSourceStep) View() string {
	var b strings.Builder

	b.WriteString(renderSectionHeader("Data source"))
	b.WriteString("\n\n")

	if s.picking {
		b.WriteString(labelStyle.Render("Saved data sources:"))
		b.WriteString("\n\n")
		for i, ds := range s.pickerItems {
			line := fmt.Sprintf("%s (%s) %s", ds.Name, ds.Type, ds.Address())
			b.WriteString(renderOption(i == s.pickerIndex, line))
			b.WriteString("\n")
		}
		return b.String()
	}

	for i, f := range s.visibleFields() {
		if i == s.focus {
			b.WriteString(selectedStyle.Render(iconArrow + " " + f.label + ":"))
		} else {
			b.WriteString(labelStyle.Render("  " + f.label + ":"))
		}
		b.WriteString(" ")
		if f.choices != nil {
			b.WriteString(renderChoices(f.choices, f.choice))
		} else {
			b.WriteString(f.input.View())
		}
		b.WriteString("\n")
	}

	switch {
	case s.testing:
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(iconSpinner + " Testing connection..."))
	case s.tested != "":
		b.WriteString("\n")
		b.WriteString(renderSuccess("Connection verified"))
	}

	return b.String()
}

func renderChoices(choices []string, selected int) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		if i == selected {
			parts[i] = selectedStyle.Render("[" + c + "]")
		} else {
			parts[i] = unselectedStyle.Render(c)
		}
	}
	return strings.Join(parts, " ")
}
