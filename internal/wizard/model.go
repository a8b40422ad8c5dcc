// Package wizard is the interactive terminal flow for building and running a
// test data task: data source, table detail, data preview, confirmation and
// execution result.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/internal/clierr"
	"github.com/MosYCo/test-data-generate/internal/config"
	"github.com/MosYCo/test-data-generate/internal/datasource"
	"github.com/MosYCo/test-data-generate/internal/history"
	"github.com/MosYCo/test-data-generate/internal/logging"
	"github.com/MosYCo/test-data-generate/internal/runner"
	"github.com/MosYCo/test-data-generate/internal/task"
)

// Step indexes
const (
	StepDataSource = iota
	StepTableDetail
	StepDataPreview
	StepConfirmation
	StepExecutionResult
)

// Services are the collaborators the wizard calls out to. Function fields
// left nil use the real implementations.
type Services struct {
	Config  *config.Config
	Sources *datasource.Registry
	History *history.Store
	Logger  *slog.Logger

	TestConnection func(ctx context.Context, ds datasource.DataSource) error
	Introspect     func(ctx context.Context, ds datasource.DataSource) (*database.Schema, error)
	Execute        func(ctx context.Context, cfg task.Config) (history.ExecutionResult, error)
}

func (s Services) withDefaults() Services {
	if s.Config == nil {
		s.Config = &config.Config{
			OutputDir:     config.DefaultOutputDir,
			DefaultFormat: config.DefaultFormat,
			PreviewRows:   config.DefaultPreviewRows,
		}
	}
	if s.Sources == nil {
		s.Sources = datasource.NewRegistry(s.Config)
	}
	s.Logger = logging.OrDiscard(s.Logger).With("component", "wizard")
	if s.TestConnection == nil {
		s.TestConnection = datasource.TestConnection
	}
	if s.Introspect == nil {
		s.Introspect = datasource.Introspect
	}
	if s.Execute == nil {
		cfg, store, logger := s.Config, s.History, s.Logger
		s.Execute = func(ctx context.Context, t task.Config) (history.ExecutionResult, error) {
			return runner.Run(ctx, t, runner.Options{
				OutputDir: cfg.ResolvePath(cfg.OutputDir),
				History:   store,
				Logger:    logger,
			})
		}
	}
	return s
}

// executeRequestMsg is sent by the confirmation step to run the task.
type executeRequestMsg struct{}

// Model is the top level Bubble Tea model.
type Model struct {
	ctx    context.Context
	svc    Services
	ctrl   *Controller
	task   *task.Config
	modal  *configModal
	logger *slog.Logger

	notice    *noticeMsg
	noticeSeq int
	busy      string // non-empty while a blocking operation runs

	width  int
	height int
}

// New builds the wizard with all five steps.
func New(ctx context.Context, svc Services) *Model {
	svc = svc.withDefaults()

	cfg := task.New()
	if svc.Config.DefaultFormat != "" && task.IsFormat(svc.Config.DefaultFormat) {
		cfg.ExportFormat = svc.Config.DefaultFormat
	}

	steps := []StepDescriptor{
		{Title: "Data source", View: newDataSourceStep(ctx, svc)},
		{Title: "Table detail", View: newTableDetailStep()},
		{Title: "Data preview", View: newPreviewStep(ctx, svc)},
		{Title: "Confirmation", View: newConfirmStep(svc)},
		{Title: "Execution result", View: newResultStep(ctx, svc)},
	}

	return &Model{
		ctx:    ctx,
		svc:    svc,
		ctrl:   NewController(steps),
		task:   cfg,
		modal:  newConfigModal(),
		logger: svc.Logger,
	}
}

// Task returns the configuration accumulated so far.
func (m *Model) Task() *task.Config { return m.task }

// Controller exposes the step state machine.
func (m *Model) Controller() *Controller { return m.ctrl }

// Init activates the first step.
func (m *Model) Init() tea.Cmd {
	return m.ctrl.ActiveView().Activate(m.task)
}

// Update routes keys to navigation, the modal or the active step, and
// broadcasts async results to every step.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case noticeMsg:
		return m, m.showNotice(msg.level, msg.text)

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case schemaLoadedMsg:
		return m, m.handleSchema(msg)

	case executeRequestMsg:
		return m, m.startExecution()

	case executionDoneMsg:
		return m, m.handleExecution(msg)
	}

	return m, m.broadcast(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.busy != "" {
		return m, nil
	}

	if m.ctrl.State().ModalOpen {
		action, cmd := m.modal.update(msg)
		switch action {
		case modalCancel:
			m.ctrl.CloseConfigModal()
			return m, nil
		case modalConfirm:
			return m, m.confirmModal()
		}
		return m, cmd
	}

	view := m.ctrl.ActiveView()
	switch msg.String() {
	case "ctrl+n":
		return m, m.next()
	case "ctrl+p":
		return m, m.back()
	case "right":
		if !view.Capturing() {
			return m, m.next()
		}
	case "left":
		if !view.Capturing() {
			return m, m.back()
		}
	}

	return m, view.Update(msg)
}

// next commits the active step and advances. A failed commit keeps the step.
func (m *Model) next() tea.Cmd {
	if m.ctrl.IsLast() {
		return nil
	}
	if err := m.ctrl.ActiveView().Commit(m.task); err != nil {
		return m.showNotice(noticeError, clierr.Pretty(err))
	}

	before := m.ctrl.Current()
	m.ctrl.Advance()
	if m.ctrl.State().ModalOpen {
		return m.modal.open(m.task)
	}
	return m.activateIfMoved(before)
}

func (m *Model) back() tea.Cmd {
	before := m.ctrl.Current()
	m.ctrl.Retreat()
	return m.activateIfMoved(before)
}

func (m *Model) activateIfMoved(before int) tea.Cmd {
	if m.ctrl.Current() == before {
		return nil
	}
	m.logger.Debug("step changed", "from", before, "to", m.ctrl.Current())
	return m.ctrl.ActiveView().Activate(m.task)
}

func (m *Model) confirmModal() tea.Cmd {
	if err := m.modal.apply(m.task); err != nil {
		return nil
	}

	m.busy = "Reading tables from " + m.task.DataSource.Name
	ds := m.task.DataSource
	introspect := m.svc.Introspect
	ctx := m.ctx
	return func() tea.Msg {
		schema, err := introspect(ctx, ds)
		return schemaLoadedMsg{schema: schema, err: err}
	}
}

func (m *Model) handleSchema(msg schemaLoadedMsg) tea.Cmd {
	m.busy = ""
	if msg.err != nil {
		m.logger.Error("introspection failed", "source", m.task.DataSource.Name, "error", msg.err)
		m.modal.err = "Could not read tables: " + msg.err.Error()
		return nil
	}
	if len(msg.schema.Tables) == 0 {
		m.modal.err = "The data source has no tables"
		return nil
	}

	m.task.MergeSchema(msg.schema)
	m.logger.Info("schema loaded", "source", m.task.DataSource.Name, "tables", len(m.task.Tables))

	before := m.ctrl.Current()
	m.ctrl.ConfirmConfigModal()
	return tea.Batch(
		m.activateIfMoved(before),
		m.showNotice(noticeSuccess, fmt.Sprintf("Loaded %d tables", len(m.task.Tables))),
	)
}

func (m *Model) startExecution() tea.Cmd {
	if err := m.task.Validate(); err != nil {
		return m.showNotice(noticeError, clierr.Pretty(err))
	}

	m.busy = "Generating data"
	snapshot := *m.task
	snapshot.Tables = append([]task.TableSpec(nil), m.task.Tables...)
	execute := m.svc.Execute
	ctx := m.ctx
	return func() tea.Msg {
		result, err := execute(ctx, snapshot)
		return executionDoneMsg{result: result, err: err}
	}
}

func (m *Model) handleExecution(msg executionDoneMsg) tea.Cmd {
	m.busy = ""

	var notice tea.Cmd
	if msg.err != nil {
		notice = m.showNotice(noticeError, "Execution failed: "+msg.err.Error())
	} else {
		notice = m.showNotice(noticeSuccess, fmt.Sprintf("Generated %d rows", msg.result.RowsWritten))
	}

	cmds := []tea.Cmd{notice, m.broadcast(msg)}
	if m.ctrl.Current() == StepConfirmation {
		before := m.ctrl.Current()
		m.ctrl.Advance()
		cmds = append(cmds, m.activateIfMoved(before))
	}
	return tea.Batch(cmds...)
}

func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, step := range m.ctrl.Steps() {
		cmds = append(cmds, step.View.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (m *Model) showNotice(level noticeLevel, text string) tea.Cmd {
	m.noticeSeq++
	m.notice = &noticeMsg{level: level, text: text}
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// View renders the header, step indicator, active step or modal, and status bar.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(renderHeader("Test Data Generator"))
	b.WriteString("\n\n")
	b.WriteString(renderStepIndicator(m.ctrl.Steps(), m.ctrl.Current()))
	b.WriteString("\n\n")

	if m.ctrl.State().ModalOpen {
		b.WriteString(m.modal.view(m.busy != ""))
	} else {
		b.WriteString(m.ctrl.ActiveView().View())
	}
	b.WriteString("\n")

	if m.busy != "" && !m.ctrl.State().ModalOpen {
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(iconSpinner + " " + m.busy + "..."))
	}

	if m.notice != nil {
		b.WriteString("\n")
		b.WriteString(renderNotice(*m.notice))
	}

	b.WriteString("\n")
	b.WriteString(renderStatusBar(m.statusLine()))

	return borderStyle.Render(b.String())
}

func (m *Model) statusLine() string {
	if m.ctrl.State().ModalOpen {
		return "Ctrl+C: quit"
	}

	var parts []string
	if help := m.ctrl.ActiveView().Help(); help != "" {
		parts = append(parts, help)
	}
	if !m.ctrl.IsFirst() {
		parts = append(parts, "Ctrl+P/←: back")
	}
	if !m.ctrl.IsLast() {
		parts = append(parts, "Ctrl+N/→: next")
	}
	parts = append(parts, "Ctrl+C: quit")
	return strings.Join(parts, "  ")
}

func renderNotice(n noticeMsg) string {
	switch n.level {
	case noticeSuccess:
		return renderSuccess(n.text)
	case noticeWarning:
		return renderWarning(n.text)
	case noticeError:
		return renderError(n.text)
	default:
		return infoStyle.Render(iconInfo + " " + n.text)
	}
}

// Run starts the wizard on the terminal.
func Run(ctx context.Context, svc Services) error {
	p := tea.NewProgram(New(ctx, svc), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	return nil
}
