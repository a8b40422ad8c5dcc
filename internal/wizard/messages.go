package wizard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MosYCo/test-data-generate/database"
	"github.com/MosYCo/test-data-generate/internal/history"
)

// noticeDuration is how long a notification stays on screen.
const noticeDuration = 4 * time.Second

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeWarning
	noticeError
)

// noticeMsg asks the model to show a transient notification.
type noticeMsg struct {
	level noticeLevel
	text  string
}

// noticeExpiredMsg clears the notification with the given sequence number.
type noticeExpiredMsg struct {
	seq int
}

func notify(level noticeLevel, text string) tea.Cmd {
	return func() tea.Msg { return noticeMsg{level: level, text: text} }
}

// schemaLoadedMsg carries the result of introspecting the chosen data source.
type schemaLoadedMsg struct {
	schema *database.Schema
	err    error
}

// executionDoneMsg carries the result of running the task.
type executionDoneMsg struct {
	result history.ExecutionResult
	err    error
}
