package wizard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MosYCo/test-data-generate/internal/task"
)

// StepView is one page of the wizard. Views are long lived; the controller
// decides which one is active.
type StepView interface {
	// Activate is called each time the view becomes the active step.
	Activate(cfg *task.Config) tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	// Commit validates the view's input and writes it into cfg. The wizard
	// only moves forward when Commit succeeds.
	Commit(cfg *task.Config) error
	// Capturing reports whether the view is editing text, in which case bare
	// arrow keys belong to the view rather than to step navigation.
	Capturing() bool
	Help() string
}

// StepDescriptor names a step and its view.
type StepDescriptor struct {
	Title string
	View  StepView
}

// WizardState is the controller's whole mutable state.
type WizardState struct {
	Current   int
	ModalOpen bool
}

// Controller is the linear step state machine. All transitions are total:
// out of range moves are clamped and moves while the configuration modal is
// open are ignored.
type Controller struct {
	steps []StepDescriptor
	state WizardState
}

// NewController starts at the first step with the modal closed.
func NewController(steps []StepDescriptor) *Controller {
	if len(steps) == 0 {
		panic("wizard: controller needs at least one step")
	}
	return &Controller{steps: steps}
}

// State returns a copy of the current state.
func (c *Controller) State() WizardState { return c.state }

// Current is the active step index.
func (c *Controller) Current() int { return c.state.Current }

// Steps returns the step descriptors in order.
func (c *Controller) Steps() []StepDescriptor { return c.steps }

// ActiveView returns the only mounted view.
func (c *Controller) ActiveView() StepView { return c.steps[c.state.Current].View }

// IsFirst reports whether the first step is active.
func (c *Controller) IsFirst() bool { return c.state.Current == 0 }

// IsLast reports whether the last step is active.
func (c *Controller) IsLast() bool { return c.state.Current == len(c.steps)-1 }

// Advance moves to the next step. On the first step it opens the
// configuration modal instead; ConfirmConfigModal performs that transition.
func (c *Controller) Advance() {
	if c.state.ModalOpen {
		return
	}
	if c.IsFirst() && len(c.steps) > 1 {
		c.state.ModalOpen = true
		return
	}
	if !c.IsLast() {
		c.state.Current++
	}
}

// Retreat moves to the previous step, stopping at the first.
func (c *Controller) Retreat() {
	if c.state.ModalOpen {
		return
	}
	if c.state.Current > 0 {
		c.state.Current--
	}
}

// OpenConfigModal shows the configuration modal.
func (c *Controller) OpenConfigModal() {
	c.state.ModalOpen = true
}

// CloseConfigModal dismisses the modal without moving.
func (c *Controller) CloseConfigModal() {
	c.state.ModalOpen = false
}

// ConfirmConfigModal dismisses the modal and leaves the first step.
func (c *Controller) ConfirmConfigModal() {
	if !c.state.ModalOpen {
		return
	}
	c.state.ModalOpen = false
	if !c.IsLast() {
		c.state.Current++
	}
}
