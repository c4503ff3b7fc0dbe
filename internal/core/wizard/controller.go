package wizard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microcredit-api/internal/core/domain"
)

// Submitter persists an assembled application and returns its id
type Submitter interface {
	SubmitApplication(ctx context.Context, rec *domain.ApplicationRecord) (string, error)
}

// SubmissionFailedMessage prefixes the banner shown after a failed submit
const SubmissionFailedMessage = "No se pudo enviar la solicitud"

// Controller is the step state machine of one application. It is not safe
// for concurrent use.
type Controller struct {
	steps         []Step
	current       Step
	status        domain.AuthStatus
	tenantID      string
	draft         *Draft
	fieldErrors   map[string]string
	submitError   string
	applicationID string
	now           func() time.Time
}

// NewController starts a form for tenantID at the entry step for status.
// A nil steps slice means DefaultSteps.
func NewController(steps []Step, tenantID string, status domain.AuthStatus) *Controller {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	return &Controller{
		steps:    steps,
		current:  EntryStep(steps, status),
		status:   status,
		tenantID: tenantID,
		draft:    NewDraft(),
		now:      time.Now,
	}
}

// Current returns the step being shown
func (c *Controller) Current() Step {
	return c.current
}

// Entry returns the step the current auth status lands on
func (c *Controller) Entry() Step {
	return EntryStep(c.steps, c.status)
}

// Status returns the last known auth status
func (c *Controller) Status() domain.AuthStatus {
	return c.status
}

// TenantID returns the tenant the form belongs to
func (c *Controller) TenantID() string {
	return c.tenantID
}

// Steps returns the steps in display order
func (c *Controller) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// Draft exposes the form values
func (c *Controller) Draft() *Draft {
	return c.draft
}

// FieldErrors returns the messages of the last failed transition
func (c *Controller) FieldErrors() map[string]string {
	return c.fieldErrors
}

// SubmitError returns the banner message of the last failed submission
func (c *Controller) SubmitError() string {
	return c.submitError
}

// ApplicationID is set once the application was submitted
func (c *Controller) ApplicationID() string {
	return c.applicationID
}

// IsComplete reports whether the application was submitted
func (c *Controller) IsComplete() bool {
	return c.current == StepComplete
}

func (c *Controller) index(step Step) int {
	for i, s := range c.steps {
		if s == step {
			return i
		}
	}
	return len(c.steps)
}

func (c *Controller) lastStep() Step {
	return c.steps[len(c.steps)-1]
}

// OnAuthStatusChanged applies an externally driven auth change. When the
// current step is no longer allowed the form jumps to the new entry step.
func (c *Controller) OnAuthStatusChanged(status domain.AuthStatus) {
	c.status = status
	if c.current == StepComplete {
		return
	}
	if !allowed(c.current, status) {
		c.current = EntryStep(c.steps, status)
		c.fieldErrors = nil
	}
}

// Set changes one draft field. Values may be edited from any step.
func (c *Controller) Set(name string, value interface{}) error {
	if c.current == StepComplete {
		return domain.ErrWizardComplete
	}
	if err := c.draft.Set(name, value); err != nil {
		return err
	}
	delete(c.fieldErrors, name)
	return nil
}

// SelectProduct binds the draft to a product's terms
func (c *Controller) SelectProduct(p *domain.ProductSnapshot) error {
	if c.current == StepComplete {
		return domain.ErrWizardComplete
	}
	if p == nil {
		return fmt.Errorf("%w: product", domain.ErrInvalidInput)
	}
	snapshot := *p
	c.draft.product = &snapshot
	delete(c.fieldErrors, "product")
	return nil
}

// SetLocation records where the applicant is
func (c *Controller) SetLocation(lat, long float64) error {
	if c.current == StepComplete {
		return domain.ErrWizardComplete
	}
	if lat < -90 || lat > 90 || long < -180 || long > 180 {
		return fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}
	c.draft.location = &domain.Location{Latitude: lat, Longitude: long, Timestamp: c.now()}
	return nil
}

// Next validates the current step and moves to the following allowed one.
// On validation failure the step is unchanged and FieldErrors are returned.
func (c *Controller) Next() (Step, error) {
	if c.current == StepComplete {
		return c.current, domain.ErrWizardComplete
	}

	if err := validateStep(c.draft, c.current, c.status); err != nil {
		c.recordFieldErrors(err)
		return c.current, err
	}
	c.fieldErrors = nil

	for i := c.index(c.current) + 1; i < len(c.steps); i++ {
		if allowed(c.steps[i], c.status) {
			c.current = c.steps[i]
			return c.current, nil
		}
	}
	return c.current, domain.ErrLastStep
}

// Previous moves back one allowed step. Refused at the first allowed step.
func (c *Controller) Previous() (Step, error) {
	if c.current == StepComplete {
		return c.current, nil
	}

	for i := c.index(c.current) - 1; i >= 0; i-- {
		if allowed(c.steps[i], c.status) {
			c.current = c.steps[i]
			c.fieldErrors = nil
			return c.current, nil
		}
	}
	return c.current, domain.ErrNoPreviousStep
}

// CanGoBack reports whether Previous would move
func (c *Controller) CanGoBack() bool {
	if c.current == StepComplete {
		return false
	}
	for i := c.index(c.current) - 1; i >= 0; i-- {
		if allowed(c.steps[i], c.status) {
			return true
		}
	}
	return false
}

// Submit validates the whole draft, assembles the record and hands it to s.
// On failure the step and draft are kept so the user can retry.
func (c *Controller) Submit(ctx context.Context, s Submitter) (string, error) {
	if c.current == StepComplete {
		return c.applicationID, domain.ErrWizardComplete
	}
	if c.current != c.lastStep() {
		return "", domain.ErrNotOnLastStep
	}

	if err := validateStep(c.draft, c.current, c.status); err != nil {
		c.recordFieldErrors(err)
		return "", err
	}
	if err := validateAll(c.draft); err != nil {
		c.recordFieldErrors(err)
		return "", err
	}

	rec, err := c.draft.assemble(c.tenantID, c.status.UserID, c.now())
	if err != nil {
		return "", err
	}

	id, err := s.SubmitApplication(ctx, rec)
	if err != nil {
		c.submitError = fmt.Sprintf("%s: %v", SubmissionFailedMessage, err)
		return "", fmt.Errorf("%w: %v", domain.ErrSubmissionFailed, err)
	}

	c.submitError = ""
	c.fieldErrors = nil
	c.applicationID = id
	c.current = StepComplete
	return id, nil
}

func (c *Controller) recordFieldErrors(err error) {
	var fe *FieldErrors
	if errors.As(err, &fe) {
		c.fieldErrors = fe.Fields
	}
}
