// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RevertDelay is how long the success banner stays up after a submission.
const RevertDelay = 5 * time.Second

// State is the submission state of a contact form.
type State int

// Submission states.
const (
	StateIdle State = iota
	StateShowingSuccess
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateShowingSuccess:
		return "showing-success"
	default:
		return "unknown"
	}
}

// Surface is the UI the controller drives: the form's fields, their error
// slots, the form container and the success banner.
type Surface interface {
	// Value returns the current raw value of a field.
	Value(name FieldName) string
	// Invalid reports whether a field is currently marked with an error.
	Invalid(name FieldName) bool
	// SetFieldError marks a field with message, or clears it when message is empty.
	SetFieldError(name FieldName, message string)
	// SetFormVisible shows or hides the form and its interactivity.
	SetFormVisible(visible bool)
	// SetSuccessVisible shows or hides the success banner.
	SetSuccessVisible(visible bool)
	// ClearFields empties every field.
	ClearFields()
	// Navigate hands uri to the platform's navigation primitive.
	Navigate(uri string)
}

// Submission describes an accepted submission.
type Submission struct {
	ID       string
	Snapshot Snapshot
	Mailto   string
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for the revert timer.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithLogger sets the controller's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// Controller runs the contact form state machine over a Surface.
type Controller struct {
	surface Surface
	clock   Clock
	logger  *slog.Logger

	mu    sync.Mutex
	state State
	timer Timer
	gen   uint64        // identifies the armed timer
	idle  chan struct{} // closed while the state is Idle
}

// NewController creates a controller in the Idle state.
func NewController(surface Surface, opts ...Option) *Controller {
	c := &Controller{
		surface: surface,
		clock:   SystemClock(),
		logger:  slog.Default(),
		state:   StateIdle,
		idle:    make(chan struct{}),
	}
	close(c.idle)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Idle returns a channel that is closed once the controller is Idle.
func (c *Controller) Idle() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idle
}

// Blur validates a field after it loses focus.
func (c *Controller) Blur(name FieldName) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateField(name)
}

// Input re-validates a field while the user types, but only when the field
// is already marked invalid. The bool reports whether validation ran.
func (c *Controller) Input(name FieldName) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.surface.Invalid(name) {
		return Result{}, false
	}
	return c.validateField(name), true
}

// Submit validates every field and, when all pass, shows the success banner,
// clears the form, navigates to the mailto link and arms the revert timer.
// A submission while the banner is up restarts the revert window.
func (c *Controller) Submit() (Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := make(map[FieldName]string, len(Fields))
	invalid := make(map[FieldName]Result)
	for _, name := range Fields {
		values[name] = c.surface.Value(name)
		if res := c.validateField(name); !res.Valid() {
			invalid[name] = res
		}
	}
	if len(invalid) > 0 {
		c.logger.Debug("contact submission rejected", "invalid_fields", len(invalid))
		return Submission{}, &ValidationError{Fields: invalid}
	}

	snap, err := NewSnapshot(values)
	if err != nil {
		return Submission{}, fmt.Errorf("capturing snapshot: %w", err)
	}
	sub := Submission{
		ID:       uuid.NewString(),
		Snapshot: snap,
		Mailto:   MailtoURI(Recipient, snap),
	}

	if c.state == StateIdle {
		c.idle = make(chan struct{})
	}
	c.state = StateShowingSuccess
	c.surface.SetFormVisible(false)
	c.surface.SetSuccessVisible(true)
	c.surface.ClearFields()
	c.surface.Navigate(sub.Mailto)

	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.clock.AfterFunc(RevertDelay, func() {
		c.revert(gen)
	})

	c.logger.Info("contact submission accepted", "submission_id", sub.ID)
	return sub, nil
}

// Close stops a pending revert timer and returns the controller to Idle.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.enterIdle()
}

// revert fires when the revert timer expires. A timer that was replaced by a
// later submission is ignored.
func (c *Controller) revert(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.timer = nil
	c.surface.SetSuccessVisible(false)
	c.surface.SetFormVisible(true)
	c.enterIdle()
	c.logger.Debug("contact form restored")
}

// enterIdle must be called with c.mu held.
func (c *Controller) enterIdle() {
	if c.state == StateIdle {
		return
	}
	c.state = StateIdle
	close(c.idle)
}

// validateField must be called with c.mu held.
func (c *Controller) validateField(name FieldName) Result {
	res := Validate(Field{Name: name, Value: c.surface.Value(name)})
	c.surface.SetFieldError(name, res.Message)
	return res
}
