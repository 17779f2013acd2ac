// Package session owns the query lifecycle of one lookup form: the text the
// user has typed, the current query state and the at-most-one in-flight
// request.
//
// A Controller is not safe for concurrent use. It is meant to be driven from a
// single event loop; the lookup itself runs elsewhere and reports back through
// Resolve.
package session

import (
	"github.com/google/uuid"

	"github.com/jask/cnpjlookup/internal/lookup"
	"github.com/jask/cnpjlookup/internal/registryid"
)

// State is the presentation state tag.
type State uint8

const (
	Idle State = iota
	Validating
	Loading
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Request identifies one dispatched lookup.
type Request struct {
	Token string
	ID    registryid.ID
}

// Resolution is the outcome of a Request.
type Resolution struct {
	Request
	Record lookup.Record
	Err    error
}

// Snapshot is everything a renderer needs.
type Snapshot struct {
	Text      string
	Canonical registryid.ID
	State     State
	Record    *lookup.Record
	ErrKind   lookup.ErrorKind
}

// Observer is told about every state change.
type Observer func(from, to State)

// Controller implements the idle/validating/loading/success/error machine.
type Controller struct {
	text     string
	state    State
	record   *lookup.Record
	errKind  lookup.ErrorKind
	inflight *Request
	observe  Observer
	newToken func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver installs fn as the transition hook.
func WithObserver(fn Observer) Option {
	return func(c *Controller) { c.observe = fn }
}

// WithTokenSource overrides request token generation.
func WithTokenSource(fn func() string) Option {
	return func(c *Controller) { c.newToken = fn }
}

// New returns a controller in the Idle state with an empty field.
func New(opts ...Option) *Controller {
	c := &Controller{state: Idle, newToken: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Keystroke replaces the field value with raw, reformatted. The state tag is
// left unchanged.
func (c *Controller) Keystroke(raw string) string {
	c.text = registryid.Format(raw)
	return c.text
}

// CanSubmit is false while a lookup is in flight.
func (c *Controller) CanSubmit() bool {
	return c.state != Loading
}

// Submit validates the current text. It returns the request to dispatch, or
// false when nothing should be sent: either a lookup is already in flight or
// the ID is malformed (the controller is then in Error(InvalidFormat)).
func (c *Controller) Submit() (Request, bool) {
	if c.state == Loading {
		return Request{}, false
	}
	c.transition(Validating)
	c.record = nil
	c.errKind = lookup.KindNone

	id := registryid.Normalize(c.text)
	if !registryid.IsSubmittable(id) {
		c.fail(lookup.KindInvalidFormat)
		return Request{}, false
	}

	req := Request{Token: c.newToken(), ID: id}
	c.inflight = &req
	c.transition(Loading)
	return req, true
}

// Resolve applies the outcome of a lookup. Results for anything other than the
// current in-flight request are discarded and Resolve returns false.
func (c *Controller) Resolve(res Resolution) bool {
	if c.state != Loading || c.inflight == nil {
		return false
	}
	if res.Token != c.inflight.Token || res.ID != c.inflight.ID {
		return false
	}
	c.inflight = nil

	if res.Err != nil {
		c.fail(lookup.KindOf(res.Err))
		return true
	}
	rec := res.Record
	c.record = &rec
	c.errKind = lookup.KindNone
	c.transition(Success)
	return true
}

// Clear resets the form to Idle. A lookup still in flight becomes stale.
func (c *Controller) Clear() {
	c.text = ""
	c.record = nil
	c.errKind = lookup.KindNone
	c.inflight = nil
	c.transition(Idle)
}

// InFlight returns the pending request, if any.
func (c *Controller) InFlight() (Request, bool) {
	if c.inflight == nil {
		return Request{}, false
	}
	return *c.inflight, true
}

// State returns the current state tag.
func (c *Controller) State() State { return c.state }

// Snapshot returns the renderer's view of the controller.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Text:      c.text,
		Canonical: registryid.Normalize(c.text),
		State:     c.state,
		ErrKind:   c.errKind,
	}
	if c.record != nil {
		rec := *c.record
		s.Record = &rec
	}
	return s
}

func (c *Controller) fail(kind lookup.ErrorKind) {
	c.record = nil
	c.errKind = kind
	c.transition(Error)
}

func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	if c.observe != nil {
		c.observe(from, to)
	}
}
