package quote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-quoteform/pkg/postal"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLookup installs the postal-code lookup. Without one, postal codes are
// stored but never resolved.
func WithLookup(lookup postal.Lookup) Option {
	return func(c *Controller) {
		c.lookup = lookup
	}
}

// WithNavigator installs the redirect port used by Submit and Contact.
func WithNavigator(nav Navigator) Option {
	return func(c *Controller) {
		c.navigator = nav
	}
}

// WithMessenger overrides message greeting, destination and base URL.
func WithMessenger(m Messenger) Option {
	return func(c *Controller) {
		c.messenger = m.withDefaults()
	}
}

// WithObserver reports transitions and dispatches, typically to metrics.
func WithObserver(obs Observer) Option {
	return func(c *Controller) {
		c.observer = obs
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReferral seeds the referral code at construction, as Seed would.
func WithReferral(referral string) Option {
	return func(c *Controller) {
		c.seeded = true
		c.state.Set(FieldReferralCode, strings.TrimSpace(referral))
	}
}

// WithLookupTimeout bounds each lookup. Zero leaves lookups unbounded.
func WithLookupTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout >= 0 {
			c.lookupTimeout = timeout
		}
	}
}

// Controller owns the step index and field values of one session. All
// mutation goes through its methods, which serialise on an internal mutex, so
// lookup completions merge with the same rules as user edits.
type Controller struct {
	mu sync.Mutex

	def       *Definition
	state     State
	step      int
	seeded    bool
	lookup    postal.Lookup
	navigator Navigator
	messenger Messenger
	observer  Observer
	logger    *slog.Logger

	lookupTimeout time.Duration
	ctx           context.Context
	stop          context.CancelFunc
	seq           uint64
	inflight      map[uint64]*pendingLookup
}

type pendingLookup struct {
	code   string
	done   chan struct{}
	cancel context.CancelFunc
}

// NewController creates a controller at step 0 with every field blank. A nil
// definition selects DefaultDefinition.
func NewController(def *Definition, options ...Option) *Controller {
	if def == nil {
		def = DefaultDefinition()
	}
	ctx, stop := context.WithCancel(context.Background())
	c := &Controller{
		def:       def,
		state:     NewState(nil),
		messenger: DefaultMessenger(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:       ctx,
		stop:      stop,
		inflight:  make(map[uint64]*pendingLookup),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Definition returns the form definition driving this controller.
func (c *Controller) Definition() *Definition { return c.def }

// Close cancels any in-flight lookup. The controller stays usable but will not
// merge results from cancelled lookups.
func (c *Controller) Close() {
	c.stop()
}

// Seed stores the referral code captured at session start. Only the first
// call has an effect.
func (c *Controller) Seed(referral string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seeded {
		return
	}
	c.seeded = true
	c.state.Set(FieldReferralCode, strings.TrimSpace(referral))
}

// SetField overwrites a single field. A select value that is not currently
// offered is stored as blank, and changing a field that drives another
// select's options clears that select when its value stops being offered.
// Postal codes are reduced to digits, and exactly 8 digits start a lookup.
func (c *Controller) SetField(f Field, value string) error {
	if !Known(f) {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if f == FieldReferralCode {
		return ErrReadOnlyField
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f == FieldPostalCode {
		value = postal.Sanitize(value)
	}
	c.state.Set(f, value)
	c.dropUnoffered(f)
	c.repair(f)
	if f == FieldPostalCode {
		c.postalChanged(value)
	}
	return nil
}

// Get returns the current value of f.
func (c *Controller) Get(f Field) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Get(f)
}

// State returns a copy of the current values.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Step returns the current step index.
func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Options returns the options currently offered for f.
func (c *Controller) Options(f Field) []Choice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.def.Options(f, c.state)
}

// Visible reports whether f is currently rendered.
func (c *Controller) Visible(f Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.def.Visible(f, c.state)
}

// Missing lists the blank required fields of the current step.
func (c *Controller) Missing() []Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.def.Missing(c.step, c.state)
}

// StepComplete is the advancement predicate for an arbitrary step.
func (c *Controller) StepComplete(step int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.def.Complete(step, c.state)
}

// MissingIn lists the blank required fields of step.
func (c *Controller) MissingIn(step int) []Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.def.Missing(step, c.state)
}

// CanAdvance reports whether Advance would move forward.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAdvanceLocked()
}

// CanSubmit reports whether Submit would dispatch.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *Controller) last() int { return c.def.StepCount() - 1 }

func (c *Controller) canAdvanceLocked() bool {
	return c.step < c.last() && c.def.Complete(c.step, c.state)
}

func (c *Controller) canSubmitLocked() bool {
	return c.step == c.last() && c.def.Complete(c.step, c.state)
}

// Advance moves to the next step when the current one is complete. It is a
// no-op on the last step or when blocked.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	moved := c.canAdvanceLocked()
	if moved {
		c.step++
	}
	c.mu.Unlock()

	c.observeTransition(ActionAdvance, moved)
	return moved
}

// Retreat moves to the previous step. It is a no-op on step 0.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	moved := c.step > 0
	if moved {
		c.step--
	}
	c.mu.Unlock()

	c.observeTransition(ActionRetreat, moved)
	return moved
}

// Submit builds the summary link and hands it to the navigator. It returns
// ErrSubmitBlocked unless the last step is reached and complete.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if !c.canSubmitLocked() {
		c.mu.Unlock()
		c.observeTransition(ActionSubmit, false)
		return "", ErrSubmitBlocked
	}
	link := c.messenger.SummaryLink(c.def, c.state)
	c.mu.Unlock()

	c.observeTransition(ActionSubmit, true)
	return link, c.dispatch(ctx, DispatchSummary, link)
}

// Contact dispatches the fixed contact message regardless of form state.
func (c *Controller) Contact(ctx context.Context) (string, error) {
	link := c.messenger.ContactLink()
	return link, c.dispatch(ctx, DispatchContact, link)
}

func (c *Controller) dispatch(ctx context.Context, kind, link string) error {
	if c.observer != nil {
		c.observer.ObserveDispatch(kind)
	}
	c.logger.Info("quote: dispatching message link", "kind", kind)
	if c.navigator == nil {
		return nil
	}
	if err := c.navigator.Navigate(ctx, link); err != nil {
		return fmt.Errorf("quote: navigate: %w", err)
	}
	return nil
}

func (c *Controller) observeTransition(action string, moved bool) {
	if c.observer != nil {
		c.observer.ObserveTransition(action, moved)
	}
}

// View builds the renderer snapshot for the current step.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	step, _ := c.def.Step(c.step)
	missing := make(map[Field]struct{})
	for _, f := range c.def.Missing(c.step, c.state) {
		missing[f] = struct{}{}
	}

	view := View{
		Title:     c.def.Title(),
		Step:      c.step,
		Total:     c.def.StepCount(),
		StepID:    step.ID,
		StepTitle: step.Title,
		IsFirst:   c.step == 0,
		IsLast:    c.step == c.last(),
		Fields:    make([]FieldView, 0, len(step.Fields)),
	}
	view.CanAdvance = !view.IsLast && len(missing) == 0
	view.CanSubmit = view.IsLast && len(missing) == 0

	for _, f := range step.Fields {
		spec, _ := c.def.Field(f)
		fv := FieldView{
			Name:        string(f),
			Label:       spec.Label,
			Kind:        spec.Kind,
			Placeholder: spec.Placeholder,
			Required:    spec.Required,
			Visible:     c.def.Visible(f, c.state),
			Value:       c.state.Get(f),
			Options:     c.def.Options(f, c.state),
		}
		if _, ok := missing[f]; ok {
			fv.Missing = true
			fv.Guidance = spec.Guidance
			if fv.Guidance == "" {
				fv.Guidance = fmt.Sprintf("Preencha o campo %s.", spec.Label)
			}
			view.Guidance = append(view.Guidance, fv.Guidance)
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}

// Snapshot captures the session state for storage.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Step:   c.step,
		Seeded: c.seeded,
		Values: c.state.Strings(),
	}
}

// Restore replaces the session state with snap. Unknown keys are dropped and
// the step index is clamped into range. Pending lookups are discarded.
func (c *Controller) Restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := make(map[Field]string, len(snap.Values))
	for key, value := range snap.Values {
		values[Field(key)] = value
	}
	c.state = NewState(values)
	c.seeded = snap.Seeded
	c.step = snap.Step
	if c.step < 0 {
		c.step = 0
	}
	if last := c.last(); c.step > last {
		c.step = last
	}
	c.supersedeLookups()
}

// repair clears selections that are no longer offered after changed was
// updated, following dependency chains.
func (c *Controller) repair(changed Field) {
	queue := []Field{changed}
	visited := map[Field]struct{}{changed: {}}
	for len(queue) > 0 {
		src := queue[0]
		queue = queue[1:]
		for _, dep := range c.def.dependentsOf(src) {
			current := c.state.Get(dep)
			if current == "" || offered(c.def.Options(dep, c.state), current) {
				continue
			}
			c.state.Set(dep, "")
			c.logger.Debug("quote: cleared stale selection",
				"field", string(dep),
				"value", current,
				"trigger", string(src),
			)
			if _, seen := visited[dep]; !seen {
				visited[dep] = struct{}{}
				queue = append(queue, dep)
			}
		}
	}
}

// dropUnoffered blanks f when it is a select holding a value its current
// options do not include. Runs with c.mu held.
func (c *Controller) dropUnoffered(f Field) {
	spec, ok := c.def.Field(f)
	if !ok || spec.Kind != KindSelect {
		return
	}
	current := c.state.Get(f)
	if current == "" || offered(c.def.Options(f, c.state), current) {
		return
	}
	c.state.Set(f, "")
	c.logger.Debug("quote: rejected unoffered selection", "field", string(f), "value", current)
}

func offered(options []Choice, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
