// Package action implements the activatable, progressing, completable and
// cancelable operation used for every command on the submarine: power
// switches, repairs, weapon sequences, sonar pings and steering.
package action

import "fmt"

// Kind selects how an action moves through its states.
type Kind int

const (
	// Instant activates and completes in the same request.
	Instant Kind = iota
	// Toggle is Instant with a boolean value flipped on every completion.
	Toggle
	// Progress must accumulate its duration while engaged before completing.
	Progress
	// Operator is Progress that also holds the shared Operator while running.
	Operator
	// Hold stays active until released, cancelled or disabled. It never completes.
	Hold
)

func (k Kind) String() string {
	switch k {
	case Instant:
		return "instant"
	case Toggle:
		return "toggle"
	case Progress:
		return "progress"
	case Operator:
		return "operator"
	case Hold:
		return "hold"
	default:
		return "unknown"
	}
}

// State is the lifecycle position of an action.
type State int

const (
	Inactive State = iota
	Progressing
	Active
)

func (s State) String() string {
	switch s {
	case Progressing:
		return "progressing"
	case Active:
		return "active"
	default:
		return "inactive"
	}
}

// Reasons collects the human-readable conditions blocking an action.
type Reasons struct {
	items []string
}

// Add appends a blocking reason.
func (r *Reasons) Add(msg string) { r.items = append(r.items, msg) }

// Addf appends a formatted blocking reason.
func (r *Reasons) Addf(format string, args ...any) { r.Add(fmt.Sprintf(format, args...)) }

// Len returns the number of reasons.
func (r *Reasons) Len() int { return len(r.items) }

// Items returns a copy of the reasons.
func (r *Reasons) Items() []string {
	if len(r.items) == 0 {
		return nil
	}
	out := make([]string, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Reasons) reset() { r.items = r.items[:0] }

// Storage is the material stock actions pay from.
type Storage interface {
	Count(material string) int
	Take(material string, n int) bool
}

// Cost is one material requirement.
type Cost struct {
	Material string `json:"material"`
	Count    int    `json:"count"`
}

// Env carries the per-tick inputs every action sees.
type Env struct {
	DeltaMs float64
	Storage Storage
}

// Behavior is the per-action strategy. Check appends blocking reasons for the
// current context; Complete applies the action's result.
type Behavior[C any] interface {
	Check(ctx C, r *Reasons)
	Complete(ctx C)
}

// Activator is implemented by behaviors that react to activation.
type Activator[C any] interface {
	Activate(ctx C)
}

// Deactivator is implemented by behaviors that react to every deactivation,
// whether it led to completion, cancellation or a forced stop.
type Deactivator[C any] interface {
	Deactivate(ctx C)
}

// Canceler is implemented by behaviors that react to cancellation.
type Canceler[C any] interface {
	Cancel(ctx C)
}

// Options configures a new action.
type Options struct {
	ID       string
	Name     string
	Kind     Kind
	Duration float64 // ms; used by Progress and Operator kinds
	Costs    []Cost
	Operator *OperatorToken
	Initial  bool // starting value of a Toggle
}

// Action is a generic state machine over the caller's context type C.
type Action[C any] struct {
	id          string
	name        string
	kind        Kind
	state       State
	progress    float64
	progressMax float64
	value       bool
	costs       []Cost
	operator    *OperatorToken
	group       *Group[C]
	behavior    Behavior[C]
	reasons     Reasons
	completions int
	cancels     int
}

// New creates an inactive action.
func New[C any](o Options, b Behavior[C]) *Action[C] {
	a := &Action[C]{
		id:       o.ID,
		name:     o.Name,
		kind:     o.Kind,
		value:    o.Initial,
		costs:    append([]Cost(nil), o.Costs...),
		operator: o.Operator,
		behavior: b,
	}
	if a.name == "" {
		a.name = a.id
	}
	if o.Kind == Progress || o.Kind == Operator {
		a.progressMax = o.Duration
	}
	return a
}

func (a *Action[C]) ID() string            { return a.id }
func (a *Action[C]) Name() string          { return a.name }
func (a *Action[C]) Kind() Kind            { return a.kind }
func (a *Action[C]) State() State          { return a.state }
func (a *Action[C]) Progress() float64     { return a.progress }
func (a *Action[C]) ProgressMax() float64  { return a.progressMax }
func (a *Action[C]) Value() bool           { return a.value }
func (a *Action[C]) Costs() []Cost         { return a.costs }
func (a *Action[C]) Completions() int      { return a.completions }
func (a *Action[C]) Cancellations() int    { return a.cancels }
func (a *Action[C]) Reasons() []string     { return a.reasons.Items() }
func (a *Action[C]) Enabled() bool         { return a.reasons.Len() == 0 }
func (a *Action[C]) Engaged() bool         { return a.state != Inactive }
func (a *Action[C]) Progressing() bool     { return a.state == Progressing }
func (a *Action[C]) SetValue(v bool)       { a.value = v }
func (a *Action[C]) Behavior() Behavior[C] { return a.behavior }

// Fraction returns progress as a share of progressMax.
func (a *Action[C]) Fraction() float64 {
	if a.progressMax <= 0 {
		return 0
	}
	return a.progress / a.progressMax
}

// refresh recomputes the blocking reasons.
func (a *Action[C]) refresh(env Env, ctx C) {
	a.reasons.reset()
	for _, c := range a.costs {
		have := 0
		if env.Storage != nil {
			have = env.Storage.Count(c.Material)
		}
		if have < c.Count {
			a.reasons.Addf("needs %d %s (have %d)", c.Count, c.Material, have)
		}
	}
	if a.kind == Operator && a.operator == nil {
		a.reasons.Add("no operator available")
	}
	if a.behavior != nil {
		a.behavior.Check(ctx, &a.reasons)
	}
}

// Check recomputes the blocking reasons without advancing the action.
func (a *Action[C]) Check(env Env, ctx C) bool {
	a.refresh(env, ctx)
	return a.Enabled()
}

// Request is the external activation request. It returns false when the
// action is disabled. An engaged Progress, Operator or Hold action ignores
// repeated requests.
func (a *Action[C]) Request(env Env, ctx C) bool {
	a.refresh(env, ctx)
	if !a.Enabled() {
		return false
	}
	if a.Engaged() {
		return true
	}
	if a.group != nil {
		a.group.deactivateOthers(a, ctx)
	}
	a.activate(ctx)
	if a.progressMax <= 0 && a.kind != Hold {
		a.deactivate(ctx)
		a.complete(env, ctx)
	}
	return true
}

// Update advances an engaged action by env.DeltaMs. A newly disabled action
// is stopped without completing. An Operator action that lost the operator is
// cancelled.
func (a *Action[C]) Update(env Env, ctx C) {
	a.refresh(env, ctx)
	if !a.Engaged() {
		return
	}
	if !a.Enabled() {
		a.deactivate(ctx)
		return
	}
	if a.kind == Operator && !a.operator.Holds(a) {
		a.Cancel(ctx)
		return
	}
	if a.state != Progressing || env.DeltaMs <= 0 {
		return
	}
	a.progress += env.DeltaMs
	if a.progress >= a.progressMax {
		a.deactivate(ctx)
		a.complete(env, ctx)
	}
}

// Cancel stops an engaged action and discards its progress. Nothing is paid
// and Complete is not called.
func (a *Action[C]) Cancel(ctx C) {
	if !a.Engaged() {
		return
	}
	a.deactivate(ctx)
	a.cancels++
	if c, ok := a.behavior.(Canceler[C]); ok {
		c.Cancel(ctx)
	}
}

// Release ends an engaged action without the cancel hook. It is how a Hold
// action is let go.
func (a *Action[C]) Release(ctx C) {
	if a.Engaged() {
		a.deactivate(ctx)
	}
}

func (a *Action[C]) activate(ctx C) {
	a.progress = 0
	if a.progressMax > 0 {
		a.state = Progressing
	} else {
		a.state = Active
	}
	if a.kind == Operator {
		a.operator.Claim(a, a.name)
	}
	if h, ok := a.behavior.(Activator[C]); ok {
		h.Activate(ctx)
	}
}

func (a *Action[C]) deactivate(ctx C) {
	a.progress = 0
	a.state = Inactive
	if a.kind == Operator {
		a.operator.Release(a)
	}
	if h, ok := a.behavior.(Deactivator[C]); ok {
		h.Deactivate(ctx)
	}
}

func (a *Action[C]) complete(env Env, ctx C) {
	for _, c := range a.costs {
		if env.Storage != nil {
			env.Storage.Take(c.Material, c.Count)
		}
	}
	if a.kind == Toggle {
		a.value = !a.value
	}
	a.completions++
	if a.behavior != nil {
		a.behavior.Complete(ctx)
	}
}

// View is the plain snapshot of an action.
type View struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	State       string   `json:"state"`
	Enabled     bool     `json:"enabled"`
	Engaged     bool     `json:"engaged"`
	Progress    float64  `json:"progress"`
	ProgressMax float64  `json:"progressMax"`
	Value       bool     `json:"value"`
	Reasons     []string `json:"reasons,omitempty"`
	Costs       []Cost   `json:"costs,omitempty"`
}

// View returns the plain snapshot of a.
func (a *Action[C]) View() View {
	return View{
		ID:          a.id,
		Name:        a.name,
		Kind:        a.kind.String(),
		State:       a.state.String(),
		Enabled:     a.Enabled(),
		Engaged:     a.Engaged(),
		Progress:    a.progress,
		ProgressMax: a.progressMax,
		Value:       a.value,
		Reasons:     a.reasons.Items(),
		Costs:       append([]Cost(nil), a.costs...),
	}
}
