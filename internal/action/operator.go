package action

// OperatorToken is the single crew member operator-gated actions need. At
// most one action holds it; claiming it evicts the previous holder, which
// cancels on its next update.
type OperatorToken struct {
	name   string
	holder any
	task   string
}

// NewOperator creates an unassigned operator.
func NewOperator(name string) *OperatorToken {
	return &OperatorToken{name: name}
}

// Name returns the operator's display name.
func (o *OperatorToken) Name() string { return o.name }

// Claim assigns the operator to holder.
func (o *OperatorToken) Claim(holder any, task string) {
	o.holder = holder
	o.task = task
}

// Release frees the operator if holder has it.
func (o *OperatorToken) Release(holder any) {
	if o != nil && o.holder == holder {
		o.holder = nil
		o.task = ""
	}
}

// Unassign frees the operator whoever holds it.
func (o *OperatorToken) Unassign() {
	o.holder = nil
	o.task = ""
}

// Holds reports whether holder has the operator.
func (o *OperatorToken) Holds(holder any) bool {
	return o != nil && o.holder != nil && o.holder == holder
}

// Busy reports whether anyone holds the operator.
func (o *OperatorToken) Busy() bool { return o.holder != nil }

// Task names what the operator is doing, or "" when idle.
func (o *OperatorToken) Task() string { return o.task }
