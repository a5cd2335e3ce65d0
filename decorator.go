package ethogram

import (
	"context"
	"fmt"
)

// Inverter flips Success and Failure; Running and Skipped pass
// through unchanged. Generalizes the teacher's constructs.go Invert
// helper (built on the Decorator{child, fn} closure shape).
type Inverter struct {
	BaseNode
	child Node
}

// NewInverter wraps child with an Inverter.
func NewInverter(name string, child Node) *Inverter {
	return &Inverter{BaseNode: NewBaseNode(name), child: child}
}

func (d *Inverter) Children() []Node { return []Node{d.child} }
func (d *Inverter) Type() NodeType   { return DecoratorNodeType }

func (d *Inverter) Tick(ctx context.Context) (NodeStatus, error) {
	status, err := tickChild(ctx, d.child)
	if err != nil {
		return d.setStatus(Failure), err
	}
	switch status {
	case Success:
		return d.setStatus(Failure), nil
	case Failure:
		return d.setStatus(Success), nil
	default:
		return d.setStatus(status), nil
	}
}

func (d *Inverter) Halt() {
	d.child.Halt()
	d.resetStatus()
}

// ForceSuccess turns a Failure from its child into Success; Running
// and Skipped pass through unchanged.
type ForceSuccess struct {
	BaseNode
	child Node
}

// NewForceSuccess wraps child with a ForceSuccess.
func NewForceSuccess(name string, child Node) *ForceSuccess {
	return &ForceSuccess{BaseNode: NewBaseNode(name), child: child}
}

func (d *ForceSuccess) Children() []Node { return []Node{d.child} }
func (d *ForceSuccess) Type() NodeType   { return DecoratorNodeType }

func (d *ForceSuccess) Tick(ctx context.Context) (NodeStatus, error) {
	status, err := tickChild(ctx, d.child)
	if err != nil {
		return d.setStatus(Failure), err
	}
	if status == Failure {
		return d.setStatus(Success), nil
	}
	return d.setStatus(status), nil
}

func (d *ForceSuccess) Halt() {
	d.child.Halt()
	d.resetStatus()
}

// ForceFailure turns a Success from its child into Failure; Running
// and Skipped pass through unchanged.
type ForceFailure struct {
	BaseNode
	child Node
}

// NewForceFailure wraps child with a ForceFailure.
func NewForceFailure(name string, child Node) *ForceFailure {
	return &ForceFailure{BaseNode: NewBaseNode(name), child: child}
}

func (d *ForceFailure) Children() []Node { return []Node{d.child} }
func (d *ForceFailure) Type() NodeType   { return DecoratorNodeType }

func (d *ForceFailure) Tick(ctx context.Context) (NodeStatus, error) {
	status, err := tickChild(ctx, d.child)
	if err != nil {
		return d.setStatus(Failure), err
	}
	if status == Success {
		return d.setStatus(Failure), nil
	}
	return d.setStatus(status), nil
}

func (d *ForceFailure) Halt() {
	d.child.Halt()
	d.resetStatus()
}

// Repeat ticks its child up to n times, counting a Success toward the
// total; after n successes it returns Success. A Failure from the
// child returns Failure immediately. n == -1 means infinite repeats
// (Repeat effectively never terminates with Success on its own).
// Counter-bearing shape cross-grounded on Solifugus-teraglest's
// RepeaterNode.currentRepeat, since the teacher's own decorators are
// stateless closures.
type Repeat struct {
	BaseNode
	child Node
	n     int
	count int
}

// NewRepeat wraps child with a Repeat decorator targeting n successes
// (-1 for infinite).
func NewRepeat(name string, n int, child Node) *Repeat {
	return &Repeat{BaseNode: NewBaseNode(name), child: child, n: n}
}

func (d *Repeat) Children() []Node { return []Node{d.child} }
func (d *Repeat) Type() NodeType   { return DecoratorNodeType }

func (d *Repeat) Tick(ctx context.Context) (NodeStatus, error) {
	for {
		if d.n != -1 && d.count >= d.n {
			d.count = 0
			return d.setStatus(Success), nil
		}

		status, err := tickChild(ctx, d.child)
		if err != nil {
			d.count = 0
			return d.setStatus(Failure), err
		}

		switch status {
		case Success:
			d.count++
			d.child.Halt()
			continue
		case Failure:
			d.count = 0
			return d.setStatus(Failure), nil
		case Running:
			return d.setStatus(Running), nil
		case Skipped:
			return d.setStatus(Skipped), nil
		default:
			panic(fmt.Sprintf("ethogram: child of Repeat %q returned impossible status %v", d.name, status))
		}
	}
}

func (d *Repeat) Halt() {
	d.child.Halt()
	d.count = 0
	d.resetStatus()
}

// Retry is the symmetric counterpart to Repeat: it ticks its child again
// after each Failure, up to n attempts in total, returning Failure only
// once the budget is exhausted; a Success returns immediately. n == -1
// means unlimited attempts.
type Retry struct {
	BaseNode
	child Node
	n     int
	count int
}

// NewRetry wraps child with a Retry decorator allowing up to n attempts
// in total (-1 for unlimited).
func NewRetry(name string, n int, child Node) *Retry {
	return &Retry{BaseNode: NewBaseNode(name), child: child, n: n}
}

func (d *Retry) Children() []Node { return []Node{d.child} }
func (d *Retry) Type() NodeType   { return DecoratorNodeType }

func (d *Retry) Tick(ctx context.Context) (NodeStatus, error) {
	for {
		status, err := tickChild(ctx, d.child)
		if err != nil {
			d.count = 0
			return d.setStatus(Failure), err
		}

		switch status {
		case Success:
			d.count = 0
			return d.setStatus(Success), nil
		case Failure:
			d.count++
			d.child.Halt()
			if d.n != -1 && d.count >= d.n {
				d.count = 0
				return d.setStatus(Failure), nil
			}
			continue
		case Running:
			return d.setStatus(Running), nil
		case Skipped:
			return d.setStatus(Skipped), nil
		default:
			panic(fmt.Sprintf("ethogram: child of Retry %q returned impossible status %v", d.name, status))
		}
	}
}

func (d *Retry) Halt() {
	d.child.Halt()
	d.count = 0
	d.resetStatus()
}

// RunOnce ticks its child until it completes, then latches that first
// non-Running result and returns it on every later tick without
// re-ticking the child. Halt resets the latch (matching the spec's
// preferred default over the "survive halt" alternative).
type RunOnce struct {
	BaseNode
	child   Node
	latched bool
	result  NodeStatus
}

// NewRunOnce wraps child with a RunOnce decorator.
func NewRunOnce(name string, child Node) *RunOnce {
	return &RunOnce{BaseNode: NewBaseNode(name), child: child}
}

func (d *RunOnce) Children() []Node { return []Node{d.child} }
func (d *RunOnce) Type() NodeType   { return DecoratorNodeType }

func (d *RunOnce) Tick(ctx context.Context) (NodeStatus, error) {
	if d.latched {
		return d.setStatus(d.result), nil
	}

	status, err := tickChild(ctx, d.child)
	if err != nil {
		return d.setStatus(Failure), err
	}

	if status == Running {
		return d.setStatus(Running), nil
	}

	d.latched = true
	d.result = status
	return d.setStatus(status), nil
}

func (d *RunOnce) Halt() {
	d.child.Halt()
	d.latched = false
	d.resetStatus()
}

// KeepRunningUntilFailure turns a Success from its child into Running,
// effectively looping the child forever until it fails; Failure passes
// through, as does Running.
type KeepRunningUntilFailure struct {
	BaseNode
	child Node
}

// NewKeepRunningUntilFailure wraps child.
func NewKeepRunningUntilFailure(name string, child Node) *KeepRunningUntilFailure {
	return &KeepRunningUntilFailure{BaseNode: NewBaseNode(name), child: child}
}

func (d *KeepRunningUntilFailure) Children() []Node { return []Node{d.child} }
func (d *KeepRunningUntilFailure) Type() NodeType   { return DecoratorNodeType }

func (d *KeepRunningUntilFailure) Tick(ctx context.Context) (NodeStatus, error) {
	status, err := tickChild(ctx, d.child)
	if err != nil {
		return d.setStatus(Failure), err
	}
	if status == Success {
		d.child.Halt()
		return d.setStatus(Running), nil
	}
	return d.setStatus(status), nil
}

func (d *KeepRunningUntilFailure) Halt() {
	d.child.Halt()
	d.resetStatus()
}
