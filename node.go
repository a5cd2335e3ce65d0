package ethogram

import "context"

// NodeType classifies a node for diagnostics and for the factory's
// children-allowed checks.
type NodeType int

const (
	// ActionNodeType is a childless leaf representing external work.
	ActionNodeType NodeType = iota
	// ControlNodeType is a composite orchestrating one or more children.
	ControlNodeType
	// DecoratorNodeType wraps exactly one child.
	DecoratorNodeType
	// SubTreeNodeType is a nested tree invoked by reference.
	SubTreeNodeType
)

func (t NodeType) String() string {
	switch t {
	case ActionNodeType:
		return "Action"
	case ControlNodeType:
		return "Control"
	case DecoratorNodeType:
		return "Decorator"
	case SubTreeNodeType:
		return "SubTree"
	default:
		return "Unknown"
	}
}

// Node is the uniform contract every behavior tree node satisfies.
//
// Tick advances the node and returns one of Running, Success, Failure
// or Skipped — never Idle. If Tick previously returned Running,
// subsequent calls resume the same in-progress work.
//
// Halt requests the node abort any in-progress work and reset its
// internal state; it must be idempotent and, for a node with running
// descendants, must recursively halt them before returning.
//
// Status returns the result of the most recent Tick, or Idle if the
// node has never been ticked.
type Node interface {
	Tick(ctx context.Context) (NodeStatus, error)
	Halt()
	Status() NodeStatus
	Type() NodeType
	Name() string
}

// BaseNode carries the bookkeeping common to every node: its name and
// the last status it returned. Concrete node types embed it rather than
// reimplementing Name/Status, matching the teacher's habit of composing
// small structs instead of building a deep inheritance chain.
type BaseNode struct {
	name   string
	status NodeStatus
}

// NewBaseNode constructs a BaseNode in the Idle state.
func NewBaseNode(name string) BaseNode {
	return BaseNode{name: name, status: Idle}
}

func (b *BaseNode) Name() string { return b.name }

func (b *BaseNode) Status() NodeStatus { return b.status }

func (b *BaseNode) setStatus(s NodeStatus) NodeStatus {
	b.status = s
	return s
}

func (b *BaseNode) resetStatus() { b.status = Idle }

// ActionFunc adapts a plain function into an Action Node: each Tick
// calls fn once and returns its status unchecked. An fn that returns
// Running therefore keeps the node Running across ticks, with fn called
// afresh on each of them; there is no separate start/resume dispatch
// (see StatefulActionNode for that). Mirrors the teacher's Task
// func(context.Context) Result wrapper.
type ActionFunc struct {
	BaseNode
	fn func(ctx context.Context) (NodeStatus, error)
}

// NewActionFunc wraps fn as a named synchronous action node.
func NewActionFunc(name string, fn func(ctx context.Context) (NodeStatus, error)) *ActionFunc {
	return &ActionFunc{BaseNode: NewBaseNode(name), fn: fn}
}

func (a *ActionFunc) Tick(ctx context.Context) (NodeStatus, error) {
	status, err := a.fn(ctx)
	if err != nil {
		return a.setStatus(Failure), WrapNodeError(a.name, err)
	}
	return a.setStatus(status), nil
}

func (a *ActionFunc) Halt()          { a.resetStatus() }
func (a *ActionFunc) Type() NodeType { return ActionNodeType }

// ConditionFunc adapts a boolean predicate into an Action Node that
// succeeds when the predicate is true and fails otherwise. Mirrors the
// teacher's Conditional func(context.Context) bool wrapper.
type ConditionFunc struct {
	BaseNode
	fn func(ctx context.Context) bool
}

// NewConditionFunc wraps fn as a named condition node.
func NewConditionFunc(name string, fn func(ctx context.Context) bool) *ConditionFunc {
	return &ConditionFunc{BaseNode: NewBaseNode(name), fn: fn}
}

func (c *ConditionFunc) Tick(ctx context.Context) (NodeStatus, error) {
	if c.fn(ctx) {
		return c.setStatus(Success), nil
	}
	return c.setStatus(Failure), nil
}

func (c *ConditionFunc) Halt()          { c.resetStatus() }
func (c *ConditionFunc) Type() NodeType { return ActionNodeType }

// StatefulAction is a leaf that naturally spans multiple ticks.
// OnStart is called the first time the node is entered from a
// non-Running state; OnRunning resumes a node already Running;
// OnHalted releases anything OnStart acquired.
type StatefulAction interface {
	OnStart(ctx context.Context) (NodeStatus, error)
	OnRunning(ctx context.Context) (NodeStatus, error)
	OnHalted()
}

// StatefulActionNode wraps a StatefulAction into the uniform Node
// contract, dispatching to OnStart or OnRunning depending on whether
// the node is resuming. Grounded on node_test.go's MaxTick: a leaf that
// carries its own counter and advances it tick over tick until it
// declares a terminal result.
type StatefulActionNode struct {
	BaseNode
	impl StatefulAction
}

// NewStatefulActionNode wraps impl as a named stateful action node.
func NewStatefulActionNode(name string, impl StatefulAction) *StatefulActionNode {
	return &StatefulActionNode{BaseNode: NewBaseNode(name), impl: impl}
}

func (s *StatefulActionNode) Tick(ctx context.Context) (NodeStatus, error) {
	var (
		status NodeStatus
		err    error
	)
	if s.status == Running {
		status, err = s.impl.OnRunning(ctx)
	} else {
		status, err = s.impl.OnStart(ctx)
	}
	if err != nil {
		return s.setStatus(Failure), WrapNodeError(s.name, err)
	}
	return s.setStatus(status), nil
}

func (s *StatefulActionNode) Halt() {
	if s.status == Running {
		s.impl.OnHalted()
	}
	s.resetStatus()
}

func (s *StatefulActionNode) Type() NodeType { return ActionNodeType }
