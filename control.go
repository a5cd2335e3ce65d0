package ethogram

import (
	"context"
	"fmt"
)

func haltAll(children []Node) {
	for _, c := range children {
		c.Halt()
	}
}

func haltFrom(children []Node, from int) {
	for i := from; i < len(children); i++ {
		children[i].Halt()
	}
}

func tickChild(ctx context.Context, child Node) (NodeStatus, error) {
	return tickTraced(ctx, child.Name(), child.Tick)
}

// Sequence ticks children left-to-right starting from wherever it last
// left off. A Success or Skipped child advances the cursor; a Failure
// halts every child and resets the cursor; a Running child holds the
// cursor in place so the next tick resumes there. Generalizes the
// teacher's Sequence (node.go), which always restarts from index 0 —
// that behavior survives here as ReactiveSequence.
type Sequence struct {
	BaseNode
	children []Node
	current  int
}

// NewSequence constructs a Sequence over children.
func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{BaseNode: NewBaseNode(name), children: children}
}

func (s *Sequence) Children() []Node { return s.children }
func (s *Sequence) Type() NodeType   { return ControlNodeType }

func (s *Sequence) Tick(ctx context.Context) (NodeStatus, error) {
	for s.current < len(s.children) {
		status, err := tickChild(ctx, s.children[s.current])
		if err != nil {
			return s.setStatus(Failure), err
		}

		switch status {
		case Success, Skipped:
			s.current++
		case Failure:
			haltAll(s.children)
			s.current = 0
			return s.setStatus(Failure), nil
		case Running:
			return s.setStatus(Running), nil
		default:
			panic(fmt.Sprintf("ethogram: child %q of Sequence %q returned impossible status %v", s.children[s.current].Name(), s.name, status))
		}
	}

	s.current = 0
	return s.setStatus(Success), nil
}

func (s *Sequence) Halt() {
	haltAll(s.children)
	s.current = 0
	s.resetStatus()
}

// SequenceStar behaves like Sequence but does not reset its cursor on
// Failure; it resets only on a terminal Success, so a retried Sequence
// resumes from the child that failed rather than from the start.
type SequenceStar struct {
	BaseNode
	children []Node
	current  int
}

// NewSequenceStar constructs a SequenceStar over children.
func NewSequenceStar(name string, children ...Node) *SequenceStar {
	return &SequenceStar{BaseNode: NewBaseNode(name), children: children}
}

func (s *SequenceStar) Children() []Node { return s.children }
func (s *SequenceStar) Type() NodeType   { return ControlNodeType }

func (s *SequenceStar) Tick(ctx context.Context) (NodeStatus, error) {
	for s.current < len(s.children) {
		status, err := tickChild(ctx, s.children[s.current])
		if err != nil {
			return s.setStatus(Failure), err
		}

		switch status {
		case Success, Skipped:
			s.current++
		case Failure:
			haltAll(s.children)
			return s.setStatus(Failure), nil
		case Running:
			return s.setStatus(Running), nil
		default:
			panic(fmt.Sprintf("ethogram: child %q of SequenceStar %q returned impossible status %v", s.children[s.current].Name(), s.name, status))
		}
	}

	s.current = 0
	return s.setStatus(Success), nil
}

func (s *SequenceStar) Halt() {
	haltAll(s.children)
	s.current = 0
	s.resetStatus()
}

// ReactiveSequence restarts evaluation from child 0 on every tick.
// Directly grounded on the teacher's Sequence (node.go): left-to-right,
// first non-Success short-circuits, with no cursor memory at all.
type ReactiveSequence struct {
	BaseNode
	children []Node
}

// NewReactiveSequence constructs a ReactiveSequence over children.
func NewReactiveSequence(name string, children ...Node) *ReactiveSequence {
	return &ReactiveSequence{BaseNode: NewBaseNode(name), children: children}
}

func (r *ReactiveSequence) Children() []Node { return r.children }
func (r *ReactiveSequence) Type() NodeType   { return ControlNodeType }

func (r *ReactiveSequence) Tick(ctx context.Context) (NodeStatus, error) {
	for i, child := range r.children {
		status, err := tickChild(ctx, child)
		if err != nil {
			haltFrom(r.children, 0)
			return r.setStatus(Failure), err
		}

		switch status {
		case Success, Skipped:
			// neutral; continue
		case Failure:
			haltAll(r.children)
			return r.setStatus(Failure), nil
		case Running:
			haltFrom(r.children, i+1)
			return r.setStatus(Running), nil
		default:
			panic(fmt.Sprintf("ethogram: child %q of ReactiveSequence %q returned impossible status %v", child.Name(), r.name, status))
		}
	}

	return r.setStatus(Success), nil
}

func (r *ReactiveSequence) Halt() {
	haltAll(r.children)
	r.resetStatus()
}

// Fallback (a.k.a. Selector) ticks children left-to-right; a Failure
// advances the cursor, a Success terminates the whole node with
// Success, and Failure from every child yields Failure.
type Fallback struct {
	BaseNode
	children []Node
	current  int
}

// NewFallback constructs a Fallback over children.
func NewFallback(name string, children ...Node) *Fallback {
	return &Fallback{BaseNode: NewBaseNode(name), children: children}
}

func (f *Fallback) Children() []Node { return f.children }
func (f *Fallback) Type() NodeType   { return ControlNodeType }

func (f *Fallback) Tick(ctx context.Context) (NodeStatus, error) {
	sawNonSkip := false

	for f.current < len(f.children) {
		status, err := tickChild(ctx, f.children[f.current])
		if err != nil {
			return f.setStatus(Failure), err
		}

		switch status {
		case Success:
			haltAll(f.children)
			f.current = 0
			return f.setStatus(Success), nil
		case Failure:
			sawNonSkip = true
			f.current++
		case Skipped:
			f.current++
		case Running:
			return f.setStatus(Running), nil
		default:
			panic(fmt.Sprintf("ethogram: child %q of Fallback %q returned impossible status %v", f.children[f.current].Name(), f.name, status))
		}
	}

	f.current = 0
	if !sawNonSkip {
		return f.setStatus(Success), nil
	}
	return f.setStatus(Failure), nil
}

func (f *Fallback) Halt() {
	haltAll(f.children)
	f.current = 0
	f.resetStatus()
}

// ReactiveFallback is the dual of ReactiveSequence: it restarts
// evaluation from child 0 on every tick.
type ReactiveFallback struct {
	BaseNode
	children []Node
}

// NewReactiveFallback constructs a ReactiveFallback over children.
func NewReactiveFallback(name string, children ...Node) *ReactiveFallback {
	return &ReactiveFallback{BaseNode: NewBaseNode(name), children: children}
}

func (r *ReactiveFallback) Children() []Node { return r.children }
func (r *ReactiveFallback) Type() NodeType   { return ControlNodeType }

func (r *ReactiveFallback) Tick(ctx context.Context) (NodeStatus, error) {
	sawNonSkip := false

	for i, child := range r.children {
		status, err := tickChild(ctx, child)
		if err != nil {
			haltFrom(r.children, 0)
			return r.setStatus(Failure), err
		}

		switch status {
		case Success:
			haltAll(r.children)
			return r.setStatus(Success), nil
		case Failure:
			sawNonSkip = true
		case Skipped:
			// neutral; continue
		case Running:
			haltFrom(r.children, i+1)
			return r.setStatus(Running), nil
		default:
			panic(fmt.Sprintf("ethogram: child %q of ReactiveFallback %q returned impossible status %v", child.Name(), r.name, status))
		}
	}

	if !sawNonSkip {
		return r.setStatus(Success), nil
	}
	return r.setStatus(Failure), nil
}

func (r *ReactiveFallback) Halt() {
	haltAll(r.children)
	r.resetStatus()
}

// IfThenElse ticks a 2- or 3-child composite: children[0] is the
// condition, children[1] the "then" branch, and an optional children[2]
// the "else" branch. Once a branch starts Running, subsequent ticks
// continue that branch without re-evaluating the condition until it
// terminates.
type IfThenElse struct {
	BaseNode
	children     []Node
	activeBranch int // -1 when no branch is mid-flight
}

// NewIfThenElse constructs an IfThenElse. children must have length 2
// or 3; any other length is a programming error and panics.
func NewIfThenElse(name string, children ...Node) *IfThenElse {
	if len(children) != 2 && len(children) != 3 {
		panic(fmt.Sprintf("ethogram: IfThenElse %q requires 2 or 3 children, got %d", name, len(children)))
	}
	return &IfThenElse{BaseNode: NewBaseNode(name), children: children, activeBranch: -1}
}

func (i *IfThenElse) Children() []Node { return i.children }
func (i *IfThenElse) Type() NodeType   { return ControlNodeType }

func (i *IfThenElse) Tick(ctx context.Context) (NodeStatus, error) {
	if i.activeBranch != -1 {
		status, err := tickChild(ctx, i.children[i.activeBranch])
		if err != nil {
			i.activeBranch = -1
			return i.setStatus(Failure), err
		}
		if status == Running {
			return i.setStatus(Running), nil
		}
		i.activeBranch = -1
		return i.setStatus(status), nil
	}

	condStatus, err := tickChild(ctx, i.children[0])
	if err != nil {
		return i.setStatus(Failure), err
	}

	switch condStatus {
	case Running:
		return i.setStatus(Running), nil
	case Success:
		return i.tickBranch(ctx, 1)
	case Failure:
		if len(i.children) > 2 {
			return i.tickBranch(ctx, 2)
		}
		return i.setStatus(Failure), nil
	default:
		panic(fmt.Sprintf("ethogram: condition of IfThenElse %q returned impossible status %v", i.name, condStatus))
	}
}

func (i *IfThenElse) tickBranch(ctx context.Context, idx int) (NodeStatus, error) {
	status, err := tickChild(ctx, i.children[idx])
	if err != nil {
		return i.setStatus(Failure), err
	}
	if status == Running {
		i.activeBranch = idx
	}
	return i.setStatus(status), nil
}

func (i *IfThenElse) Halt() {
	haltAll(i.children)
	i.activeBranch = -1
	i.resetStatus()
}

// WhileDoElse behaves like IfThenElse but re-evaluates the condition
// every tick; if the condition's outcome changes while a branch is
// Running, that branch is halted before switching.
type WhileDoElse struct {
	BaseNode
	children     []Node
	activeBranch int
}

// NewWhileDoElse constructs a WhileDoElse. children must have length 2
// or 3; any other length is a programming error and panics.
func NewWhileDoElse(name string, children ...Node) *WhileDoElse {
	if len(children) != 2 && len(children) != 3 {
		panic(fmt.Sprintf("ethogram: WhileDoElse %q requires 2 or 3 children, got %d", name, len(children)))
	}
	return &WhileDoElse{BaseNode: NewBaseNode(name), children: children, activeBranch: -1}
}

func (w *WhileDoElse) Children() []Node { return w.children }
func (w *WhileDoElse) Type() NodeType   { return ControlNodeType }

func (w *WhileDoElse) Tick(ctx context.Context) (NodeStatus, error) {
	condStatus, err := tickChild(ctx, w.children[0])
	if err != nil {
		return w.setStatus(Failure), err
	}
	if condStatus == Running {
		return w.setStatus(Running), nil
	}

	wantBranch := -1
	switch condStatus {
	case Success:
		wantBranch = 1
	case Failure:
		if len(w.children) > 2 {
			wantBranch = 2
		}
	default:
		panic(fmt.Sprintf("ethogram: condition of WhileDoElse %q returned impossible status %v", w.name, condStatus))
	}

	if w.activeBranch != -1 && w.activeBranch != wantBranch {
		w.children[w.activeBranch].Halt()
		w.activeBranch = -1
	}

	if wantBranch == -1 {
		return w.setStatus(Failure), nil
	}

	status, err := tickChild(ctx, w.children[wantBranch])
	if err != nil {
		w.activeBranch = -1
		return w.setStatus(Failure), err
	}
	if status == Running {
		w.activeBranch = wantBranch
	} else {
		w.activeBranch = -1
	}
	return w.setStatus(status), nil
}

func (w *WhileDoElse) Halt() {
	haltAll(w.children)
	w.activeBranch = -1
	w.resetStatus()
}

// Parallel ticks every not-yet-completed child each tick. Once
// successCount reaches successThreshold it halts the remaining running
// children and returns Success; once failureCount reaches
// failureThreshold — or the remaining children can no longer possibly
// reach successThreshold — it halts and returns Failure. Completing a
// round (a terminal Success/Failure for the node) resets the per-child
// completed bitmap. Generalizes the teacher's Parallel (node.go), which
// re-ticks every child unconditionally every call; that behavior
// survives here as ParallelAll.
type Parallel struct {
	BaseNode
	children         []Node
	successThreshold int
	failureThreshold int
	completed        []bool
	results          []NodeStatus
}

// NewParallel constructs a Parallel over children. A non-positive
// successThreshold or failureThreshold defaults to len(children), per
// spec.
func NewParallel(name string, successThreshold, failureThreshold int, children ...Node) *Parallel {
	if successThreshold <= 0 {
		successThreshold = len(children)
	}
	if failureThreshold <= 0 {
		failureThreshold = len(children)
	}
	return &Parallel{
		BaseNode:         NewBaseNode(name),
		children:         children,
		successThreshold: successThreshold,
		failureThreshold: failureThreshold,
	}
}

func (p *Parallel) Children() []Node { return p.children }
func (p *Parallel) Type() NodeType   { return ControlNodeType }

func (p *Parallel) ensureRound() {
	if p.completed == nil {
		p.completed = make([]bool, len(p.children))
		p.results = make([]NodeStatus, len(p.children))
		for i := range p.results {
			p.results[i] = Idle
		}
	}
}

func (p *Parallel) resetRound() {
	p.completed = nil
	p.results = nil
}

func (p *Parallel) Tick(ctx context.Context) (NodeStatus, error) {
	p.ensureRound()

	for i, child := range p.children {
		if p.completed[i] {
			continue
		}
		status, err := tickChild(ctx, child)
		if err != nil {
			return p.setStatus(Failure), err
		}
		p.results[i] = status
		if status == Success || status == Failure {
			p.completed[i] = true
		}
	}

	successCount := SuccessCount(p.results)
	failureCount := FailureCount(p.results)
	remainingPossibleSuccesses := len(p.children) - failureCount

	// Failure is checked first: a round that satisfies both thresholds
	// simultaneously (success_threshold + failure_threshold <=
	// len(children)) breaks the tie toward Failure.
	if failureCount >= p.failureThreshold || remainingPossibleSuccesses < p.successThreshold {
		p.haltIncomplete()
		p.resetRound()
		return p.setStatus(Failure), nil
	}

	if successCount >= p.successThreshold {
		p.haltIncomplete()
		p.resetRound()
		return p.setStatus(Success), nil
	}

	return p.setStatus(Running), nil
}

func (p *Parallel) haltIncomplete() {
	for i, child := range p.children {
		if !p.completed[i] {
			child.Halt()
		}
	}
}

func (p *Parallel) Halt() {
	haltAll(p.children)
	p.resetRound()
	p.resetStatus()
}

// ParallelAll ticks every child every round regardless of prior
// completion. It returns Success iff every child has ultimately
// succeeded this round, Failure as soon as any child fails, else
// Running. Directly grounded on the teacher's Parallel (node.go),
// which already re-ticks every child unconditionally on every call.
type ParallelAll struct {
	BaseNode
	children []Node
}

// NewParallelAll constructs a ParallelAll over children.
func NewParallelAll(name string, children ...Node) *ParallelAll {
	return &ParallelAll{BaseNode: NewBaseNode(name), children: children}
}

func (p *ParallelAll) Children() []Node { return p.children }
func (p *ParallelAll) Type() NodeType   { return ControlNodeType }

func (p *ParallelAll) Tick(ctx context.Context) (NodeStatus, error) {
	statuses := make([]NodeStatus, len(p.children))
	for i, child := range p.children {
		status, err := tickChild(ctx, child)
		if err != nil {
			return p.setStatus(Failure), err
		}
		statuses[i] = status
	}

	if FailureCount(statuses) > 0 {
		haltAll(p.children)
		return p.setStatus(Failure), nil
	}

	if SuccessCount(statuses) == len(p.children) {
		return p.setStatus(Success), nil
	}

	return p.setStatus(Running), nil
}

func (p *ParallelAll) Halt() {
	haltAll(p.children)
	p.resetStatus()
}
