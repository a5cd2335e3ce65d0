package ethogram

import "context"

// Noop always succeeds without doing anything; useful as a placeholder
// leaf or as the child of a decorator exercised purely for its
// transform. Mirrors the teacher's constructs.go Noop.
var Noop = NewActionFunc("Noop", func(_ context.Context) (NodeStatus, error) {
	return Success, nil
})

// Label wraps node so that it reports name instead of its own Name(),
// useful for giving an anonymous leaf a readable identity when printed
// or traced. Mirrors the teacher's Label, built there on a no-op
// Decorator; here a ForceSuccess-shaped passthrough would alter
// status, so Label instead holds the child directly and only
// overrides the name.
type Label struct {
	BaseNode
	child Node
}

// NewLabel renames child's reported identity to name without altering
// its tick semantics.
func NewLabel(name string, child Node) *Label {
	return &Label{BaseNode: NewBaseNode(name), child: child}
}

func (l *Label) Children() []Node { return []Node{l.child} }
func (l *Label) Type() NodeType   { return DecoratorNodeType }

func (l *Label) Tick(ctx context.Context) (NodeStatus, error) {
	status, err := tickChild(ctx, l.child)
	return l.setStatus(status), err
}

func (l *Label) Halt() {
	l.child.Halt()
	l.resetStatus()
}

// Ternary builds the classic "if predicate then whenTrue else
// whenFalse" subtree as an IfThenElse, mirroring the teacher's Ternary
// sugar (there built from Fallback(Sequence(predicate, whenTrue),
// whenFalse); IfThenElse is the direct, reactivity-correct primitive
// for the same idea here).
func Ternary(name string, predicate, whenTrue, whenFalse Node) Node {
	return NewIfThenElse(name, predicate, whenTrue, whenFalse)
}
