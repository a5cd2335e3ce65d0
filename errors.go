package ethogram

import (
	"errors"
	"fmt"
)

// Build-time error sentinels (spec.md §7). These abort tree
// construction; wrap them with fmt.Errorf("...: %w", Err...) for
// context and compare with errors.Is.
var (
	ErrXMLMalformed       = errors.New("ethogram: malformed xml document")
	ErrUnknownNodeType    = errors.New("ethogram: unknown node type")
	ErrMissingSubTree     = errors.New("ethogram: subtree id not registered")
	ErrCyclicSubTree      = errors.New("ethogram: cyclic subtree reference")
	ErrBadAttribute       = errors.New("ethogram: invalid node attribute")
	ErrChildrenNotAllowed = errors.New("ethogram: node type does not accept children")
	ErrWrongChildCount    = errors.New("ethogram: wrong number of children")
)

// Runtime error sentinels (spec.md §7).
var (
	ErrPortNotProvided       = errors.New("ethogram: port not provided")
	ErrPortNotWritable       = errors.New("ethogram: port not writable")
	ErrBlackboardKeyMissing  = errors.New("ethogram: blackboard key missing")
	ErrBlackboardTypeMismatch = errors.New("ethogram: blackboard type mismatch")
	ErrParseError            = errors.New("ethogram: parse error")
)

// NodeUserError wraps an error returned by a leaf action, keeping it
// distinguishable from the engine's own runtime errors while preserving
// the original error for errors.Is/errors.As.
type NodeUserError struct {
	NodeName string
	Err      error
}

func (e *NodeUserError) Error() string {
	return fmt.Sprintf("ethogram: node %q: %v", e.NodeName, e.Err)
}

func (e *NodeUserError) Unwrap() error {
	return e.Err
}

// WrapNodeError wraps err as a NodeUserError attributed to nodeName. It
// returns nil if err is nil.
func WrapNodeError(nodeName string, err error) error {
	if err == nil {
		return nil
	}
	return &NodeUserError{NodeName: nodeName, Err: err}
}
