package ethogram

import (
	"context"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	otlog "github.com/opentracing/opentracing-go/log"
	"github.com/sirupsen/logrus"
)

// TreeConfig holds a Tree's ticking configuration: how long to sleep
// between ticks under TickWhileRunning, an optional per-tick deadline,
// the tracer used for the root span, and an optional logger for
// per-tick summaries. Mirrors the teacher's run.go RunConfiguration,
// generalized from a one-shot Run call into an option set a Tree keeps
// around across many ticks.
type TreeConfig struct {
	tickRate    time.Duration
	tickTimeout time.Duration
	tracer      opentracing.Tracer
	logger      *logrus.Entry
}

func defaultTreeConfig() TreeConfig {
	return TreeConfig{
		tickRate: 250 * time.Millisecond,
		tracer:   &noopTracer,
	}
}

// TreeOption configures a Tree at construction time.
type TreeOption func(*TreeConfig)

// WithTickRate sets the interval TickWhileRunning sleeps between ticks.
func WithTickRate(d time.Duration) TreeOption {
	return func(c *TreeConfig) { c.tickRate = d }
}

// WithTickTimeout bounds each individual Tick call with a context
// deadline; zero (the default) means no per-tick deadline.
func WithTickTimeout(d time.Duration) TreeOption {
	return func(c *TreeConfig) { c.tickTimeout = d }
}

// WithTracer sets the opentracing.Tracer used for the root span of
// each tick. Mirrors the teacher's run.go WithTracer option.
func WithTracer(tracer opentracing.Tracer) TreeOption {
	return func(c *TreeConfig) { c.tracer = tracer }
}

// WithLogger attaches a logrus.Entry that receives one line per tick
// summarizing the resulting status. Parallel in spirit to WithTracer,
// but for plain structured logs rather than spans.
func WithLogger(logger *logrus.Entry) TreeOption {
	return func(c *TreeConfig) { c.logger = logger }
}

// Tree binds one behavior tree's root Node to the root Blackboard it
// runs against, plus the ticking configuration governing how it's
// driven. A Tree is normally obtained from Document.Build or
// Document.BuildMain; NewTree exists for building one directly from an
// already-assembled Node graph, e.g. in tests.
type Tree struct {
	id         string
	root       Node
	blackboard *Blackboard
	config     TreeConfig
}

// NewTree wraps root (and its blackboard) as a directly-driven Tree,
// bypassing the XML factory.
func NewTree(id string, root Node, bb *Blackboard, opts ...TreeOption) *Tree {
	cfg := defaultTreeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Tree{id: id, root: root, blackboard: bb, config: cfg}
}

// ID returns the tree's BehaviorTree identifier.
func (t *Tree) ID() string { return t.id }

// Root returns the tree's root Node.
func (t *Tree) Root() Node { return t.root }

// Blackboard returns the tree's root Blackboard.
func (t *Tree) Blackboard() *Blackboard { return t.blackboard }

// Status returns the root node's most recently observed status.
func (t *Tree) Status() NodeStatus { return t.root.Status() }

// TickOnce advances the tree exactly once and returns the resulting
// status. The tick is wrapped in a root span under t's configured
// tracer, mirroring the teacher's run.go per-tick opentracing.StartSpan
// usage, here lifted to span the whole tree rather than one loop body.
func (t *Tree) TickOnce(ctx context.Context) (NodeStatus, error) {
	if t.config.tickTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.tickTimeout)
		defer cancel()
	}

	span := t.config.tracer.StartSpan("ethogram::tick")
	ctx = opentracing.ContextWithSpan(ctx, span)
	defer span.Finish()

	status, err := t.root.Tick(ctx)

	span.LogFields(
		otlog.String("tree_id", t.id),
		otlog.String("status", status.String()),
	)
	if err != nil {
		span.LogFields(otlog.Error(err))
	}

	if t.config.logger != nil {
		entry := t.config.logger.WithFields(logrus.Fields{
			"tree_id": t.id,
			"status":  status.String(),
		})
		if err != nil {
			entry.WithError(err).Warn("tick completed with error")
		} else {
			entry.Debug("tick completed")
		}
	}

	return status, err
}

// TickWhileRunning repeatedly calls TickOnce, sleeping the configured
// tick rate between calls, until the tree returns a non-Running status,
// an error occurs, or ctx is cancelled. Mirrors the teacher's run.go
// Run loop (time.Tick-driven, context-cancellable), generalized to hang
// off a persistent Tree rather than a single free function call.
func (t *Tree) TickWhileRunning(ctx context.Context) (NodeStatus, error) {
	ticker := time.NewTicker(t.config.tickRate)
	defer ticker.Stop()

	for {
		status, err := t.TickOnce(ctx)
		if err != nil {
			return status, err
		}
		if status != Running {
			return status, nil
		}

		select {
		case <-ctx.Done():
			t.Halt()
			return t.root.Status(), ctx.Err()
		case <-ticker.C:
		}
	}
}

// Halt stops the tree's root node, recursively halting any
// in-progress descendants.
func (t *Tree) Halt() { t.root.Halt() }
