package ethogram

import (
	"context"
	"fmt"
	"sync"
)

// Manager keeps a keyed collection of independently-ticked Trees,
// pruning each one out once it reaches a terminal status. Generalizes
// Solifugus-teraglest's BehaviorTreeManager (map[int]*BehaviorTree,
// SetBehaviorTree/Update/GetActiveTrees) from an int-keyed,
// game-entity-specific registry to one keyed by any comparable type,
// matching this package's generic style elsewhere (Get, GetInput).
type Manager[K comparable] struct {
	mu    sync.Mutex
	trees map[K]*Tree
}

// NewManager creates an empty Manager.
func NewManager[K comparable]() *Manager[K] {
	return &Manager[K]{trees: make(map[K]*Tree)}
}

// Add registers tree under key, replacing (and halting) whatever tree
// previously held that key.
func (m *Manager[K]) Add(key K, tree *Tree) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.trees[key]; ok {
		existing.Halt()
	}
	m.trees[key] = tree
}

// Remove halts and removes the tree registered under key, if any.
func (m *Manager[K]) Remove(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tree, ok := m.trees[key]; ok {
		tree.Halt()
		delete(m.trees, key)
	}
}

// Get returns the tree registered under key, if any.
func (m *Manager[K]) Get(key K) (*Tree, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tree, ok := m.trees[key]
	return tree, ok
}

// Has reports whether a tree is registered under key.
func (m *Manager[K]) Has(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.trees[key]
	return ok
}

// Keys returns every key currently registered.
func (m *Manager[K]) Keys() []K {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]K, 0, len(m.trees))
	for k := range m.trees {
		keys = append(keys, k)
	}
	return keys
}

// TickResult pairs a managed tree's key with the status its tick
// produced, or the error it returned.
type TickResult[K comparable] struct {
	Key    K
	Status NodeStatus
	Err    error
}

// TickAll ticks every registered tree once, pruning out any that
// complete (non-Running) or error, and returns one TickResult per tree
// that was ticked this round. Mirrors the teacher analogue's per-update
// sweep that drops finished trees from its map.
func (m *Manager[K]) TickAll(ctx context.Context) []TickResult[K] {
	m.mu.Lock()
	snapshot := make(map[K]*Tree, len(m.trees))
	for k, t := range m.trees {
		snapshot[k] = t
	}
	m.mu.Unlock()

	results := make([]TickResult[K], 0, len(snapshot))
	for key, tree := range snapshot {
		status, err := tree.TickOnce(ctx)
		results = append(results, TickResult[K]{Key: key, Status: status, Err: err})

		if err != nil || status != Running {
			m.Remove(key)
		}
	}
	return results
}

// ActiveTrees returns the keys of every tree whose most recent status
// is Running (or that has not yet ticked).
func (m *Manager[K]) ActiveTrees() []K {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := make([]K, 0, len(m.trees))
	for k, t := range m.trees {
		if t.Status() == Running || t.Status() == Idle {
			active = append(active, k)
		}
	}
	return active
}

// String renders a short summary of the manager's contents, useful in
// logs.
func (m *Manager[K]) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("Manager(%d trees)", len(m.trees))
}
