package ethogram_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rhizome-labs/ethogram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionFunc_Simple(t *testing.T) {
	task := ethogram.NewActionFunc("simple", func(_ context.Context) (ethogram.NodeStatus, error) {
		return ethogram.Success, nil
	})

	status, err := task.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, ethogram.Success, status)
	require.Equal(t, ethogram.Success, task.Status())
}

func TestActionFunc_WrapsUnderlyingError(t *testing.T) {
	boom := errors.New("boom")
	task := ethogram.NewActionFunc("failing", func(_ context.Context) (ethogram.NodeStatus, error) {
		return ethogram.Failure, boom
	})

	status, err := task.Tick(context.Background())
	require.Equal(t, ethogram.Failure, status)
	require.Error(t, err)
	require.ErrorIs(t, err, boom)

	var userErr *ethogram.NodeUserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "failing", userErr.NodeName)
}

func TestConditionFunc(t *testing.T) {
	cond := ethogram.NewConditionFunc("cond", func(_ context.Context) bool {
		return false
	})
	status, err := cond.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, ethogram.Failure, status)

	cond = ethogram.NewConditionFunc("cond", func(_ context.Context) bool {
		return true
	})
	status, err = cond.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, ethogram.Success, status)
}

// maxTick is a StatefulAction that succeeds once it has been entered
// max times, counting across OnStart/OnRunning calls. Grounded on the
// teacher's own node_test.go MaxTick leaf.
type maxTick struct {
	counter int
	max     int
}

func (m *maxTick) OnStart(_ context.Context) (ethogram.NodeStatus, error) {
	return m.tick()
}

func (m *maxTick) OnRunning(_ context.Context) (ethogram.NodeStatus, error) {
	return m.tick()
}

func (m *maxTick) OnHalted() {}

func (m *maxTick) tick() (ethogram.NodeStatus, error) {
	if m.counter >= m.max {
		return ethogram.Success, nil
	}
	m.counter++
	return ethogram.Running, nil
}

func TestStatefulActionNode_RunsUntilMax(t *testing.T) {
	impl := &maxTick{max: 10}
	node := ethogram.NewStatefulActionNode("counter", impl)

	ctx := context.Background()
	var status ethogram.NodeStatus
	var err error
	for i := 0; i < 100; i++ {
		status, err = node.Tick(ctx)
		require.NoError(t, err)
		if status == ethogram.Success {
			break
		}
	}

	require.Equal(t, ethogram.Success, status)
	assert.Equal(t, 10, impl.counter)
}

func TestStatefulActionNode_HaltDuringRunningInvokesOnHalted(t *testing.T) {
	var haltCalls int
	impl := &haltingAction{onHalt: func() { haltCalls++ }}
	node := ethogram.NewStatefulActionNode("halter", impl)

	status, err := node.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, ethogram.Running, status)

	node.Halt()
	assert.Equal(t, 1, haltCalls)
	assert.Equal(t, ethogram.Idle, node.Status())
}

type haltingAction struct {
	onHalt func()
}

func (h *haltingAction) OnStart(_ context.Context) (ethogram.NodeStatus, error) {
	return ethogram.Running, nil
}

func (h *haltingAction) OnRunning(_ context.Context) (ethogram.NodeStatus, error) {
	return ethogram.Running, nil
}

func (h *haltingAction) OnHalted() { h.onHalt() }

// terminatingAction completes on its first tick, with result/err fixed
// at construction, so tests can check OnHalted's call count on both
// natural-success and natural-error paths.
type terminatingAction struct {
	status ethogram.NodeStatus
	err    error
	onHalt func()
}

func (t *terminatingAction) OnStart(_ context.Context) (ethogram.NodeStatus, error) {
	return t.status, t.err
}

func (t *terminatingAction) OnRunning(_ context.Context) (ethogram.NodeStatus, error) {
	return t.status, t.err
}

func (t *terminatingAction) OnHalted() { t.onHalt() }

func TestStatefulActionNode_OnHaltedNotCalledOnNaturalSuccess(t *testing.T) {
	var haltCalls int
	impl := &terminatingAction{status: ethogram.Success, onHalt: func() { haltCalls++ }}
	node := ethogram.NewStatefulActionNode("done", impl)

	status, err := node.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, ethogram.Success, status)
	assert.Equal(t, 0, haltCalls)

	node.Halt()
	assert.Equal(t, 0, haltCalls, "Halt() after a terminal status must not re-invoke OnHalted")
}

func TestStatefulActionNode_OnHaltedNotCalledOnNaturalError(t *testing.T) {
	var haltCalls int
	impl := &terminatingAction{status: ethogram.Failure, err: errors.New("boom"), onHalt: func() { haltCalls++ }}
	node := ethogram.NewStatefulActionNode("erroring", impl)

	_, err := node.Tick(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, haltCalls)
}
