package ethogram_test

import (
	"testing"

	"github.com/rhizome-labs/ethogram"
	"github.com/stretchr/testify/assert"
)

func TestNodeStatus_Predicates(t *testing.T) {
	cases := []struct {
		status      ethogram.NodeStatus
		isActive    bool
		isCompleted bool
		isIdle      bool
		isSkipped   bool
	}{
		{ethogram.Idle, false, false, true, false},
		{ethogram.Running, true, false, false, false},
		{ethogram.Success, false, true, false, false},
		{ethogram.Failure, false, true, false, false},
		{ethogram.Skipped, false, false, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.isActive, tc.status.IsActive())
			assert.Equal(t, tc.isCompleted, tc.status.IsCompleted())
			assert.Equal(t, tc.isIdle, tc.status.IsIdle())
			assert.Equal(t, tc.isSkipped, tc.status.IsSkipped())
		})
	}
}

func TestSuccessAndFailureCount(t *testing.T) {
	statuses := []ethogram.NodeStatus{
		ethogram.Success, ethogram.Failure, ethogram.Success, ethogram.Skipped, ethogram.Running,
	}
	assert.Equal(t, 2, ethogram.SuccessCount(statuses))
	assert.Equal(t, 1, ethogram.FailureCount(statuses))
}
