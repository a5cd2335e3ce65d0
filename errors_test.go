package ethogram_test

import (
	"errors"
	"testing"

	"github.com/rhizome-labs/ethogram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNodeError(t *testing.T) {
	assert.Nil(t, ethogram.WrapNodeError("leaf", nil))

	base := errors.New("disk full")
	wrapped := ethogram.WrapNodeError("writer", base)
	require.Error(t, wrapped)
	require.ErrorIs(t, wrapped, base)

	var userErr *ethogram.NodeUserError
	require.ErrorAs(t, wrapped, &userErr)
	assert.Equal(t, "writer", userErr.NodeName)
	assert.Contains(t, wrapped.Error(), "writer")
	assert.Contains(t, wrapped.Error(), "disk full")
}
