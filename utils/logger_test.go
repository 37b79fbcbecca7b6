package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	prod, err := NewLogger("production", "")
	require.NoError(t, err)
	assert.True(t, prod.Core().Enabled(zap.InfoLevel))
	assert.False(t, prod.Core().Enabled(zap.DebugLevel))

	dev, err := NewLogger("development", "")
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))

	quiet, err := NewLogger("development", "warn")
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zap.InfoLevel))

	fallback, err := NewLogger("production", "loud")
	require.NoError(t, err)
	assert.True(t, fallback.Core().Enabled(zap.InfoLevel))
}
