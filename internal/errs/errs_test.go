package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	se := Download("EXTRACT", "2025.01.01", "download failed", cause)

	require.Error(t, se)
	assert.Equal(t, KindDownload, se.Kind)
	assert.ErrorIs(t, se, cause)
	assert.Contains(t, se.Error(), "DownloadError")
	assert.Contains(t, se.Error(), "2025.01.01")
}

func TestIsWalksWrappedChain(t *testing.T) {
	inner := Config("LOAD", "2025.01.02", "missing key", nil)
	wrapped := fmt.Errorf("loading target: %w", inner)
	assert.True(t, Is(wrapped, KindConfig))
	assert.False(t, Is(wrapped, KindLoad))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(Config("CLI", "", "bad flag", nil)))
	assert.Equal(t, 3, ExitCode(Load("LOAD", "2025.01.01", "insert failed", nil)))
}
