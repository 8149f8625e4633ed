package objectstore

import (
	"testing"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeCheckRejectsOverCeiling(t *testing.T) {
	err := SizeCheck(model.FileMetadata{Key: "k", Size: 101}, 100)
	require.Error(t, err)
}

func TestSizeCheckAcceptsAtCeiling(t *testing.T) {
	assert.NoError(t, SizeCheck(model.FileMetadata{Key: "k", Size: 100}, 100))
}

func TestSizeCheckNoLimitWhenCeilingZero(t *testing.T) {
	assert.NoError(t, SizeCheck(model.FileMetadata{Key: "k", Size: 1 << 40}, 0))
}
