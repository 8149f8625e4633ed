package bizdate

import (
	"testing"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeInclusiveAscending(t *testing.T) {
	dates, err := Range("20250101", "20250103")
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "20250101", dates[0].CLIString())
	assert.Equal(t, "20250102", dates[1].CLIString())
	assert.Equal(t, "20250103", dates[2].CLIString())
	assert.Equal(t, "2025.01.01", dates[0].RecordString())
}

func TestRangeSingleDay(t *testing.T) {
	dates, err := Range("20250101", "20250101")
	require.NoError(t, err)
	assert.Len(t, dates, 1)
}

func TestRangeFromAfterTo(t *testing.T) {
	_, err := Range("20250105", "20250101")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))
}

func TestRangeMalformed(t *testing.T) {
	_, err := Range("2025-01-01", "20250101")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConfig))
}
