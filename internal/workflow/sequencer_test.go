package workflow

import (
	"testing"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertTransformPreconditionRequiresExtractSuccess(t *testing.T) {
	ctx := model.NewContext("2025.01.01", &model.Configuration{})
	require.Error(t, assertTransformPrecondition(ctx))

	ctx.ExtractSucceeded = true
	assert.NoError(t, assertTransformPrecondition(ctx))
}

func TestAssertCleanPreconditionRequiresValidation(t *testing.T) {
	ctx := model.NewContext("2025.01.01", &model.Configuration{})
	require.Error(t, assertCleanPrecondition(ctx))
	ctx.ValidationPassed = true
	assert.NoError(t, assertCleanPrecondition(ctx))
}

func TestFilterByTargetSelectsMatchingDataTypes(t *testing.T) {
	records := []model.TargetRecord{
		&model.QuoteTargetRecord{MessageOffset: "1"},
		&model.TradeTargetRecord{TradeID: "1"},
	}
	tgt := model.TargetConfig{TargetTableMappings: map[string]string{"quote": "quote_table"}}

	filtered := filterByTarget(records, tgt)
	require.Len(t, filtered, 1)
	assert.Equal(t, "quote", filtered[0].DataType())
}

func TestWrapStageErrPreservesExistingStageError(t *testing.T) {
	original := errs.Load("LOAD", "2025.01.01", "boom", nil)
	wrapped := wrapStageErr(original, "LOAD", "2025.01.01")
	assert.Same(t, original, wrapped)
}

func TestProgressTrackerCutoffStopsAtFirstFailure(t *testing.T) {
	tr := newProgressTracker()
	tr.markLoaded("2025.01.01")
	tr.markLoaded("2025.01.02")
	assert.Equal(t, "2025.01.02", tr.currentCutoff())

	tr.markFailed("2025.01.03")
	assert.Equal(t, "2025.01.02", tr.currentCutoff())
}
