package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByDataTypePreservesOrder(t *testing.T) {
	records := []model.TargetRecord{
		&model.TradeTargetRecord{TradeID: "1"},
		&model.QuoteTargetRecord{MessageOffset: "1"},
		&model.TradeTargetRecord{TradeID: "2"},
	}

	grouped := groupByDataType(records)
	require.Len(t, grouped["trade"], 2)
	assert.Equal(t, "1", grouped["trade"][0].(*model.TradeTargetRecord).TradeID)
	assert.Equal(t, "2", grouped["trade"][1].(*model.TradeTargetRecord).TradeID)
	require.Len(t, grouped["quote"], 1)
}

func TestBuildRowsOrdersValuesByColumn(t *testing.T) {
	rec := &model.TradeTargetRecord{ExchProductID: "ABC.IB", TradeID: "T1", BusinessDate: "2025.01.01"}
	columns := []string{"trade_id", "exch_product_id"}

	rows := buildRows([]model.TargetRecord{rec}, columns)
	require.Len(t, rows, 1)
	assert.Equal(t, "T1", rows[0][0])
	assert.Equal(t, "ABC.IB", rows[0][1])
}

func TestInitRejectsNilConnection(t *testing.T) {
	l := NewColumnarLoader(t.TempDir(), "tgt")
	err := l.Init(model.TargetConfig{}, nil)
	require.Error(t, err)
}

func TestShutdownOnlyRemovesOwnSpillSubdirectory(t *testing.T) {
	tempRoot := t.TempDir()
	sentinel := filepath.Join(tempRoot, "extract-source-a")
	require.NoError(t, os.MkdirAll(sentinel, 0o755))

	a := NewColumnarLoader(tempRoot, "target-a")
	b := NewColumnarLoader(tempRoot, "target-b")
	require.NoError(t, os.MkdirAll(a.sortTemp, 0o755))
	require.NoError(t, os.MkdirAll(b.sortTemp, 0o755))

	require.NoError(t, a.Shutdown())

	_, err := os.Stat(a.sortTemp)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(b.sortTemp)
	assert.NoError(t, err, "shutting down one target's loader must not remove another target's spill directory")
	_, err = os.Stat(sentinel)
	assert.NoError(t, err, "shutting down a loader must not remove the shared run-wide temp root")
}
