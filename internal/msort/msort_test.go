package msort

import (
	"testing"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trade(id, receiveTime string) model.TargetRecord {
	return &model.TradeTargetRecord{ExchProductID: "ABC.IB", TradeID: id, BusinessDate: "2025.01.01", ReceiveTime: receiveTime}
}

func TestSortInMemoryStableByReceiveTime(t *testing.T) {
	records := []model.TargetRecord{
		trade("3", "2025-01-01T10:00:02"),
		trade("1", "2025-01-01T10:00:00"),
		trade("2", "2025-01-01T10:00:01"),
	}

	sorted, err := Sort(records, []string{"receive_time"}, 0, t.TempDir(), nil)
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, "1", sorted[0].(*model.TradeTargetRecord).TradeID)
	assert.Equal(t, "3", sorted[2].(*model.TradeTargetRecord).TradeID)
}

func TestSortDropsRecordsMissingAllSortKeys(t *testing.T) {
	records := []model.TargetRecord{
		trade("1", ""),
		trade("2", "2025-01-01T10:00:00"),
	}

	sorted, err := Sort(records, []string{"receive_time"}, 0, t.TempDir(), nil)
	require.NoError(t, err)
	require.Len(t, sorted, 1)
	assert.Equal(t, "2", sorted[0].(*model.TradeTargetRecord).TradeID)
}

func TestSortSpillsAndMergesWhenOverCeiling(t *testing.T) {
	var records []model.TargetRecord
	for i := 9; i >= 0; i-- {
		records = append(records, trade(string(rune('a'+i)), string(rune('a'+i))))
	}

	// Force a tiny ceiling (512 bytes, one record's estimate) so every
	// record becomes its own run.
	sorted, err := Sort(records, []string{"receive_time"}, 512, t.TempDir(), nil)
	require.NoError(t, err)
	require.Len(t, sorted, 10)
	for i := 0; i < len(sorted)-1; i++ {
		a := sorted[i].(*model.TradeTargetRecord).ReceiveTime
		b := sorted[i+1].(*model.TradeTargetRecord).ReceiveTime
		assert.LessOrEqual(t, a, b)
	}
}
