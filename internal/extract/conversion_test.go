package extract

import (
	"testing"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLevelFoldsBidAndOfferIntoSingleRecord(t *testing.T) {
	rec := &model.QuoteSourceRecord{}
	applyLevel(rec, model.RawRecord{Fields: map[string]string{
		"level": "1", "side": "0", "price": "100.5", "volume": "1000",
	}})
	applyLevel(rec, model.RawRecord{Fields: map[string]string{
		"level": "1", "side": "1", "price": "101.5", "volume": "500",
	}})

	assert.True(t, rec.Levels[1].BidSet)
	assert.True(t, rec.Levels[1].OfferSet)
	assert.Equal(t, "100.5", rec.Levels[1].BidPrice.String())
	assert.Equal(t, "101.5", rec.Levels[1].OfferPrice.String())
}

func TestConvertTradeRowTranslatesCodes(t *testing.T) {
	rec := convertTradeRow(model.RawRecord{Fields: map[string]string{
		"tradeId": "T1", "side": "Y", "set_days": "T+1",
		"net_price": "98.4289", "deal_size": "5000",
	}}, "2025.01.01")

	require.NotNil(t, rec)
	assert.Equal(t, model.TradeSideGVN, rec.Side)
	assert.Equal(t, model.SettleSpeed(1), rec.SettleSpeed)
	assert.Equal(t, "98.4289", rec.Price.String())
	assert.Equal(t, "5000", rec.Volume.String())
}

func TestIBSuffixIdempotent(t *testing.T) {
	assert.Equal(t, "ABC.IB", ibSuffix("ABC"))
	assert.Equal(t, "ABC.IB", ibSuffix("ABC.IB"))
}

func TestFactoryRejectsUnknownSourceType(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.New(model.SourceConfig{Type: "ftp"}, t.TempDir())
	require.Error(t, err)
}

func TestFactoryRejectsUnknownCategory(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.New(model.SourceConfig{
		Type:       "objectstore",
		Properties: map[string]string{"category": "Unknown"},
	}, t.TempDir())
	require.Error(t, err)
}

func TestSameDateNormalizesDottedFormat(t *testing.T) {
	assert.True(t, sameDate("2025.01.02", "20250102"))
	assert.True(t, sameDate("20250102", "20250102"))
	assert.False(t, sameDate("2025.01.03", "20250102"))
}
