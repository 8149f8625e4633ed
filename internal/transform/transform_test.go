package transform

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMapsQuoteAndTradeRecords(t *testing.T) {
	ctx := model.NewContext("2025.01.01", &model.Configuration{})
	ctx.Extracted = []model.SourceRecord{
		&model.QuoteSourceRecord{
			ExchProductID: "ABC.IB",
			MessageOffset: "1",
			BusinessDate:  "2025.01.01",
			Levels: [6]model.QuoteLevel{
				{BidPrice: decimal.RequireFromString("100.5"), OfferPrice: decimal.RequireFromString("101.5"), BidSet: true, OfferSet: true},
			},
		},
		&model.TradeSourceRecord{ExchProductID: "DEF.IB", TradeID: "T1", BusinessDate: "2025.01.01"},
	}

	reg := NewDefaultRegistry()
	err := Run(ctx, reg, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, ctx.TransformedCount)

	quote := ctx.Transformed[0].(*model.QuoteTargetRecord)
	assert.Equal(t, "100.5", quote.Bid0Price.String())
	assert.Equal(t, "101.5", quote.Offer0Price.String())
}

func TestRunDropsUnmappableSourceType(t *testing.T) {
	ctx := model.NewContext("2025.01.01", &model.Configuration{})
	ctx.Extracted = []model.SourceRecord{&unknownRecord{}}

	reg := NewDefaultRegistry()
	require.NoError(t, Run(ctx, reg, nil))
	assert.Equal(t, 0, ctx.TransformedCount)
}

type unknownRecord struct{}

func (u *unknownRecord) Validate() error    { return nil }
func (u *unknownRecord) PrimaryKey() string { return "x" }
func (u *unknownRecord) SourceType() string { return "unknown" }
