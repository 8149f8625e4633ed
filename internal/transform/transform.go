// Package transform implements the transform stage (C9): a pure
// function per data-type mapping SourceRecord variants to TargetRecord
// variants. §1 treats the concrete mapping as an external
// collaborator; this package is the thin registry the engine needs to
// exercise the pipeline end-to-end, plus a default mapping for the
// two data-types the spec's scenarios exercise (quote, trade).
package transform

import (
	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// MapperFunc converts one SourceRecord into zero or one TargetRecord.
// Returning (nil, false) drops the record with a warning rather than
// failing the whole transform.
type MapperFunc func(model.SourceRecord) (model.TargetRecord, bool)

// Registry dispatches a SourceRecord to the mapper registered for its
// SourceType.
type Registry struct {
	mappers map[string]MapperFunc
}

// NewDefaultRegistry returns a registry covering quote and trade, the
// data-types the spec's worked examples and scenarios use.
func NewDefaultRegistry() *Registry {
	r := &Registry{mappers: make(map[string]MapperFunc)}
	r.Register("quote", mapQuote)
	r.Register("trade", mapTrade)
	return r
}

func (r *Registry) Register(sourceType string, fn MapperFunc) { r.mappers[sourceType] = fn }

// Run applies the registry over ctx.Extracted, populating
// ctx.Transformed/ctx.TransformedCount. It never returns an error:
// records with no registered mapper, records the mapper rejects, and
// mapped records that fail validation are dropped with a warning
// (§4.7), so an input with nothing mappable yields an empty result.
func Run(ctx *model.Context, reg *Registry, log *zap.SugaredLogger) error {
	out := make([]model.TargetRecord, 0, len(ctx.Extracted))
	for _, src := range ctx.Extracted {
		mapper, ok := reg.mappers[src.SourceType()]
		if !ok {
			if log != nil {
				log.Warnw("no transform mapper registered for source type", "sourceType", src.SourceType())
			}
			continue
		}
		tgt, ok := mapper(src)
		if !ok {
			if log != nil {
				log.Warnw("record dropped by transform mapper", "sourceType", src.SourceType(), "primaryKey", src.PrimaryKey())
			}
			continue
		}
		if err := tgt.Validate(); err != nil {
			if log != nil {
				log.Warnw("mapped record failed validation, dropped", "cause", err)
			}
			continue
		}
		out = append(out, tgt)
	}

	ctx.Transformed = out
	ctx.TransformedCount = len(out)
	return nil
}

func mapQuote(sr model.SourceRecord) (model.TargetRecord, bool) {
	q, ok := sr.(*model.QuoteSourceRecord)
	if !ok {
		return nil, false
	}

	tgt := &model.QuoteTargetRecord{
		ExchProductID: q.ExchProductID,
		MessageOffset: q.MessageOffset,
		BusinessDate:  q.BusinessDate,
		EventTime:     q.EventTime,
		ReceiveTime:   q.ReceiveTime,
		Category:      "AllPriceDepth",
		SchemaVersion: 1,
	}

	setLevel(tgt, 0, q.Levels[0])
	setLevel(tgt, 1, q.Levels[1])
	setLevel(tgt, 2, q.Levels[2])
	setLevel(tgt, 3, q.Levels[3])
	setLevel(tgt, 4, q.Levels[4])
	setLevel(tgt, 5, q.Levels[5])

	return tgt, true
}

func setLevel(tgt *model.QuoteTargetRecord, level int, l model.QuoteLevel) {
	switch level {
	case 0:
		tgt.Bid0Price, tgt.Bid0Yield, tgt.Bid0YieldType, tgt.Bid0Volume = l.BidPrice, l.BidYield, l.BidYieldType, l.BidVolume
		tgt.Offer0Price, tgt.Offer0Yield, tgt.Offer0YieldType, tgt.Offer0Volume = l.OfferPrice, l.OfferYield, l.OfferYieldType, l.OfferVolume
	case 1:
		tgt.Bid1Price, tgt.Bid1Yield, tgt.Bid1YieldType, tgt.Bid1Volume = l.BidPrice, l.BidYield, l.BidYieldType, l.BidVolume
		tgt.Offer1Price, tgt.Offer1Yield, tgt.Offer1YieldType, tgt.Offer1Volume = l.OfferPrice, l.OfferYield, l.OfferYieldType, l.OfferVolume
	case 2:
		tgt.Bid2Price, tgt.Bid2Yield, tgt.Bid2YieldType, tgt.Bid2Volume = l.BidPrice, l.BidYield, l.BidYieldType, l.BidVolume
		tgt.Offer2Price, tgt.Offer2Yield, tgt.Offer2YieldType, tgt.Offer2Volume = l.OfferPrice, l.OfferYield, l.OfferYieldType, l.OfferVolume
	case 3:
		tgt.Bid3Price, tgt.Bid3Yield, tgt.Bid3YieldType, tgt.Bid3Volume = l.BidPrice, l.BidYield, l.BidYieldType, l.BidVolume
		tgt.Offer3Price, tgt.Offer3Yield, tgt.Offer3YieldType, tgt.Offer3Volume = l.OfferPrice, l.OfferYield, l.OfferYieldType, l.OfferVolume
	case 4:
		tgt.Bid4Price, tgt.Bid4Yield, tgt.Bid4YieldType, tgt.Bid4Volume = l.BidPrice, l.BidYield, l.BidYieldType, l.BidVolume
		tgt.Offer4Price, tgt.Offer4Yield, tgt.Offer4YieldType, tgt.Offer4Volume = l.OfferPrice, l.OfferYield, l.OfferYieldType, l.OfferVolume
	case 5:
		tgt.Bid5Price, tgt.Bid5Yield, tgt.Bid5YieldType, tgt.Bid5Volume = l.BidPrice, l.BidYield, l.BidYieldType, l.BidVolume
		tgt.Offer5Price, tgt.Offer5Yield, tgt.Offer5YieldType, tgt.Offer5Volume = l.OfferPrice, l.OfferYield, l.OfferYieldType, l.OfferVolume
	}
}

func mapTrade(sr model.SourceRecord) (model.TargetRecord, bool) {
	tr, ok := sr.(*model.TradeSourceRecord)
	if !ok {
		return nil, false
	}
	return &model.TradeTargetRecord{
		ExchProductID: tr.ExchProductID,
		TradeID:       tr.TradeID,
		BusinessDate:  tr.BusinessDate,
		EventTime:     tr.EventTime,
		ReceiveTime:   tr.ReceiveTime,
		Price:         tr.Price,
		Yield:         tr.Yield,
		YieldType:     tr.YieldType,
		Volume:        tr.Volume,
		Side:          string(tr.Side),
		SettleSpeed:   int(tr.SettleSpeed),
	}, true
}
