package extract

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// objectStoreQuoteExtractor implements the "AllPriceDepth" category:
// raw rows are grouped by message-offset, then level/side-keyed rows
// are folded into one structured QuoteSourceRecord (§4.5 step 5).
type objectStoreQuoteExtractor struct {
	*objectStoreBase
}

func newObjectStoreQuoteExtractor(src model.SourceConfig, tempRoot string, log *zap.SugaredLogger) (Extractor, error) {
	base, err := newObjectStoreBase(src, tempRoot, log)
	if err != nil {
		return nil, err
	}
	return &objectStoreQuoteExtractor{objectStoreBase: base}, nil
}

func (e *objectStoreQuoteExtractor) Category() string { return "AllPriceDepth" }

func (e *objectStoreQuoteExtractor) Validate(ctx *model.Context) error { return e.validate(ctx) }

func (e *objectStoreQuoteExtractor) Setup(ctx *model.Context) error {
	return e.setup(context.Background(), ctx)
}

func (e *objectStoreQuoteExtractor) Cleanup() error { return e.cleanup() }

func (e *objectStoreQuoteExtractor) Extract(stdctx context.Context, ctx *model.Context) ([]model.SourceRecord, error) {
	cliDate, err := cliDateFromRecordDate(ctx.CurrentDate)
	if err != nil {
		return nil, err
	}

	paths, err := e.fetchAll(stdctx, cliDate)
	if err != nil {
		return nil, err
	}

	groups := map[string]*model.QuoteSourceRecord{}
	var order []string

	for _, path := range paths {
		select {
		case <-stdctx.Done():
			return nil, errs.Cancel("EXTRACT", ctx.CurrentDate, "cancelled while parsing "+path, stdctx.Err())
		default:
		}

		rows, err := e.readRows(path, e.source.DateField, cliDate)
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			offset, ok := row.Get("mqOffset")
			if !ok || offset == "" {
				continue
			}
			rec, seen := groups[offset]
			if !seen {
				rec = &model.QuoteSourceRecord{
					MessageOffset: offset,
					BusinessDate:  ctx.CurrentDate,
				}
				if pid, ok := row.Get("exchProductId"); ok {
					rec.ExchProductID = ibSuffix(pid)
				}
				if et, ok := row.Get("eventTime"); ok {
					rec.EventTime = et
				}
				if rt, ok := row.Get("receiveTime"); ok {
					rec.ReceiveTime = rt
				}
				groups[offset] = rec
				order = append(order, offset)
			}
			applyLevel(rec, row)
		}
	}

	out := make([]model.SourceRecord, 0, len(order))
	for _, offset := range order {
		out = append(out, groups[offset])
	}
	return out, nil
}

// applyLevel folds one level/side-keyed row into rec's matching
// level slot. level 0 is best (possibly non-tradable); 1..5 are
// tradable depth (§4.5 step 5).
func applyLevel(rec *model.QuoteSourceRecord, row model.RawRecord) {
	levelStr, _ := row.Get("level")
	sideStr, _ := row.Get("side")
	level, err := strconv.Atoi(levelStr)
	if err != nil || level < 0 || level > 5 {
		return
	}

	price := decStr(row, "price")
	yield := decStr(row, "yield")
	yieldType, _ := row.Get("yieldType")
	volume := decStr(row, "volume")

	switch sideStr {
	case "0": // bid
		rec.Levels[level].BidPrice = price
		rec.Levels[level].BidYield = yield
		rec.Levels[level].BidYieldType = yieldType
		rec.Levels[level].BidVolume = volume
		rec.Levels[level].BidSet = true
	case "1": // offer
		rec.Levels[level].OfferPrice = price
		rec.Levels[level].OfferYield = yield
		rec.Levels[level].OfferYieldType = yieldType
		rec.Levels[level].OfferVolume = volume
		rec.Levels[level].OfferSet = true
	}
}

func decStr(row model.RawRecord, col string) decimal.Decimal {
	v, ok := row.Get(col)
	if !ok || v == "" {
		return decimal.Decimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}
	}
	return d
}

// cliDateFromRecordDate converts a ctx.CurrentDate in YYYY.MM.DD form
// back to YYYYMMDD for template resolution against object-store keys.
func cliDateFromRecordDate(recordDate string) (string, error) {
	t, err := time.Parse("2006.01.02", recordDate)
	if err != nil {
		return "", errs.Config("EXTRACT", recordDate, "malformed context business date", err)
	}
	return t.Format("20060102"), nil
}
