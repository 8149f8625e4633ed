package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// objectStoreTradeExtractor implements the "TradeData" category: one
// row converts to one TradeSourceRecord, translating settlement-type
// strings and direction codes (§4.5 step 5).
type objectStoreTradeExtractor struct {
	*objectStoreBase
}

func newObjectStoreTradeExtractor(src model.SourceConfig, tempRoot string, log *zap.SugaredLogger) (Extractor, error) {
	base, err := newObjectStoreBase(src, tempRoot, log)
	if err != nil {
		return nil, err
	}
	return &objectStoreTradeExtractor{objectStoreBase: base}, nil
}

func (e *objectStoreTradeExtractor) Category() string { return "TradeData" }

func (e *objectStoreTradeExtractor) Validate(ctx *model.Context) error { return e.validate(ctx) }

func (e *objectStoreTradeExtractor) Setup(ctx *model.Context) error {
	return e.setup(context.Background(), ctx)
}

func (e *objectStoreTradeExtractor) Cleanup() error { return e.cleanup() }

func (e *objectStoreTradeExtractor) Extract(stdctx context.Context, ctx *model.Context) ([]model.SourceRecord, error) {
	cliDate, err := cliDateFromRecordDate(ctx.CurrentDate)
	if err != nil {
		return nil, err
	}

	paths, err := e.fetchAll(stdctx, cliDate)
	if err != nil {
		return nil, err
	}

	var out []model.SourceRecord
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
			rec := convertTradeRow(row, ctx.CurrentDate)
			if rec != nil {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// settleSpeed translates "T+0"/"T+1" style settlement strings to an
// integer (§4.5 step 5).
func settleSpeed(s string) model.SettleSpeed {
	switch s {
	case "T+0":
		return 0
	case "T+1":
		return 1
	default:
		return 0
	}
}

// tradeSide maps the source's single-character direction codes to the
// normalized enum (§4.5 step 5).
func tradeSide(code string) model.TradeSide {
	switch code {
	case "X":
		return model.TradeSideTKN
	case "Y":
		return model.TradeSideGVN
	case "Z":
		return model.TradeSideTRD
	case "D":
		return model.TradeSideDONE
	default:
		return ""
	}
}

func convertTradeRow(row model.RawRecord, businessDate string) *model.TradeSourceRecord {
	tradeID, ok := row.Get("tradeId")
	if !ok || tradeID == "" {
		return nil
	}

	pid, _ := row.Get("exchProductId")
	side, _ := row.Get("side")
	settle, _ := row.Get("set_days")
	yieldType, _ := row.Get("yieldType")
	eventTime, _ := row.Get("eventTime")
	receiveTime, _ := row.Get("receiveTime")

	return &model.TradeSourceRecord{
		ExchProductID: ibSuffix(pid),
		TradeID:       tradeID,
		BusinessDate:  businessDate,
		EventTime:     eventTime,
		ReceiveTime:   receiveTime,
		Price:         decStr(row, "net_price"),
		Yield:         decStr(row, "yield"),
		YieldType:     yieldType,
		Volume:        decStr(row, "deal_size"),
		Side:          tradeSide(side),
		SettleSpeed:   settleSpeed(settle),
	}
}
