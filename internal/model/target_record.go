package model

import "github.com/shopspring/decimal"

// TargetRecord is the shared capability every loadable record variant
// implements. Field wire order is declared via the `wire:"N,name"`
// struct tag on each exported field and resolved by internal/colorder;
// TargetRecord itself only needs a value view for that resolver to
// read through reflection, plus validate/dataType for the engine.
type TargetRecord interface {
	Validate() error
	DataType() string
	ToWire() map[string]interface{}
}

// QuoteTargetRecord is the wire shape loaded into the quote table: 8
// leading fields (six identifying fields plus the event and receive
// timestamps), then per level 0..5 four bid and four offer fields
// (§6 "Quote record external shape").
type QuoteTargetRecord struct {
	ExchProductID string          `wire:"0,exch_product_id"`
	MessageOffset string          `wire:"1,message_offset"`
	BusinessDate  string          `wire:"2,business_date"`
	EventTime     string          `wire:"3,event_time"`
	ReceiveTime   string          `wire:"4,receive_time"`
	SourceName    string          `wire:"5,source_name"`
	Category      string          `wire:"6,category"`
	SchemaVersion int             `wire:"7,schema_version"`

	Bid0Price decimal.Decimal `wire:"8,bid0_price"`
	Bid0Yield decimal.Decimal `wire:"9,bid0_yield"`
	Bid0YieldType string      `wire:"10,bid0_yield_type"`
	Bid0Volume decimal.Decimal `wire:"11,bid0_volume"`
	Offer0Price decimal.Decimal `wire:"12,offer0_price"`
	Offer0Yield decimal.Decimal `wire:"13,offer0_yield"`
	Offer0YieldType string      `wire:"14,offer0_yield_type"`
	Offer0Volume decimal.Decimal `wire:"15,offer0_volume"`

	Bid1Price decimal.Decimal `wire:"16,bid1_price"`
	Bid1Yield decimal.Decimal `wire:"17,bid1_yield"`
	Bid1YieldType string      `wire:"18,bid1_yield_type"`
	Bid1Volume decimal.Decimal `wire:"19,bid1_volume"`
	Offer1Price decimal.Decimal `wire:"20,offer1_price"`
	Offer1Yield decimal.Decimal `wire:"21,offer1_yield"`
	Offer1YieldType string      `wire:"22,offer1_yield_type"`
	Offer1Volume decimal.Decimal `wire:"23,offer1_volume"`

	Bid2Price decimal.Decimal `wire:"24,bid2_price"`
	Bid2Yield decimal.Decimal `wire:"25,bid2_yield"`
	Bid2YieldType string      `wire:"26,bid2_yield_type"`
	Bid2Volume decimal.Decimal `wire:"27,bid2_volume"`
	Offer2Price decimal.Decimal `wire:"28,offer2_price"`
	Offer2Yield decimal.Decimal `wire:"29,offer2_yield"`
	Offer2YieldType string      `wire:"30,offer2_yield_type"`
	Offer2Volume decimal.Decimal `wire:"31,offer2_volume"`

	Bid3Price decimal.Decimal `wire:"32,bid3_price"`
	Bid3Yield decimal.Decimal `wire:"33,bid3_yield"`
	Bid3YieldType string      `wire:"34,bid3_yield_type"`
	Bid3Volume decimal.Decimal `wire:"35,bid3_volume"`
	Offer3Price decimal.Decimal `wire:"36,offer3_price"`
	Offer3Yield decimal.Decimal `wire:"37,offer3_yield"`
	Offer3YieldType string      `wire:"38,offer3_yield_type"`
	Offer3Volume decimal.Decimal `wire:"39,offer3_volume"`

	Bid4Price decimal.Decimal `wire:"40,bid4_price"`
	Bid4Yield decimal.Decimal `wire:"41,bid4_yield"`
	Bid4YieldType string      `wire:"42,bid4_yield_type"`
	Bid4Volume decimal.Decimal `wire:"43,bid4_volume"`
	Offer4Price decimal.Decimal `wire:"44,offer4_price"`
	Offer4Yield decimal.Decimal `wire:"45,offer4_yield"`
	Offer4YieldType string      `wire:"46,offer4_yield_type"`
	Offer4Volume decimal.Decimal `wire:"47,offer4_volume"`

	Bid5Price decimal.Decimal `wire:"48,bid5_price"`
	Bid5Yield decimal.Decimal `wire:"49,bid5_yield"`
	Bid5YieldType string      `wire:"50,bid5_yield_type"`
	Bid5Volume decimal.Decimal `wire:"51,bid5_volume"`
	Offer5Price decimal.Decimal `wire:"52,offer5_price"`
	Offer5Yield decimal.Decimal `wire:"53,offer5_yield"`
	Offer5YieldType string      `wire:"54,offer5_yield_type"`
	Offer5Volume decimal.Decimal `wire:"55,offer5_volume"`

	// internal bookkeeping, deliberately untagged so colorder excludes
	// it from the wire schema.
	internalCorrelationID string
}

func (q *QuoteTargetRecord) Validate() error {
	if q.ExchProductID == "" || q.BusinessDate == "" {
		return errMissingKeys("quote target")
	}
	return nil
}

func (q *QuoteTargetRecord) DataType() string { return "quote" }

func (q *QuoteTargetRecord) ToWire() map[string]interface{} {
	return map[string]interface{}{
		"exch_product_id": q.ExchProductID,
		"message_offset":  q.MessageOffset,
		"business_date":   q.BusinessDate,
		"event_time":      q.EventTime,
		"receive_time":    q.ReceiveTime,
		"source_name":     q.SourceName,
		"category":        q.Category,
		"schema_version":  q.SchemaVersion,

		"bid0_price": q.Bid0Price, "bid0_yield": q.Bid0Yield, "bid0_yield_type": q.Bid0YieldType, "bid0_volume": q.Bid0Volume,
		"offer0_price": q.Offer0Price, "offer0_yield": q.Offer0Yield, "offer0_yield_type": q.Offer0YieldType, "offer0_volume": q.Offer0Volume,

		"bid1_price": q.Bid1Price, "bid1_yield": q.Bid1Yield, "bid1_yield_type": q.Bid1YieldType, "bid1_volume": q.Bid1Volume,
		"offer1_price": q.Offer1Price, "offer1_yield": q.Offer1Yield, "offer1_yield_type": q.Offer1YieldType, "offer1_volume": q.Offer1Volume,

		"bid2_price": q.Bid2Price, "bid2_yield": q.Bid2Yield, "bid2_yield_type": q.Bid2YieldType, "bid2_volume": q.Bid2Volume,
		"offer2_price": q.Offer2Price, "offer2_yield": q.Offer2Yield, "offer2_yield_type": q.Offer2YieldType, "offer2_volume": q.Offer2Volume,

		"bid3_price": q.Bid3Price, "bid3_yield": q.Bid3Yield, "bid3_yield_type": q.Bid3YieldType, "bid3_volume": q.Bid3Volume,
		"offer3_price": q.Offer3Price, "offer3_yield": q.Offer3Yield, "offer3_yield_type": q.Offer3YieldType, "offer3_volume": q.Offer3Volume,

		"bid4_price": q.Bid4Price, "bid4_yield": q.Bid4Yield, "bid4_yield_type": q.Bid4YieldType, "bid4_volume": q.Bid4Volume,
		"offer4_price": q.Offer4Price, "offer4_yield": q.Offer4Yield, "offer4_yield_type": q.Offer4YieldType, "offer4_volume": q.Offer4Volume,

		"bid5_price": q.Bid5Price, "bid5_yield": q.Bid5Yield, "bid5_yield_type": q.Bid5YieldType, "bid5_volume": q.Bid5Volume,
		"offer5_price": q.Offer5Price, "offer5_yield": q.Offer5Yield, "offer5_yield_type": q.Offer5YieldType, "offer5_volume": q.Offer5Volume,
	}
}

// TradeTargetRecord is the wire shape loaded into the trade table
// (§6 "Trade record external shape").
type TradeTargetRecord struct {
	ExchProductID string          `wire:"0,exch_product_id"`
	TradeID       string          `wire:"1,trade_id"`
	BusinessDate  string          `wire:"2,business_date"`
	EventTime     string          `wire:"3,event_time"`
	ReceiveTime   string          `wire:"4,receive_time"`
	Price         decimal.Decimal `wire:"5,price"`
	Yield         decimal.Decimal `wire:"6,yield"`
	YieldType     string          `wire:"7,yield_type"`
	Volume        decimal.Decimal `wire:"8,volume"`
	Side          string          `wire:"9,side"`
	SettleSpeed   int             `wire:"10,settle_speed"`
}

func (t *TradeTargetRecord) Validate() error {
	if t.ExchProductID == "" || t.TradeID == "" || t.BusinessDate == "" {
		return errMissingKeys("trade target")
	}
	return nil
}

func (t *TradeTargetRecord) DataType() string { return "trade" }

func (t *TradeTargetRecord) ToWire() map[string]interface{} {
	return map[string]interface{}{
		"exch_product_id": t.ExchProductID,
		"trade_id":        t.TradeID,
		"business_date":   t.BusinessDate,
		"event_time":      t.EventTime,
		"receive_time":    t.ReceiveTime,
		"price":           t.Price,
		"yield":           t.Yield,
		"yield_type":      t.YieldType,
		"volume":          t.Volume,
		"side":            t.Side,
		"settle_speed":    t.SettleSpeed,
	}
}
