package model

import "github.com/shopspring/decimal"

// SourceRecord is the shared capability every extracted record variant
// implements; concrete variants are enumerated below, not subclassed.
type SourceRecord interface {
	Validate() error
	PrimaryKey() string
	SourceType() string
}

// QuoteLevel holds one depth level's bid/offer four-tuple. Level 0 is
// the best (possibly non-tradable) quote; levels 1..5 are tradable
// depth.
type QuoteLevel struct {
	BidPrice      decimal.Decimal
	BidYield      decimal.Decimal
	BidYieldType  string
	BidVolume     decimal.Decimal
	OfferPrice    decimal.Decimal
	OfferYield    decimal.Decimal
	OfferYieldType string
	OfferVolume   decimal.Decimal

	BidSet   bool
	OfferSet bool
}

// QuoteSourceRecord is the folded, per-message-offset quote variant
// produced by grouping level/side-keyed raw rows (§4.5 step 5).
type QuoteSourceRecord struct {
	ExchProductID string
	MessageOffset string
	BusinessDate  string // YYYY.MM.DD
	EventTime     string
	ReceiveTime   string

	Levels [6]QuoteLevel // index == level
}

func (q *QuoteSourceRecord) Validate() error {
	if q.ExchProductID == "" || q.MessageOffset == "" || q.BusinessDate == "" {
		return errMissingKeys("quote")
	}
	return nil
}

func (q *QuoteSourceRecord) PrimaryKey() string { return q.MessageOffset }
func (q *QuoteSourceRecord) SourceType() string { return "quote" }

// TradeSide is the normalized direction code, translated from the
// source's single-character codes (§4.5 step 5).
type TradeSide string

const (
	TradeSideTKN  TradeSide = "TKN"
	TradeSideGVN  TradeSide = "GVN"
	TradeSideTRD  TradeSide = "TRD"
	TradeSideDONE TradeSide = "DONE"
)

// SettleSpeed is the integer form of the source's settlement-type
// string (T+0 -> 0, T+1 -> 1).
type SettleSpeed int

// TradeSourceRecord is the one-to-one converted trade variant.
type TradeSourceRecord struct {
	ExchProductID string
	TradeID       string
	BusinessDate  string // YYYY.MM.DD
	EventTime     string
	ReceiveTime   string

	Price       decimal.Decimal
	Yield       decimal.Decimal
	YieldType   string
	Volume      decimal.Decimal
	Side        TradeSide
	SettleSpeed SettleSpeed
}

func (t *TradeSourceRecord) Validate() error {
	if t.ExchProductID == "" || t.TradeID == "" || t.BusinessDate == "" {
		return errMissingKeys("trade")
	}
	return nil
}

func (t *TradeSourceRecord) PrimaryKey() string { return t.TradeID }
func (t *TradeSourceRecord) SourceType() string { return "trade" }

func errMissingKeys(kind string) error {
	return &validationError{kind: kind}
}

type validationError struct{ kind string }

func (e *validationError) Error() string {
	return e.kind + " source record missing required identifying keys"
}

// DataType returns the logical data-type string the Transform/Load
// stages key on for a given SourceRecord.
func DataType(r SourceRecord) string { return r.SourceType() }
