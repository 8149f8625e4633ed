// Package extract implements the extractor capability (C5), the
// concrete object-store extractors (C6), the factory (C7), and the
// concurrent Extract stage (C8). Adapted from the teacher's
// runTimeframe/PreLoadSetup/PostLoadCleanup lifecycle
// (ohlcv_orchestrator.go) and processFilesWithPipeline's worker pool
// (ohlcv_pipeline.go).
package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// Extractor is the source-agnostic capability every concrete
// extractor implements (§4.5).
type Extractor interface {
	Category() string
	Validate(ctx *model.Context) error
	Setup(ctx *model.Context) error
	Extract(ctx context.Context, dayCtx *model.Context) ([]model.SourceRecord, error)
	Cleanup() error
}

// Factory builds extractors from configured sources, dispatching on
// SourceConfig.Type then on the configured category (§4.5 "Extractor
// factory"). log is threaded into every extractor it builds so the
// CSV parser's malformed-row warnings (§4.4) actually reach the run's
// structured log instead of being dropped.
type Factory struct {
	log *zap.SugaredLogger
}

// NewFactory constructs a Factory. log may be nil, which disables
// parser warning logging (used by callers like config.Validate that
// only probe constructibility).
func NewFactory(log *zap.SugaredLogger) *Factory { return &Factory{log: log} }

// New dispatches src.Type/category into a concrete Extractor. Unknown
// combinations fail with ConfigError.
func (f *Factory) New(src model.SourceConfig, tempRoot string) (Extractor, error) {
	if src.Type != "objectstore" {
		return nil, errs.Config("EXTRACT", "", "unknown source type "+src.Type, nil)
	}

	category := src.Properties["category"]
	switch category {
	case "AllPriceDepth":
		return newObjectStoreQuoteExtractor(src, tempRoot, f.log)
	case "TradeData":
		return newObjectStoreTradeExtractor(src, tempRoot, f.log)
	default:
		return nil, errs.Config("EXTRACT", "", "unknown category "+category+" for source "+src.Name, nil)
	}
}

// KnownDataTypes lists every dataType this factory's extractors can
// produce. Startup validation (config.Validate) does not use it; it
// checks each source through DataTypeForSource.
func (f *Factory) KnownDataTypes() []string {
	return []string{"quote", "trade"}
}

// categoryDataTypes maps each supported category to the dataType its
// extractor produces (§3 "every dataType produced by extraction must
// appear as a key in some target's targetTableMappings").
var categoryDataTypes = map[string]string{
	"AllPriceDepth": "quote",
	"TradeData":     "trade",
}

// DataTypeForSource returns the dataType the given source's configured
// category produces, without constructing an extractor.
func (f *Factory) DataTypeForSource(src model.SourceConfig) (string, error) {
	if src.Type != "objectstore" {
		return "", errs.Config("CONFIG", "", "unknown source type "+src.Type, nil)
	}
	category := src.Properties["category"]
	dataType, ok := categoryDataTypes[category]
	if !ok {
		return "", errs.Config("CONFIG", "", "unknown category "+category+" for source "+src.Name, nil)
	}
	return dataType, nil
}
