package extract

import (
	"context"
	"testing"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor lets the stage's fan-out/fan-in/partial-failure policy
// be exercised without a real object-store client.
type fakeExtractor struct {
	category string
	records  []model.SourceRecord
	failWith error
}

func (f *fakeExtractor) Category() string                    { return f.category }
func (f *fakeExtractor) Validate(ctx *model.Context) error    { return nil }
func (f *fakeExtractor) Setup(ctx *model.Context) error       { return nil }
func (f *fakeExtractor) Cleanup() error                       { return nil }
func (f *fakeExtractor) Extract(_ context.Context, _ *model.Context) ([]model.SourceRecord, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.records, nil
}

type fakeFactory struct {
	bySource map[string]*fakeExtractor
}

func (f *fakeFactory) New(src model.SourceConfig, tempRoot string) (Extractor, error) {
	return f.bySource[src.Name], nil
}

func newCtx() *model.Context {
	return model.NewContext("2025.01.01", &model.Configuration{
		Sources: []model.SourceConfig{{Name: "a"}, {Name: "b"}},
	})
}

func TestRunSucceedsWhenAtLeastOneExtractorSucceeds(t *testing.T) {
	factory := &fakeFactory{bySource: map[string]*fakeExtractor{
		"a": {records: []model.SourceRecord{&model.TradeSourceRecord{TradeID: "1"}, &model.TradeSourceRecord{TradeID: "2"}}},
		"b": {failWith: errs.Download("EXTRACT", "2025.01.01", "boom", nil)},
	}}
	ctx := newCtx()

	err := Run(context.Background(), factory, ctx, t.TempDir())
	require.NoError(t, err)
	assert.True(t, ctx.ExtractSucceeded)
	assert.Equal(t, 2, ctx.ExtractedCount)
	require.Len(t, ctx.ExtractFailures, 1)
	assert.Equal(t, "b", ctx.ExtractFailures[0].SourceName)
}

func TestRunFailsWhenAllExtractorsFail(t *testing.T) {
	factory := &fakeFactory{bySource: map[string]*fakeExtractor{
		"a": {failWith: errs.Download("EXTRACT", "2025.01.01", "boom a", nil)},
		"b": {failWith: errs.Download("EXTRACT", "2025.01.01", "boom b", nil)},
	}}
	ctx := newCtx()

	err := Run(context.Background(), factory, ctx, t.TempDir())
	require.Error(t, err)
	assert.False(t, ctx.ExtractSucceeded)
	assert.Equal(t, 0, ctx.ExtractedCount)
}

func TestRunFailsWithNoSourcesConfigured(t *testing.T) {
	ctx := model.NewContext("2025.01.01", &model.Configuration{})
	err := Run(context.Background(), &fakeFactory{}, ctx, t.TempDir())
	require.Error(t, err)
}

func TestRunDiscardsPartialResultsOnCancel(t *testing.T) {
	// The cancel signal has already landed when Run starts, so "a"
	// never reaches Extract even though its fake would succeed, and
	// "b" reports a cancel of its own. Mirroring scenario 6, the stage
	// must report CancelError and leave no records in ctx.
	factory := &fakeFactory{bySource: map[string]*fakeExtractor{
		"a": {records: []model.SourceRecord{&model.TradeSourceRecord{TradeID: "1"}}},
		"b": {failWith: errs.Cancel("EXTRACT", "2025.01.01", "cancelled before extract of source b", context.Canceled)},
	}}
	ctx := newCtx()

	stdctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(stdctx, factory, ctx, t.TempDir())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindCancel))
	assert.False(t, ctx.ExtractSucceeded)
	assert.Equal(t, 0, ctx.ExtractedCount)
	assert.Nil(t, ctx.Extracted)
}
