package extract

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// maxConcurrentExtractors bounds the Extract stage's worker pool, the
// same bounded-semaphore pattern the teacher uses in
// daily_ohlcv.go's semaphore.NewWeighted call.
const maxConcurrentExtractors = int64(8)

type taskResult struct {
	source  string
	records []model.SourceRecord
	err     error
}

// sourceFactory is the narrow view of Factory the stage needs, kept
// as an interface so the fan-out/fan-in/partial-failure policy below
// can be exercised against fakes without a real object-store client.
type sourceFactory interface {
	New(src model.SourceConfig, tempRoot string) (Extractor, error)
}

// Run fans out one task per configured source, funnels their results
// into ctx's append-only buffer, and applies the partial-failure
// policy of §4.6: the stage succeeds if at least one extractor
// succeeded, absorbing the rest as tracked per-source failures.
func Run(stdctx context.Context, factory sourceFactory, ctx *model.Context, tempRoot string) error {
	sources := ctx.Config.Sources
	if len(sources) == 0 {
		return errs.Config("EXTRACT", ctx.CurrentDate, "no sources configured", nil)
	}

	sem := semaphore.NewWeighted(maxConcurrentExtractors)
	results := make(chan taskResult, len(sources))
	var wg sync.WaitGroup

	for _, src := range sources {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(stdctx, 1); err != nil {
				results <- taskResult{source: src.Name, err: err}
				return
			}
			defer sem.Release(1)
			records, err := runOne(stdctx, factory, src, ctx, tempRoot)
			results <- taskResult{source: src.Name, records: records, err: err}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		succeeded  int
		firstCause error
	)
	for res := range results {
		if res.err != nil {
			ctx.AppendExtractFailure(model.SourceFailure{SourceName: res.source, Reason: res.err.Error()})
			if firstCause == nil {
				firstCause = res.err
			}
			continue
		}
		succeeded++
		ctx.AppendExtracted(res.records)
	}

	// A cancel signal overrides both the partial-success and the
	// all-failed outcomes: §5 requires already-extracted records to
	// be discarded on cancel, and scenario 6 requires the day be
	// reported as CancelError, not DownloadError, regardless of how
	// many sibling sources had already completed.
	if stdctx.Err() != nil {
		ctx.DiscardExtracted()
		return errs.Cancel("EXTRACT", ctx.CurrentDate, "extraction cancelled", stdctx.Err())
	}

	if succeeded == 0 {
		return errs.Download("EXTRACT", ctx.CurrentDate, fmt.Sprintf("all %d extractors failed", len(sources)), firstCause)
	}
	ctx.ExtractSucceeded = true
	return nil
}

// runOne drives one extractor's full lifecycle on its own goroutine;
// a failure here is that source's failure alone, per the resolved
// open question (DESIGN.md).
func runOne(stdctx context.Context, factory sourceFactory, src model.SourceConfig, ctx *model.Context, tempRoot string) ([]model.SourceRecord, error) {
	extractor, err := factory.New(src, tempRoot)
	if err != nil {
		return nil, err
	}
	defer extractor.Cleanup()

	if err := extractor.Validate(ctx); err != nil {
		return nil, err
	}
	if err := extractor.Setup(ctx); err != nil {
		return nil, err
	}

	select {
	case <-stdctx.Done():
		return nil, errs.Cancel("EXTRACT", ctx.CurrentDate, "cancelled before extract of source "+src.Name, stdctx.Err())
	default:
	}

	return extractor.Extract(stdctx, ctx)
}
