// Package workflow implements the subprocess sequencer (C14), the
// daily workflow (C15), and the workflow engine (C16): strict
// EXTRACT→TRANSFORM→LOAD→VALIDATE→CLEAN ordering with postcondition
// checks, per-day context and result capture, and fail-stop iteration
// over a date range. Adapted from the teacher's runTimeframe
// (pre→pipeline→post ordering) and UpdateAllOHLCV's per-timeframe
// loop that stops the whole run on the first failure
// (ohlcv_orchestrator.go).
package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/extract"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/load"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/staging"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/transform"
)

// Sequencer enforces the fixed stage order and the per-stage
// precondition checks of §4.11.
type Sequencer struct {
	Factory     *extract.Factory
	Transforms  *transform.Registry
	TempRoot    string
	Log         *zap.SugaredLogger
}

// NewSequencer builds a sequencer with the default transform registry
// and object-store extractor factory.
func NewSequencer(tempRoot string, log *zap.SugaredLogger) *Sequencer {
	return &Sequencer{
		Factory:    extract.NewFactory(log),
		Transforms: transform.NewDefaultRegistry(),
		TempRoot:   tempRoot,
		Log:        log,
	}
}

// Run executes all five stages in order for dayCtx, short-circuiting
// on the first failure. On success it returns the full
// map[Stage]SubprocessResult; on failure it returns an empty map and
// the failing stage's error (§4.11).
func (s *Sequencer) Run(stdctx context.Context, dayCtx *model.Context) (map[model.Stage]model.SubprocessResult, error) {
	results := make(map[model.Stage]model.SubprocessResult)

	if err := s.runExtract(stdctx, dayCtx, results); err != nil {
		return map[model.Stage]model.SubprocessResult{}, err
	}
	if err := assertTransformPrecondition(dayCtx); err != nil {
		return map[model.Stage]model.SubprocessResult{}, err
	}

	if err := s.runTransform(dayCtx, results); err != nil {
		return map[model.Stage]model.SubprocessResult{}, err
	}
	if err := assertLoadPrecondition(dayCtx); err != nil {
		return map[model.Stage]model.SubprocessResult{}, err
	}

	loaders, err := s.runLoad(stdctx, dayCtx, results)
	if err != nil {
		return map[model.Stage]model.SubprocessResult{}, err
	}
	if err := assertValidatePrecondition(dayCtx); err != nil {
		return map[model.Stage]model.SubprocessResult{}, err
	}

	if err := s.runValidate(dayCtx, loaders, results); err != nil {
		return map[model.Stage]model.SubprocessResult{}, err
	}
	if err := assertCleanPrecondition(dayCtx); err != nil {
		return map[model.Stage]model.SubprocessResult{}, err
	}

	if err := s.runClean(stdctx, dayCtx, loaders, results); err != nil {
		// CleanupError is logged but does not retro-fail an otherwise
		// successful day (§7 CleanupError policy).
		if s.Log != nil {
			s.Log.Warnw("cleanup failed, day remains successful", "cause", err)
		}
	}

	return results, nil
}

func (s *Sequencer) runExtract(stdctx context.Context, dayCtx *model.Context, results map[model.Stage]model.SubprocessResult) error {
	dayCtx.CurrentStage = model.StageExtract
	err := extract.Run(stdctx, s.Factory, dayCtx, s.TempRoot)
	results[model.StageExtract] = toResult(err, dayCtx.ExtractedCount)
	return wrapStageErr(err, "EXTRACT", dayCtx.CurrentDate)
}

func (s *Sequencer) runTransform(dayCtx *model.Context, results map[model.Stage]model.SubprocessResult) error {
	dayCtx.CurrentStage = model.StageTransform
	err := transform.Run(dayCtx, s.Transforms, s.Log)
	results[model.StageTransform] = toResult(err, dayCtx.TransformedCount)
	return wrapStageErr(err, "TRANSFORM", dayCtx.CurrentDate)
}

func (s *Sequencer) runLoad(stdctx context.Context, dayCtx *model.Context, results map[model.Stage]model.SubprocessResult) (map[string]load.Loader, error) {
	dayCtx.CurrentStage = model.StageLoad

	cliDate, err := cliDateFromRecord(dayCtx.CurrentDate)
	if err != nil {
		results[model.StageLoad] = toResult(err, 0)
		return nil, err
	}

	loaders := make(map[string]load.Loader)
	total := 0

	for _, tgt := range dayCtx.Config.Targets {
		loader, err := staging.Load(stdctx, tgt, cliDate, s.TempRoot, dayCtx)
		if err != nil {
			results[model.StageLoad] = toResult(err, total)
			return loaders, wrapStageErr(err, "LOAD", dayCtx.CurrentDate)
		}
		loaders[tgt.Name] = loader

		subset := filterByTarget(dayCtx.Transformed, tgt)
		sorted, err := loader.SortData(subset)
		if err != nil {
			results[model.StageLoad] = toResult(err, total)
			return loaders, wrapStageErr(err, "LOAD", dayCtx.CurrentDate)
		}

		if err := loader.LoadData(sorted, dayCtx.StagingTables); err != nil {
			results[model.StageLoad] = toResult(err, total)
			return loaders, wrapStageErr(err, "LOAD", dayCtx.CurrentDate)
		}
		total += len(sorted)
	}

	dayCtx.LoadedCount = total
	results[model.StageLoad] = toResult(nil, total)
	return loaders, nil
}

func (s *Sequencer) runValidate(dayCtx *model.Context, loaders map[string]load.Loader, results map[model.Stage]model.SubprocessResult) error {
	dayCtx.CurrentStage = model.StageValidate
	for _, loader := range loaders {
		if err := loader.ValidateLoad(dayCtx.StagingTables); err != nil {
			results[model.StageValidate] = toResult(err, dayCtx.LoadedCount)
			return wrapStageErr(err, "VALIDATE", dayCtx.CurrentDate)
		}
	}
	dayCtx.ValidationPassed = true
	results[model.StageValidate] = toResult(nil, dayCtx.LoadedCount)
	return nil
}

func (s *Sequencer) runClean(stdctx context.Context, dayCtx *model.Context, loaders map[string]load.Loader, results map[model.Stage]model.SubprocessResult) error {
	dayCtx.CurrentStage = model.StageClean
	var firstErr error
	for _, loader := range loaders {
		if err := staging.Clean(stdctx, dayCtx, loader); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	results[model.StageClean] = toResult(firstErr, 0)
	return firstErr
}

func filterByTarget(records []model.TargetRecord, tgt model.TargetConfig) []model.TargetRecord {
	var out []model.TargetRecord
	for _, r := range records {
		if _, ok := tgt.TargetTableMappings[r.DataType()]; ok {
			out = append(out, r)
		}
	}
	return out
}

func toResult(err error, processed int) model.SubprocessResult {
	res := model.SubprocessResult{Success: err == nil, Processed: processed, Timestamp: time.Now()}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func wrapStageErr(err error, stage, date string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*errs.StageError); ok {
		return err
	}
	return errs.New(errs.KindLoad, stage, date, fmt.Sprintf("%s failed", stage), err)
}

func assertTransformPrecondition(ctx *model.Context) error {
	if !(ctx.ExtractedCount > 0 || ctx.ExtractSucceeded) {
		return errs.New(errs.KindValidation, "TRANSFORM", ctx.CurrentDate, "precondition failed: extract produced nothing", nil)
	}
	return nil
}

func assertLoadPrecondition(ctx *model.Context) error {
	if !(ctx.TransformedCount > 0 || ctx.Transformed != nil) {
		return errs.New(errs.KindValidation, "LOAD", ctx.CurrentDate, "precondition failed: transform produced nothing", nil)
	}
	return nil
}

func assertValidatePrecondition(ctx *model.Context) error {
	if ctx.LoadedCount < 0 {
		return errs.New(errs.KindValidation, "VALIDATE", ctx.CurrentDate, "precondition failed: negative loaded count", nil)
	}
	return nil
}

func assertCleanPrecondition(ctx *model.Context) error {
	if !ctx.ValidationPassed {
		return errs.New(errs.KindValidation, "CLEAN", ctx.CurrentDate, "precondition failed: validation did not pass", nil)
	}
	return nil
}

func cliDateFromRecord(recordDate string) (string, error) {
	t, err := time.Parse("2006.01.02", recordDate)
	if err != nil {
		return "", errs.Config("LOAD", recordDate, "malformed context business date", err)
	}
	return t.Format("20060102"), nil
}
