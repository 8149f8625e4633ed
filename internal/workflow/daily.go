package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/bizdate"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/logging"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// RunDay implements the daily workflow (C15): builds the context,
// validates it is fresh, runs the sequencer, and captures the result.
// On failure it logs via the error facility and returns a result with
// success=false and an empty subprocess map (§4.12).
func RunDay(stdctx context.Context, seq *Sequencer, date bizdate.Date, cfg *model.Configuration, log *zap.SugaredLogger) model.DailyProcessResult {
	recordDate := date.RecordString()
	dayCtx := model.NewContext(recordDate, cfg)

	if err := model.ValidateInitial(dayCtx); err != nil {
		return model.DailyProcessResult{Date: recordDate, Success: false, ResultsByStage: map[model.Stage]model.SubprocessResult{}}
	}

	results, err := seq.Run(stdctx, dayCtx)
	if err != nil {
		if log != nil {
			if se, ok := err.(*errs.StageError); ok {
				logging.LogStageError(log, se, map[string]int{
					"extracted":   dayCtx.ExtractedCount,
					"transformed": dayCtx.TransformedCount,
					"loaded":      dayCtx.LoadedCount,
				})
			} else {
				log.Errorw("day failed", "date", recordDate, "cause", err.Error())
			}
		}
		return model.DailyProcessResult{Date: recordDate, Success: false, ResultsByStage: map[model.Stage]model.SubprocessResult{}}
	}

	if log != nil {
		log.Infow("day completed", logging.StageFields("WORKFLOW", recordDate, map[string]int{
			"extracted":   dayCtx.ExtractedCount,
			"transformed": dayCtx.TransformedCount,
			"loaded":      dayCtx.LoadedCount,
		})...)
	}

	return model.DailyProcessResult{
		Date:           recordDate,
		Success:        true,
		ResultsByStage: results,
		FinalContext:   dayCtx,
	}
}
