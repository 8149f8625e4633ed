package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/bizdate"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// Engine is the workflow engine (C16): expands the date range and
// runs each day strictly sequentially, stopping on the first failure.
type Engine struct {
	Sequencer *Sequencer
	Log       *zap.SugaredLogger
}

func NewEngine(seq *Sequencer, log *zap.SugaredLogger) *Engine {
	return &Engine{Sequencer: seq, Log: log}
}

// Run expands [from,to] and executes each day in order. On the first
// failing day it stops and returns an aggregate WorkflowResult whose
// ProcessedDays reflects only the days actually attempted, not the
// full range (§4.13).
func (e *Engine) Run(stdctx context.Context, from, to string, cfg *model.Configuration) (model.WorkflowResult, error) {
	dates, err := bizdate.Range(from, to)
	if err != nil {
		return model.WorkflowResult{}, err
	}

	start := time.Now()
	tracker := newProgressTracker()

	result := model.WorkflowResult{StartDate: from, EndDate: to}

	for _, date := range dates {
		dayResult := RunDay(stdctx, e.Sequencer, date, cfg, e.Log)
		result.PerDay = append(result.PerDay, dayResult)
		result.ProcessedDays++

		if dayResult.Success {
			result.SuccessfulDays++
			tracker.markLoaded(dayResult.Date)
			if e.Log != nil {
				if cutoff := tracker.currentCutoff(); cutoff != "" {
					e.Log.Infow("progress cutoff advanced", "cutoff", cutoff)
				}
			}
			continue
		}

		result.FailedDays++
		tracker.markFailed(dayResult.Date)
		break // fail-stop: remaining days in the range are not attempted
	}

	result.Duration = time.Since(start)
	result.Success = result.FailedDays == 0

	if e.Log != nil {
		e.Log.Infow("workflow finished",
			"processedDays", result.ProcessedDays,
			"successfulDays", result.SuccessfulDays,
			"failedDays", result.FailedDays,
			"duration", result.Duration.String(),
		)
	}

	return result, nil
}
