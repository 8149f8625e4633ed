// Package logging wires the engine's structured JSON log lines through
// zap, the logging library the teacher threads through its agent
// executor and market-data jobs.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
)

// New builds a zap.SugaredLogger writing JSON lines at the given
// level to the given file path, or to stderr when path is empty.
func New(level, path string) (*zap.SugaredLogger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, errs.Config("CLI", "", "invalid --log-level", err)
		}
	}

	var ws zapcore.WriteSyncer
	if path == "" {
		ws = zapcore.AddSync(os.Stderr)
	} else {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errs.Config("CLI", "", "cannot open --log-file", err)
		}
		ws = zapcore.AddSync(f)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, lvl)

	return zap.New(core).Sugar(), nil
}

// StageFields returns the common key/value pairs every stage log line
// carries: stage name, business date, and running counts.
func StageFields(stage, date string, counts map[string]int) []interface{} {
	fields := []interface{}{"stage", stage, "date", date}
	for k, v := range counts {
		fields = append(fields, k, v)
	}
	return fields
}

// LogStageError writes the one structured JSON log line the error
// handling design requires on every failure: timestamp, level, stage,
// date, counts so far, and error kind/cause.
func LogStageError(log *zap.SugaredLogger, err *errs.StageError, counts map[string]int) {
	fields := StageFields(err.Stage, err.Date, counts)
	fields = append(fields, "kind", string(err.Kind), "cause", err.Error())
	log.Errorw("stage failed", fields...)
}
