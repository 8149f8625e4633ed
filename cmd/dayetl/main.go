// Command dayetl runs the daily batch ETL engine over a business-date
// range. CLI surface and exit codes per §6: 0 success, 1 any day
// failed, 2 invalid arguments/config, 3 unexpected runtime error.
// Flag parsing follows the pack's bulk-loader reference
// (postgres-bulk-loading/prod_loader.go) rather than the teacher's own
// hand-rolled subcommand dispatcher, since that dispatcher doesn't fit
// POSIX-style flags (see DESIGN.md).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/config"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/extract"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/logging"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/workflow"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dayetl", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: dayetl --config <path> --from YYYYMMDD --to YYYYMMDD [--source <name>] [--dry-run] [--log-level LEVEL] [--log-file PATH]")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "path to the INI configuration file")
	from := fs.String("from", "", "first business date, YYYYMMDD")
	to := fs.String("to", "", "last business date, YYYYMMDD")
	source := fs.String("source", "", "restrict the run to a single configured source (optional)")
	dryRun := fs.Bool("dry-run", false, "validate configuration and exit without running any day")
	logLevel := fs.String("log-level", "info", "zap log level")
	logFile := fs.String("log-file", "", "path to the structured JSON log file (stderr if empty)")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if *configPath == "" || *from == "" || *to == "" {
		fs.Usage()
		return 2
	}

	log, err := logging.New(*logLevel, *logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dayetl:", err)
		return 2
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Errorw("config load failed", "cause", err)
		return errs.ExitCode(err)
	}

	if *source != "" {
		only, ok := cfg.SourceByName(*source)
		if !ok {
			log.Errorw("requested --source not found in config", "source", *source)
			return 2
		}
		cfg.Sources = []model.SourceConfig{only}
	}

	if err := config.Validate(cfg, extract.NewFactory(log)); err != nil {
		log.Errorw("config validation failed", "cause", err)
		return errs.ExitCode(err)
	}

	if *dryRun {
		log.Infow("dry run: configuration valid", "sources", len(cfg.Sources), "targets", len(cfg.Targets))
		return 0
	}

	stdctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trapSignals(cancel)

	tempRoot, err := os.MkdirTemp("", "dayetl-")
	if err != nil {
		log.Errorw("cannot create run temp directory", "cause", err)
		return 3
	}
	defer os.RemoveAll(tempRoot)

	seq := workflow.NewSequencer(tempRoot, log)
	engine := workflow.NewEngine(seq, log)

	result, err := engine.Run(stdctx, *from, *to, cfg)
	if err != nil {
		log.Errorw("workflow failed to start", "cause", err)
		return errs.ExitCode(err)
	}

	log.Infow("workflow summary",
		"processedDays", result.ProcessedDays,
		"successfulDays", result.SuccessfulDays,
		"failedDays", result.FailedDays,
	)

	if !result.Success {
		return 1
	}
	return 0
}

func trapSignals(cancel context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
}
