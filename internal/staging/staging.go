// Package staging implements the staging lifecycle (C13, Load & Clean
// subprocesses): the Load subprocess opens the shared connection,
// materializes every staging table the run needs via an embedded
// create script, then instantiates the loader; Clean drops those
// tables via an embedded drop script, shuts the loader down, and
// closes the connection. Adapted from the teacher's PreLoadSetup /
// PostLoadCleanup (ohlcv_orchestrator.go): disable/re-enable
// autovacuum and create/drop the `_stage`-suffixed table around the
// load, generalized from one fixed table to the run's full staging
// set.
package staging

import (
	"context"
	_ "embed"
	"fmt"
	"math/big"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/load"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// suffixAlphabet is the base62 symbol set used to render GenerateName's
// random suffix. Base62 packs ~5.95 bits per character, against hex's
// 4, so the spec's fixed 6-character suffix carries as much collision
// resistance as that length allows.
const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// randomSuffix renders a fresh UUIDv4's randomness as 6 base62
// characters (~35.7 bits of entropy), rather than truncating its hex
// form (24 bits for 6 hex characters).
func randomSuffix() string {
	id := uuid.New()
	n := new(big.Int).SetBytes(id[:])
	base := big.NewInt(int64(len(suffixAlphabet)))

	var buf [6]byte
	mod := new(big.Int)
	for i := len(buf) - 1; i >= 0; i-- {
		n.DivMod(n, base, mod)
		buf[i] = suffixAlphabet[mod.Int64()]
	}
	return string(buf[:])
}

//go:embed scripts/create.sql.tmpl
var createScriptSrc string

//go:embed scripts/drop.sql.tmpl
var dropScriptSrc string

var (
	createTmpl = template.Must(template.New("create").Parse(createScriptSrc))
	dropTmpl   = template.Must(template.New("drop").Parse(dropScriptSrc))
)

type scriptVars struct {
	StagingName string
	TargetName  string
}

// GenerateName computes the staging table name
// {prefix}_{targetTable}_{YYYYMMDD}_{rand6}, generated once per run
// and kept immutable for the run's lifetime (§4.10).
func GenerateName(prefix, targetTable, cliDate string) string {
	return fmt.Sprintf("%s_%s_%s_%s", prefix, targetTable, cliDate, randomSuffix())
}

// Load executes the Load subprocess: opens the shared connection,
// generates and creates every staging table the configured target's
// TargetTableMappings requires, stores them in dayCtx, and returns a
// ready-to-use loader (§4.10, §4.13).
func Load(stdctx context.Context, cfg model.TargetConfig, cliDate string, tempRoot string, dayCtx *model.Context) (load.Loader, error) {
	conn, err := load.Connect(stdctx, cfg.ConnectionURL)
	if err != nil {
		return nil, errs.Load("LOAD", dayCtx.CurrentDate, "opening shared store connection", err)
	}
	dayCtx.SharedStoreConnection = conn

	for dataType, targetTable := range cfg.TargetTableMappings {
		name := GenerateName(cfg.TemporaryTablePrefix, targetTable, cliDate)
		table := model.StagingTable{Name: name, DataType: dataType, TargetName: targetTable}
		dayCtx.StagingTables[dataType] = table

		sql, err := renderScript(createTmpl, scriptVars{StagingName: name, TargetName: targetTable})
		if err != nil {
			return nil, err
		}
		if _, err := conn.Pool.Exec(stdctx, sql); err != nil {
			return nil, errs.Load("LOAD", dayCtx.CurrentDate, "creating staging table "+name, err)
		}
	}

	loader := load.NewColumnarLoader(tempRoot, cfg.Name)
	if err := loader.Init(cfg, conn); err != nil {
		return nil, err
	}
	return loader, nil
}

// Clean executes the Clean subprocess: drops every staging table over
// the same shared connection, shuts the loader down, then closes the
// connection (§4.10). CleanupError is logged by the caller but does
// not retro-fail an otherwise-successful day.
func Clean(stdctx context.Context, dayCtx *model.Context, loader load.Loader) error {
	var firstErr error

	if conn, ok := dayCtx.SharedStoreConnection.(*load.PoolConn); ok {
		for _, table := range dayCtx.StagingTables {
			sql, err := renderScript(dropTmpl, scriptVars{StagingName: table.Name})
			if err != nil {
				firstErr = err
				continue
			}
			if _, err := conn.Pool.Exec(stdctx, sql); err != nil && firstErr == nil {
				firstErr = errs.Cleanup("CLEAN", dayCtx.CurrentDate, "dropping staging table "+table.Name, err)
			}
		}
	}

	if loader != nil {
		if err := loader.Shutdown(); err != nil && firstErr == nil {
			firstErr = errs.Cleanup("CLEAN", dayCtx.CurrentDate, "loader shutdown failed", err)
		}
	}

	if dayCtx.SharedStoreConnection != nil {
		if err := dayCtx.SharedStoreConnection.Close(stdctx); err != nil && firstErr == nil {
			firstErr = errs.Cleanup("CLEAN", dayCtx.CurrentDate, "closing shared connection", err)
		}
	}

	dayCtx.CleanupPerformed = true
	return firstErr
}

func renderScript(tmpl *template.Template, vars scriptVars) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", errs.Load("LOAD", "", "rendering staging script", err)
	}
	return sb.String(), nil
}
