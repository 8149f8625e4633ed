package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/colorder"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/dbretry"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/msort"
)

// defaultChunkSize is the bulk-insert batch size: 1,000 rows per
// insert call (§4.9 "Batching"). NewColumnarLoader always uses it;
// there is no option to change it.
const defaultChunkSize = 1000

// bulk-insert/append retry policy: transient connection failures
// (§5 "per-operation timeouts ... configurable for download and bulk
// insert") are retried a few times with exponential backoff; schema
// or data errors surface immediately since dbretry.IsTransient
// excludes them.
const (
	loadRetryAttempts = 3
	loadRetryBaseWait = 200 * time.Millisecond
)

// dataTypeLoadOrder fixes the externally defined order appends happen
// in (§4.9 "loadData"): quote before trade.
var dataTypeLoadOrder = []string{"quote", "trade"}

// Loader is the target-agnostic capability (C11): a single loader
// instance is single-threaded and is not required to parallelize
// across data types (§4.9 "Concurrency").
type Loader interface {
	Init(cfg model.TargetConfig, conn model.StoreConnection) error
	SortData(records []model.TargetRecord) ([]model.TargetRecord, error)
	LoadData(sortedRecords []model.TargetRecord, staging map[string]model.StagingTable) error
	ValidateLoad(staging map[string]model.StagingTable) error
	Shutdown() error
}

// ColumnarLoader is the concrete loader (C12) driving bulk insert into
// a shared pgx connection.
type ColumnarLoader struct {
	cfg      model.TargetConfig
	conn     *PoolConn
	chunk    int
	sortTemp string

	// rowDeltas tracks, per staging table, how many rows were appended
	// into the target so validateLoad can compare against the
	// staging row count without a second COUNT(*) round trip.
	rowDeltas map[string]int64
}

// NewColumnarLoader constructs a loader whose sort spill files live
// under a target-owned subdirectory of tempRoot. tempRoot is the
// run-wide scratch directory shared with the Extract stage and,
// potentially, loaders for other targets in the same run; Shutdown
// must only ever remove this loader's own subdirectory, never
// tempRoot itself (§4.9 "shutdown").
func NewColumnarLoader(tempRoot, target string) *ColumnarLoader {
	sortTemp := filepath.Join(tempRoot, "sort-"+target)
	return &ColumnarLoader{chunk: defaultChunkSize, sortTemp: sortTemp, rowDeltas: map[string]int64{}}
}

func (l *ColumnarLoader) Init(cfg model.TargetConfig, conn model.StoreConnection) error {
	if conn == nil {
		return errs.Config("LOAD", "", "loader init requires a non-nil shared connection", nil)
	}
	pc, ok := conn.(*PoolConn)
	if !ok {
		return errs.Config("LOAD", "", "loader init requires a *load.PoolConn shared connection", nil)
	}
	l.cfg = cfg
	l.conn = pc
	return nil
}

func (l *ColumnarLoader) SortData(records []model.TargetRecord) ([]model.TargetRecord, error) {
	ceiling := int64(l.cfg.MaxMemoryMB) * 1024 * 1024
	sorted, err := msort.Sort(records, l.cfg.SortFields, ceiling, l.sortTemp, nil)
	if err != nil {
		return nil, errs.Load("LOAD", "", "external sort failed", err)
	}
	return sorted, nil
}

// LoadData groups sortedRecords by data-type, bulk-inserts each group
// into its staging table in order-preserving chunks, then appends
// each staging table into its target in the fixed data-type order
// (§4.9 "loadData"). If an append fails, loading stops; earlier
// appends remain and staging tables are left intact.
func (l *ColumnarLoader) LoadData(sortedRecords []model.TargetRecord, staging map[string]model.StagingTable) error {
	grouped := groupByDataType(sortedRecords)

	stdctx := context.Background()

	for dataType, records := range grouped {
		table, ok := staging[dataType]
		if !ok {
			return errs.Load("LOAD", "", "no staging table generated for data type "+dataType, nil)
		}
		if err := l.copyIntoStaging(stdctx, table.Name, records); err != nil {
			return err
		}
	}

	for _, dataType := range dataTypeLoadOrder {
		table, ok := staging[dataType]
		if !ok {
			continue
		}
		delta, err := l.appendStagingToTarget(stdctx, table)
		if err != nil {
			return err
		}
		l.rowDeltas[table.Name] = delta
	}
	return nil
}

// groupByDataType partitions records by DataType(), preserving each
// group's relative order from sortedRecords.
func groupByDataType(records []model.TargetRecord) map[string][]model.TargetRecord {
	grouped := make(map[string][]model.TargetRecord)
	for _, r := range records {
		grouped[r.DataType()] = append(grouped[r.DataType()], r)
	}
	return grouped
}

// buildRows converts a batch of records into column-ordered value
// rows, the pure step of the bulk-insert path kept separate from the
// pgx call so it can be tested without a live connection.
func buildRows(records []model.TargetRecord, columns []string) [][]interface{} {
	rows := make([][]interface{}, len(records))
	for i, rec := range records {
		wire := rec.ToWire()
		row := make([]interface{}, len(columns))
		for j, col := range columns {
			row[j] = wire[col]
		}
		rows[i] = row
	}
	return rows
}

func (l *ColumnarLoader) copyIntoStaging(ctx context.Context, tableName string, records []model.TargetRecord) error {
	if len(records) == 0 {
		return nil
	}
	columns, err := colorder.OrderOf(records[0])
	if err != nil {
		return err
	}

	for start := 0; start < len(records); start += l.chunk {
		end := start + l.chunk
		if end > len(records) {
			end = len(records)
		}
		rows := buildRows(records[start:end], columns)

		err := dbretry.Do(ctx, loadRetryAttempts, loadRetryBaseWait, func() error {
			_, err := l.conn.Pool.CopyFrom(ctx,
				pgx.Identifier{tableName},
				columns,
				pgx.CopyFromRows(rows),
			)
			return err
		})
		if err != nil {
			return errs.Load("LOAD", "", fmt.Sprintf("bulk insert into %s failed at offset %d", tableName, start), err)
		}
	}
	return nil
}

// appendStagingToTarget moves one staging table's rows into its
// target table and returns the number of rows appended.
func (l *ColumnarLoader) appendStagingToTarget(ctx context.Context, table model.StagingTable) (int64, error) {
	var rowsAffected int64
	err := dbretry.Do(ctx, loadRetryAttempts, loadRetryBaseWait, func() error {
		tag, err := l.conn.Pool.Exec(ctx, fmt.Sprintf("INSERT INTO %s SELECT * FROM %s", table.TargetName, table.Name))
		if err != nil {
			return err
		}
		rowsAffected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, errs.Load("LOAD", "", "appending staging table "+table.Name+" to "+table.TargetName, err)
	}
	return rowsAffected, nil
}

// ValidateLoad compares each staging table's row count against its
// recorded post-append delta (§4.9 "validateLoad").
func (l *ColumnarLoader) ValidateLoad(staging map[string]model.StagingTable) error {
	for _, table := range staging {
		var stagingCount int64
		err := l.conn.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table.Name).Scan(&stagingCount)
		if err != nil {
			return errs.Validation("VALIDATE", "", "counting staging rows in "+table.Name, err)
		}
		delta, ok := l.rowDeltas[table.Name]
		if !ok {
			continue
		}
		if delta != stagingCount {
			return errs.Validation("VALIDATE", "", fmt.Sprintf("row count mismatch for %s: staged %d, appended %d", table.Name, stagingCount, delta), nil)
		}
	}
	return nil
}

// Shutdown releases only loader-owned resources (sort temp files);
// the shared connection is closed by the engine (§4.9 "shutdown").
func (l *ColumnarLoader) Shutdown() error {
	if l.sortTemp == "" {
		return nil
	}
	return os.RemoveAll(l.sortTemp)
}
