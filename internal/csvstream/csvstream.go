// Package csvstream implements the streaming delimited-text parser
// (C4): read a header row, map columns by name, then yield one
// RawRecord at a time. Malformed rows are logged at warning and
// skipped rather than failing the whole file. Adapted from the
// teacher's batchedCSVReader (ohlcv_pipeline.go) and the
// encoding/csv usage in tradeHandler.go.
package csvstream

import (
	"bufio"
	"encoding/csv"
	"io"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

// Reader lazily yields RawRecords from a delimited-text stream. One
// row is materialized at a time; the reader never buffers the whole
// file.
type Reader struct {
	csvReader *csv.Reader
	columns   []string
	log       *zap.SugaredLogger
	rowNum    int
}

// Open wraps f (already positioned at the start of the file) with a
// CSV reader using the given field delimiter (',' or '|' per source),
// transparently gunzipping when gzipped is true. It reads the header
// row immediately and fails with ParseError if the file is empty or
// the header can't be read.
func Open(f io.Reader, delimiter rune, gzipped bool, log *zap.SugaredLogger) (*Reader, error) {
	var src io.Reader = bufio.NewReader(f)
	if gzipped {
		gz, err := gzip.NewReader(src)
		if err != nil {
			return nil, errs.Parse("EXTRACT", "", "opening gzip stream", err)
		}
		src = gz
	}

	cr := csv.NewReader(src)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, errs.Parse("EXTRACT", "", "reading header row", err)
	}

	return &Reader{csvReader: cr, columns: header, log: log}, nil
}

// Next yields the next RawRecord, or io.EOF when the stream is
// exhausted. A row the CSV reader returns an error for is logged at
// warning and skipped. Ragged rows are not errors (FieldsPerRecord is
// -1): columns missing from a short row are absent from Fields, and
// fields beyond the header are ignored.
func (r *Reader) Next() (model.RawRecord, error) {
	for {
		row, err := r.csvReader.Read()
		if err == io.EOF {
			return model.RawRecord{}, io.EOF
		}
		if err != nil {
			r.rowNum++
			if r.log != nil {
				r.log.Warnw("skipping malformed CSV row", "row", r.rowNum, "cause", err)
			}
			continue
		}
		r.rowNum++

		fields := make(map[string]string, len(r.columns))
		for i, col := range r.columns {
			if i < len(row) {
				fields[col] = row[i]
			}
		}
		return model.RawRecord{Fields: fields}, nil
	}
}

// Columns returns the header-derived column name list, in file order.
func (r *Reader) Columns() []string { return r.columns }

// ReadAll drains the reader into a slice; used by extractors whose
// per-file record counts are small enough to hold in memory after the
// per-row parse (the streaming contract is about not re-reading the
// file, not about the converted output).
func ReadAll(r *Reader) ([]model.RawRecord, error) {
	var out []model.RawRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}
