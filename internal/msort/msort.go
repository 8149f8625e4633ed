// Package msort implements the loader's external sort: a stable sort
// by configured sort-key fields that spills to per-run temp files and
// k-way-merges via a bounded heap when the in-memory footprint would
// exceed the configured ceiling (§4.9, §9 "External sort"). The
// run-generation + heap-merge algorithm has no library counterpart
// anywhere in the reference pack (see DESIGN.md), so it is built on
// stdlib container/heap and encoding/gob for the spill format; the
// package name and its place next to the staging/load subsystem is
// adapted from the teacher pack's msort utility.
package msort

import (
	"container/heap"
	"encoding/gob"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

func init() {
	gob.Register(&model.QuoteTargetRecord{})
	gob.Register(&model.TradeTargetRecord{})
}

// runRecordEstimate is the assumed average footprint of one
// TargetRecord in bytes, used to decide whether the in-memory sort
// fits under the configured ceiling without needing to marshal
// anything just to measure it.
const runRecordEstimate = 512

// Sort stably sorts records by sortFields (looked up via each
// record's ToWire() map), dropping records that carry none of the
// configured keys. When the estimated footprint exceeds ceilingBytes,
// it spills sorted runs to tempDir and k-way-merges them with a
// bounded heap instead of sorting in memory.
func Sort(records []model.TargetRecord, sortFields []string, ceilingBytes int64, tempDir string, log *zap.SugaredLogger) ([]model.TargetRecord, error) {
	if len(sortFields) == 0 {
		sortFields = []string{"receive_time"}
	}

	kept := make([]model.TargetRecord, 0, len(records))
	for _, r := range records {
		if !hasAnySortKey(r, sortFields) {
			if log != nil {
				log.Warnw("record dropped: missing all configured sort keys", "dataType", r.DataType())
			}
			continue
		}
		kept = append(kept, r)
	}

	estimate := int64(len(kept)) * runRecordEstimate
	if ceilingBytes <= 0 || estimate <= ceilingBytes {
		sortInMemory(kept, sortFields)
		return kept, nil
	}

	// seq carries each record's position in the original (pre-spill)
	// input order through run generation and the merge, so records
	// sharing a sort key but landing in different spilled runs still
	// come out in input order (§4.9 "stable sort").
	indexed := make([]recordWithSeq, len(kept))
	for i, r := range kept {
		indexed[i] = recordWithSeq{Record: r, Seq: i}
	}

	return spillAndMerge(indexed, sortFields, ceilingBytes, tempDir)
}

func hasAnySortKey(r model.TargetRecord, fields []string) bool {
	wire := r.ToWire()
	for _, f := range fields {
		if v, ok := wire[f]; ok && !isZeroValue(v) {
			return true
		}
	}
	return false
}

func isZeroValue(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	default:
		return false
	}
}

func sortKey(r model.TargetRecord, fields []string) string {
	wire := r.ToWire()
	key := ""
	for _, f := range fields {
		key += fmt.Sprintf("%v\x00", wire[f])
	}
	return key
}

func sortInMemory(records []model.TargetRecord, fields []string) {
	sort.SliceStable(records, func(i, j int) bool {
		return sortKey(records[i], fields) < sortKey(records[j], fields)
	})
}

// runRecordsPerFile bounds each spilled run so no single temp file's
// in-memory decode exceeds the configured ceiling by much.
const runRecordsPerFile = 50_000

// recordWithSeq pairs a record with its position in the original
// input order, carried through run generation and the merge so the
// merge's tiebreak can recover input order for equal sort keys.
type recordWithSeq struct {
	Record model.TargetRecord
	Seq    int
}

// spillAndMerge implements the two-phase external sort: write sorted
// runs to temp files, then k-way-merge them via a bounded heap
// (§9 "External sort").
func spillAndMerge(records []recordWithSeq, fields []string, ceilingBytes int64, tempDir string) ([]model.TargetRecord, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sort spill dir: %w", err)
	}

	perFile := ceilingBytes / runRecordEstimate
	if perFile <= 0 || perFile > runRecordsPerFile {
		perFile = runRecordsPerFile
	}

	var runPaths []string
	defer func() {
		for _, p := range runPaths {
			os.Remove(p)
		}
	}()

	for start := 0; start < len(records); start += int(perFile) {
		end := start + int(perFile)
		if end > len(records) {
			end = len(records)
		}
		chunk := append([]recordWithSeq(nil), records[start:end]...)
		sort.SliceStable(chunk, func(i, j int) bool {
			return sortKey(chunk[i].Record, fields) < sortKey(chunk[j].Record, fields)
		})

		path, err := writeRun(tempDir, chunk)
		if err != nil {
			return nil, err
		}
		runPaths = append(runPaths, path)
	}

	return mergeRuns(runPaths, fields)
}

func writeRun(tempDir string, chunk []recordWithSeq) (string, error) {
	f, err := os.CreateTemp(tempDir, "run-*.gob")
	if err != nil {
		return "", fmt.Errorf("creating sort run file: %w", err)
	}
	defer f.Close()

	enc := gob.NewEncoder(f)
	for _, rec := range chunk {
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("encoding sort run: %w", err)
		}
	}
	return f.Name(), nil
}

// heapItem is one run's current head record, tracked by the merge
// heap.
type heapItem struct {
	record model.TargetRecord
	key    string
	seq    int
	runIdx int
}

type mergeHeap []*heapItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	// Equal sort key: fall back to each record's original input
	// position so the merge doesn't reorder ties arbitrarily by
	// which run happened to reach the heap first.
	return h[i].seq < h[j].seq
}
func (h mergeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{}) { *h = append(*h, x.(*heapItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func mergeRuns(paths []string, fields []string) ([]model.TargetRecord, error) {
	decoders := make([]*gob.Decoder, len(paths))
	files := make([]*os.File, len(paths))
	for i, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("reopening sort run: %w", err)
		}
		files[i] = f
		decoders[i] = gob.NewDecoder(f)
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	h := &mergeHeap{}
	heap.Init(h)
	for i, dec := range decoders {
		if item, ok := nextItem(dec, fields, i); ok {
			heap.Push(h, item)
		}
	}

	var out []model.TargetRecord
	for h.Len() > 0 {
		top := heap.Pop(h).(*heapItem)
		out = append(out, top.record)
		if next, ok := nextItem(decoders[top.runIdx], fields, top.runIdx); ok {
			heap.Push(h, next)
		}
	}
	return out, nil
}

func nextItem(dec *gob.Decoder, fields []string, runIdx int) (*heapItem, bool) {
	var rec recordWithSeq
	if err := dec.Decode(&rec); err != nil {
		return nil, false
	}
	return &heapItem{record: rec.Record, key: sortKey(rec.Record, fields), seq: rec.Seq, runIdx: runIdx}, true
}

// Cleanup removes the sort spill directory (§4.9). The columnar
// loader's Shutdown removes its spill directory itself and does not
// call this.
func Cleanup(tempDir string) error {
	if tempDir == "" {
		return nil
	}
	return os.RemoveAll(tempDir)
}
