package model

import (
	"context"
	"fmt"
	"sync"
)

// StoreConnection is the shared remote connection handle Load opens
// and Clean closes. The engine depends only on this narrow interface;
// the concrete pgx pool lives in internal/load.
type StoreConnection interface {
	Close(ctx context.Context) error
}

// Context is the per-day mutable record owned by the daily workflow.
// Stages mutate it strictly in order; extractor tasks only read it.
type Context struct {
	mu sync.Mutex

	CurrentDate string // YYYY.MM.DD, the record-facing form
	Config      *Configuration

	CurrentStage Stage

	Extracted      []SourceRecord
	ExtractedCount int

	Transformed      []TargetRecord
	TransformedCount int

	LoadedCount int

	// ExtractSucceeded distinguishes "stage ran and produced zero
	// records" (§8 "Empty object-store match set" boundary behavior)
	// from "stage never ran", since ExtractedCount alone can't tell
	// the sequencer's TRANSFORM precondition the two apart.
	ExtractSucceeded bool

	ValidationPassed bool
	CleanupPerformed bool

	SharedStoreConnection StoreConnection // set by Load, closed by Clean

	// StagingTables maps dataType -> the StagingTable generated for it
	// this run. Populated once by the Load subprocess.
	StagingTables map[string]StagingTable

	// ExtractFailures records per-source failures the Extract stage
	// tolerated under the partial-failure rule (supplemental
	// bookkeeping, not required by the core success/failure algebra).
	ExtractFailures []SourceFailure
}

// SourceFailure is the supplemental per-source failure record
// surfaced alongside a partially-successful Extract stage.
type SourceFailure struct {
	SourceName string
	Reason     string
}

// NewContext constructs a zeroed Context for one business date.
func NewContext(date string, cfg *Configuration) *Context {
	return &Context{
		CurrentDate:   date,
		Config:        cfg,
		CurrentStage:  StageNone,
		StagingTables: make(map[string]StagingTable),
	}
}

// ValidateInitial asserts all counters are zero and the stage is NONE,
// the precondition the daily workflow checks before running the
// sequencer.
func ValidateInitial(ctx *Context) error {
	if ctx.CurrentStage != StageNone {
		return fmt.Errorf("context not fresh: stage=%s", ctx.CurrentStage)
	}
	if ctx.ExtractedCount != 0 || ctx.TransformedCount != 0 || ctx.LoadedCount != 0 {
		return fmt.Errorf("context not fresh: non-zero counters")
	}
	if ctx.ValidationPassed || ctx.CleanupPerformed || ctx.ExtractSucceeded {
		return fmt.Errorf("context not fresh: stage flags already set")
	}
	return nil
}

// AppendExtracted atomically appends a batch of records produced by
// one extractor task, the short critical section the Extract stage's
// consolidation buffer uses.
func (c *Context) AppendExtracted(batch []SourceRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Extracted = append(c.Extracted, batch...)
	c.ExtractedCount = len(c.Extracted)
}

// AppendExtractFailure records a tolerated per-source failure.
func (c *Context) AppendExtractFailure(f SourceFailure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ExtractFailures = append(c.ExtractFailures, f)
}

// DiscardExtracted drops every record the Extract stage had buffered
// so far. Used when the stage is cancelled mid-run: §5 requires
// partial extraction results to be discarded on cancel rather than
// carried forward into Transform.
func (c *Context) DiscardExtracted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Extracted = nil
	c.ExtractedCount = 0
	c.ExtractSucceeded = false
}
