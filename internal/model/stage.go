package model

// Stage names one of the five subprocesses the sequencer runs in
// strict order.
type Stage string

const (
	StageNone      Stage = "NONE"
	StageExtract   Stage = "EXTRACT"
	StageTransform Stage = "TRANSFORM"
	StageLoad      Stage = "LOAD"
	StageValidate  Stage = "VALIDATE"
	StageClean     Stage = "CLEAN"
)

// Next returns the stage that must follow s in the sequencer's strict
// order, and false once s is the terminal stage.
func (s Stage) Next() (Stage, bool) {
	switch s {
	case StageNone:
		return StageExtract, true
	case StageExtract:
		return StageTransform, true
	case StageTransform:
		return StageLoad, true
	case StageLoad:
		return StageValidate, true
	case StageValidate:
		return StageClean, true
	default:
		return "", false
	}
}
