package echo

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedExport covers wrong sub-table counts, missing expected
	// columns and unparseable trace cells.
	ErrMalformedExport = errors.New("malformed export")
	// ErrMissingTiming indicates no valve-closure entry exists for a case.
	ErrMissingTiming = errors.New("missing valve-closure timing")
	// ErrUnsupported indicates an input file shape that no reader handles.
	ErrUnsupported = errors.New("unsupported export format")
)

// Stage names the pipeline step a case failed in.
type Stage string

const (
	StageRead     Stage = "read"
	StageSegment  Stage = "segment"
	StageParse    Stage = "parse"
	StageTiming   Stage = "timing"
	StageDescribe Stage = "describe"
)

// CaseError reports a per-case failure. No row is produced for the case.
type CaseError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *CaseError) Error() string {
	if e == nil {
		return "case error"
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *CaseError) Unwrap() error { return e.Err }

// Fail wraps err as a CaseError unless it already is one.
func Fail(path string, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var ce *CaseError
	if errors.As(err, &ce) {
		return err
	}
	return &CaseError{Path: path, Stage: stage, Err: err}
}

// Malformed builds an ErrMalformedExport with context.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedExport, fmt.Sprintf(format, args...))
}
