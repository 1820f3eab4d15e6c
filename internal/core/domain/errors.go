package domain

import (
	"errors"
	"fmt"
)

// Pipeline error kinds. Every one of them aborts a single paste.
var (
	ErrDecode         = errors.New("image could not be decoded")
	ErrEncode         = errors.New("image could not be encoded as webp")
	ErrPathResolution = errors.New("attachment path could not be resolved")
	ErrPersist        = errors.New("attachment could not be written")
	ErrLink           = errors.New("link could not be inserted")
	ErrNoDocument     = errors.New("no note is open")
)

// Stage names a step of the paste pipeline
type Stage string

const (
	StageIdle        Stage = "idle"
	StageFiltering   Stage = "filtering"
	StageTranscoding Stage = "transcoding"
	StageResolving   Stage = "resolving"
	StagePersisting  Stage = "persisting"
	StageLinking     Stage = "linking"
	StageAborted     Stage = "aborted"
)

// PasteError carries the kind of failure and its cause
// errors.Is matches both the kind sentinel and anything in the cause chain
type PasteError struct {
	Stage Stage
	Kind  error
	Err   error
}

// NewPasteError wraps err with the given stage and kind
func NewPasteError(stage Stage, kind, err error) *PasteError {
	return &PasteError{Stage: stage, Kind: kind, Err: err}
}

func (e *PasteError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PasteError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
