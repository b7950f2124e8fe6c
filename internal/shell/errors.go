package shell

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPipeline     = errors.New("empty pipeline")
	ErrTooManyStages     = errors.New("pipelines are limited to two stages")
	ErrBuiltinInPipeline = errors.New("built-in commands cannot be part of a pipeline")
	ErrNoFreeJobID       = errors.New("no free job id")
	ErrJobNotFound       = errors.New("job not found")
	ErrJobsRemain        = errors.New("there are unfinished jobs")
)

// ArgumentError is returned by a built-in given missing or malformed
// arguments.
type ArgumentError struct {
	Builtin string
	Msg     string
}

func (e *ArgumentError) Error() string {
	return e.Builtin + ": " + e.Msg
}

// WaitError is returned from Worker.Run when querying child status fails
// for a reason other than having no children.
type WaitError struct {
	Err error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("wait for children: %v", e.Err)
}

func (e *WaitError) Unwrap() error {
	return e.Err
}
