package jobs

import (
	"errors"
	"fmt"
)

var (
	ErrJobExists     = errors.New("job already exists")
	ErrGroupExists   = errors.New("process group already exists")
	ErrGroupNotFound = errors.New("process group not found")
	ErrNoProcesses   = errors.New("job has no processes")
)

// InconsistentError is returned by Table.Check when the indexes disagree.
type InconsistentError struct {
	msg string
}

func (e InconsistentError) Error() string {
	return "inconsistent job table: " + e.msg
}

func inconsistent(format string, args ...any) InconsistentError {
	return InconsistentError{msg: fmt.Sprintf(format, args...)}
}
