package buildsys

import (
	"errors"
	"fmt"
)

// StepError is returned by pipeline steps that can't continue. Summary, Detail and Hint are passed to the
// Reporter as they are. An empty Summary means the failing tool already printed everything worth saying.
type StepError struct {
	Summary  string
	Detail   string
	Hint     string
	ExitCode int
	Cause    error
}

var _ error = (*StepError)(nil)

func (e *StepError) Error() string {
	msg := e.Summary + e.Detail
	if msg == "" {
		msg = fmt.Sprintf("exited with status %d", e.ExitCode)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// Silent returns true if the error should not be reported again
func (e *StepError) Silent() bool {
	return e.Summary == ""
}

// Fatal creates a StepError for internally detected problems (exit status 1).
func Fatal(summary, detail, hint string, cause error) *StepError {
	return &StepError{
		Summary:  summary,
		Detail:   detail,
		Hint:     hint,
		ExitCode: 1,
		Cause:    cause,
	}
}

// ExitStatus creates a silent StepError that propagates the exit code of a failed tool.
func ExitStatus(code int) *StepError {
	if code == 0 {
		code = 1
	}
	return &StepError{ExitCode: code}
}

// ExitCode maps an error returned by the pipeline to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var stepErr *StepError
	if errors.As(err, &stepErr) && stepErr.ExitCode != 0 {
		return stepErr.ExitCode
	}
	return 1
}
