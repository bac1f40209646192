package executor

import "fmt"

// NoRunnerError reports a job directory without a main runnable.
type NoRunnerError struct {
	Job string
	// Err is set when listing the job directory failed.
	Err error
}

func (e *NoRunnerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no runner found for job '%s': %v", e.Job, e.Err)
	}
	return fmt.Sprintf("no runner found for job '%s'", e.Job)
}

func (e *NoRunnerError) Unwrap() error { return e.Err }

// JobFailedError reports a job process that exited unsuccessfully. Code is
// -1 when no exit code was available.
type JobFailedError struct {
	Job  string
	Code int
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job '%s' failed with exit code %d", e.Job, e.Code)
}
