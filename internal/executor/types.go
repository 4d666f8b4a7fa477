// Package executor runs the batches produced by internal/planner: either
// serially, capturing each job's log output into a shared buffer, or
// concurrently across a worker pool, where jobs log to their own default
// sink instead. See the package-level docs on Serial and Parallel for the
// reasoning behind that asymmetry.
package executor

import (
	"io"
	"log"
)

// Job is the subset of planner.Job the executor needs to run one unit of
// work and describe it in progress output.
type Job interface {
	Name() string
	Input() string
	Run() error
}

// LogSetter is implemented by tools that accept an injected log sink
// instead of writing to a process-global stream. Serial gives every job a
// writer backed by its shared log buffer; Parallel never calls SetLog, so
// such tools fall back to whatever default they use (conventionally
// os.Stdout), which is the source of the serial/parallel stdio asymmetry.
type LogSetter interface {
	SetLog(w io.Writer)
}

// Options configures both executors.
type Options struct {
	// Log receives executor-level messages (each completed job in Serial,
	// and job failures in both executors). It is distinct from the per-job log capture Serial does.
	Log *log.Logger

	// Jobs caps worker pool width in Parallel. Zero means "use the
	// widest batch", i.e. run every job in a batch concurrently.
	Jobs int
}
