package executor

import (
	"bytes"
	"fmt"
)

// Serial runs every job of every batch one at a time, in batch order. Jobs
// that implement LogSetter are pointed at a shared buffer for the duration
// of their Run; the buffer's contents are returned so the caller can
// persist them (conventionally to <output_root>/output.log).
//
// A failing job is recorded in that log and still counted done, so
// progress keeps advancing; Serial does not abort the build. Downstream
// jobs whose declared inputs that job was supposed to produce run anyway
// and are left to fail on the missing input, surfacing as their own log
// entry — a known limitation, not a bug, matching the planner's
// fire-and-forget scheduling.
//
// Capturing stdio this way is only safe because jobs run one at a time:
// concurrent jobs writing into the same buffer would interleave garbage,
// which is why Parallel does not do this.
func Serial(batches [][]Job, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	p := newProgress(1)
	defer p.flush()

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	done := 0

	for _, batch := range batches {
		for _, job := range batch {
			if ls, ok := job.(LogSetter); ok {
				ls.SetLog(&buf)
			}

			err := job.Run()
			done++
			fmt.Println(progressLine(done, total, job.Name(), job.Input()))
			p.set(0, summaryLine(done, total))

			if err != nil {
				fmt.Fprintf(&buf, "%s(%s) failed: %v\n", job.Name(), job.Input(), err)
				logJob(opts, "%s(%s) failed: %v", job.Name(), job.Input(), err)
				continue
			}
			logJob(opts, "%s %q", job.Name(), job.Input())
		}
	}
	return buf.Bytes(), nil
}

func logJob(opts Options, format string, args ...interface{}) {
	if opts.Log == nil {
		return
	}
	opts.Log.Print(fmt.Sprintf(format, args...))
}
