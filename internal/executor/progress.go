package executor

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var isTerminal = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

// progress redraws a fixed block of status lines in place on stderr, one
// line per worker plus a summary line at index 0. This is a supplementary
// live widget only; on a non-terminal it prints nothing. It never touches
// stdout, which carries the one-line-per-job console contract (see
// progressLine and BuildingPrologue) that a caller may be scripting against.
type progress struct {
	mu         sync.Mutex
	lines      []string
	lastRedraw time.Time
}

func newProgress(workers int) *progress {
	return &progress{lines: make([]string, workers+1)}
}

func (p *progress) set(idx int, text string) {
	if !isTerminal {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if diff := len(p.lines[idx]) - len(text); diff > 0 {
		text += strings.Repeat(" ", diff)
	}
	p.lines[idx] = text
	if time.Since(p.lastRedraw) < 100*time.Millisecond {
		return
	}
	p.redrawLocked()
}

func (p *progress) flush() {
	if !isTerminal {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redrawLocked()
}

func (p *progress) redrawLocked() {
	p.lastRedraw = time.Now()
	for _, line := range p.lines {
		fmt.Fprintln(os.Stderr, line)
	}
	fmt.Fprintf(os.Stderr, "\033[%dA", len(p.lines))
}

func summaryLine(done, total int) string {
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	return fmt.Sprintf("[%3d%%] %d of %d jobs complete", pct, done, total)
}

// BuildingPrologue is the one-time banner the driver prints to stdout
// before planning begins, mirroring progressLine's format at 0% complete.
const BuildingPrologue = "[0%  ] building ..."

// progressLine formats the mandated per-job console line: percent complete
// so far (floor division, left-justified to a width of 4 inside the
// brackets), the tool's display name, and the file it ran on. Printed to
// stdout once per completed job, successful or not, so progress always
// advances by exactly one line per job.
func progressLine(done, total int, toolName, path string) string {
	pct := 0
	if total > 0 {
		pct = 100 * done / total
	}
	tag := fmt.Sprintf("%d%%", pct)
	for len(tag) < 4 {
		tag += " "
	}
	return fmt.Sprintf("[%s] %s %q", tag, toolName, path)
}
