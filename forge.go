package forge

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"golang.org/x/xerrors"

	"github.com/forgekit/forge/internal/executor"
	"github.com/forgekit/forge/internal/planner"
)

// registeredTool pairs a Tool with the priority it was registered at. Order
// of registration is preserved — only the collision resolver in
// internal/planner consults Priority.
type registeredTool struct {
	tool     Tool
	priority int
	name     string
}

// Forge is a process-wide registry made explicit: the driver constructs one
// with New, registers tools into it, and calls Build. Unlike a singleton,
// nothing prevents a test or a multi-tenant driver from holding several
// independent Forge values.
type Forge struct {
	// Log receives planning and per-job diagnostics. Defaults to a logger
	// writing to stderr when nil at construction.
	Log *log.Logger

	tools []registeredTool
}

// New constructs a Forge. A nil logger defaults to stderr with standard
// flags.
func New(logger *log.Logger) *Forge {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Forge{Log: logger}
}

// Register adds tool to the registry with the given priority. Higher
// priority wins output collisions (see internal/planner's collision
// resolver). Registration order is preserved for tie-breaking.
func (f *Forge) Register(tool Tool, priority int) {
	f.tools = append(f.tools, registeredTool{
		tool:     tool,
		priority: priority,
		name:     toolName(tool),
	})
}

// BuildOptions controls one Build invocation.
type BuildOptions struct {
	// Recursive is accepted for API compatibility with the discovery
	// model's origin, which always walks the full input tree regardless
	// of this flag; forge does the same, so setting it false has no
	// effect. It exists so callers migrating from that model don't need
	// to special-case the option away.
	Recursive bool

	// Parallel selects the worker-pool executor over the default serial
	// one. See internal/executor for the stdio-capture asymmetry this
	// implies.
	Parallel bool

	// Jobs caps worker pool width when Parallel is set. Zero means "use
	// the widest batch".
	Jobs int
}

// Build runs one full planning-and-execution cycle: it injects roots into
// every registered tool, discovers and layers the job graph under
// inputRoot, and executes the resulting batches, writing outputRoot.
//
// Build does not return a summary of individual job failures — those are
// recorded in the log and the build proceeds past them regardless of
// executor (see internal/executor). A non-nil return here means planning
// itself failed (a contract violation, an unresolvable dependency, or a
// cycle) or, in parallel mode, that ctx was cancelled before every batch
// ran; it never means "some job failed".
//
// On success with a serial build, the aggregate captured tool log is
// written to <outputRoot>/output.log.
func (f *Forge) Build(ctx context.Context, inputRoot, outputRoot string, opts BuildOptions) error {
	fmt.Println(executor.BuildingPrologue)

	inputRoot, err := filepath.Abs(inputRoot)
	if err != nil {
		return xerrors.Errorf("resolving input root: %w", err)
	}
	outputRoot, err = filepath.Abs(outputRoot)
	if err != nil {
		return xerrors.Errorf("resolving output root: %w", err)
	}
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return xerrors.Errorf("creating output root: %w", err)
	}

	rts := make([]planner.RegisteredTool, len(f.tools))
	for i, rt := range f.tools {
		if rs, ok := rt.tool.(rootSetter); ok {
			rs.SetRoots(inputRoot, outputRoot)
		}
		if starter, ok := rt.tool.(Starter); ok {
			if err := starter.Start(inputRoot, outputRoot); err != nil {
				return xerrors.Errorf("%s.Start: %w", rt.name, err)
			}
		}
		rts[i] = planner.RegisteredTool{Tool: rt.tool, Name: rt.name, Priority: rt.priority}
	}

	f.Log.Printf("discovering jobs under %s", inputRoot)
	plan, err := planner.Discover(rts, inputRoot)
	if err != nil {
		return xerrors.Errorf("discovery: %w", err)
	}

	total := 0
	for _, b := range plan.Batches {
		total += len(b)
	}
	f.Log.Printf("%d jobs across %d batches", total, len(plan.Batches))

	execOpts := executor.Options{Log: f.Log, Jobs: opts.Jobs}

	batches := make([][]executor.Job, len(plan.Batches))
	for i, b := range plan.Batches {
		batches[i] = adaptJobs(b)
	}

	if opts.Parallel {
		return executor.Parallel(ctx, batches, execOpts)
	}

	logOut, err := executor.Serial(batches, execOpts)
	if err != nil {
		return err
	}
	logPath := filepath.Join(outputRoot, "output.log")
	if werr := os.WriteFile(logPath, logOut, 0o644); werr != nil {
		return xerrors.Errorf("writing %s: %w", logPath, werr)
	}
	return nil
}

// jobAdapter bridges a *planner.Job to executor.Job, including forwarding
// SetLog to the underlying tool when it implements LogSetter.
type jobAdapter struct {
	job *planner.Job
}

func adaptJobs(jobs []*planner.Job) []executor.Job {
	out := make([]executor.Job, len(jobs))
	for i, j := range jobs {
		out[i] = jobAdapter{job: j}
	}
	return out
}

func (a jobAdapter) Name() string  { return a.job.ToolName }
func (a jobAdapter) Input() string { return a.job.Input }
func (a jobAdapter) Run() error    { return a.job.Tool.Build(a.job.Input) }

func (a jobAdapter) SetLog(w io.Writer) {
	if ls, ok := a.job.Tool.(LogSetter); ok {
		ls.SetLog(w)
	}
}

// toolName resolves the display name used in progress lines and logs: the
// tool's own ToolName() if it implements Named, otherwise its concrete Go
// type name.
func toolName(tool Tool) string {
	if n, ok := tool.(Named); ok {
		return n.ToolName()
	}
	t := reflect.TypeOf(tool)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "Tool"
	}
	return t.Name()
}
