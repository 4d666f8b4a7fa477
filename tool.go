package forge

import (
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"
)

// Tool is the capability set every build tool implements: it claims input
// files, declares their dependencies and outputs, and performs the work.
//
// Match, Deps, and Outputs must be pure and deterministic for the duration
// of one Build call: the planner may invoke them more than once per file
// across discovery rounds and relies on repeated calls agreeing.
type Tool interface {
	// Match reports whether file is an input this tool claims.
	Match(file string) (bool, error)

	// Deps returns extra inputs whose producing jobs, if any, must precede
	// Build. The returned paths must already be known to the planner: either
	// a source file or an output declared by an earlier round.
	Deps(file string) ([]string, error)

	// Outputs returns the files this tool will write under its output root.
	Outputs(file string) ([]string, error)

	// Build performs the work for file. A returned error marks the job
	// failed; the build continues regardless (see the executor package).
	Build(file string) error
}

// Starter is implemented by tools that need a one-time setup hook before
// any Match call, such as the ignore-filter decorator precomputing its
// whitelist.
type Starter interface {
	Start(inputRoot, outputRoot string) error
}

// Named is implemented by tools that want control over their display name
// in progress lines and logs. Tools that don't implement it are named after
// their concrete Go type.
type Named interface {
	ToolName() string
}

// LogSetter is implemented by tools that want their Build output captured
// by the executor instead of going straight to the process's real stdout.
// Serial execution calls SetLog with a shared buffer before every job so
// all tool output lands in one aggregate log; parallel execution never
// calls it, so parallel tool output goes wherever the tool's zero-value
// writer points (see each forgetools tool's embedded log sink, which
// defaults to os.Stdout).
type LogSetter interface {
	SetLog(w io.Writer)
}

// Roots is embedded by tools to receive their input/output roots and the
// RelativePath helper described in the driver-facing contract: roots are
// injected once, before any other method runs.
type Roots struct {
	InputRoot  string
	OutputRoot string
}

// SetRoots implements the root-injection hook Forge.Build calls on every
// registered tool before Start or Match run.
func (r *Roots) SetRoots(inputRoot, outputRoot string) {
	r.InputRoot = inputRoot
	r.OutputRoot = outputRoot
}

// RelativePath returns file relative to whichever of InputRoot or
// OutputRoot contains it, failing if it is under neither.
func (r *Roots) RelativePath(file string) (string, error) {
	if rel, ok := relIn(file, r.InputRoot); ok {
		return rel, nil
	}
	if rel, ok := relIn(file, r.OutputRoot); ok {
		return rel, nil
	}
	return "", xerrors.Errorf("%s isn't relative to input root %s or output root %s", file, r.InputRoot, r.OutputRoot)
}

func relIn(file, root string) (string, bool) {
	if root == "" {
		return "", false
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// rootSetter is the internal hook the registry uses to inject roots; it is
// satisfied by any tool embedding Roots.
type rootSetter interface {
	SetRoots(inputRoot, outputRoot string)
}
