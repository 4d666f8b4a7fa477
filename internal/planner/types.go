// Package planner builds the bipartite file↔job dependency graph for one
// build: it runs the fixed-point discovery loop, arbitrates output
// collisions by tool priority, and layers the resulting graph into batches
// by topological sort. It knows nothing about how jobs are actually
// executed — see internal/executor for that.
package planner

import "fmt"

// Tool is the subset of forge.Tool the planner needs. A forge.Tool value
// satisfies this interface structurally; the two packages don't import
// each other.
type Tool interface {
	Match(file string) (bool, error)
	Deps(file string) ([]string, error)
	Outputs(file string) ([]string, error)
	Build(file string) error
}

// RegisteredTool is one entry of the registry the planner consults every
// discovery round.
type RegisteredTool struct {
	Tool     Tool
	Name     string
	Priority int
}

// Job is one scheduled unit of work: running Tool.Build(Input) exactly
// once. Deps and Outputs are the paths declared by the tool at discovery
// time, cleaned with filepath.Clean; the planner does not make them
// absolute.
type Job struct {
	ID       string
	Tool     Tool
	ToolName string
	Priority int
	Input    string
	Deps     []string
	Outputs  []string
}

// LayerKind distinguishes the two kinds of layer a batched topological sort
// produces; see Plan.Layers.
type LayerKind int

const (
	// FileLayer holds only file nodes: sources first, then intermediates.
	FileLayer LayerKind = iota
	// JobLayer holds only job nodes; only these are executed.
	JobLayer
)

// Layer is one batch of the topological sort: a set of nodes with no
// ordering dependency among themselves.
type Layer struct {
	Kind  LayerKind
	Files []string
	Jobs  []*Job
}

// Plan is the output of Discover: a bipartite graph already layered into
// strictly alternating file/job batches.
type Plan struct {
	// Layers alternates FileLayer, JobLayer, FileLayer, ... starting with a
	// FileLayer of pure source files.
	Layers []Layer

	// Batches is the job-layers only, in execution order — what the
	// executor actually runs. Batches[i] == Layers[2*i+1].Jobs.
	Batches [][]*Job
}

// CycleError is returned when the dependency graph contains a cycle; it
// names at least one node that could not be scheduled.
type CycleError struct {
	Node string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency graph has a cycle: %s is never reachable by the topological sort", e.Node)
}

// UnknownDepError is returned when a tool's Deps names a file that is
// neither a source file nor an output declared in an earlier discovery
// round.
type UnknownDepError struct {
	Job  string
	File string
}

func (e *UnknownDepError) Error() string {
	return fmt.Sprintf("job %s declared a dependency on %s, which is neither a source file nor a previously declared output", e.Job, e.File)
}
