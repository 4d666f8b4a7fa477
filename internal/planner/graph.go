package planner

import (
	"gonum.org/v1/gonum/graph/simple"
)

// fileNode and jobNode are the two node kinds of the bipartite dependency
// graph. File and job nodes strictly alternate along any path: a job's
// predecessors (its primary input and declared deps) are always files, and
// a file's predecessor, if any, is always the single job that produces it.
type fileNode struct {
	id   int64
	path string
}

func (n fileNode) ID() int64 { return n.id }

type jobNode struct {
	id  int64
	job *Job
}

func (n jobNode) ID() int64 { return n.id }

// buildGraph assembles the bipartite graph described in the data model:
// edges point dependent → dependency, so a job's out-edges are its
// inputs/deps and a file's out-edge (if any) is the job producing it.
func buildGraph(sources []string, jobs []*Job) (*simple.DirectedGraph, error) {
	g := simple.NewDirectedGraph()

	fileID := make(map[string]int64, len(sources)+len(jobs))
	var nextID int64

	ensureFile := func(path string) int64 {
		if id, ok := fileID[path]; ok {
			return id
		}
		id := nextID
		nextID++
		fileID[path] = id
		g.AddNode(fileNode{id: id, path: path})
		return id
	}

	for _, s := range sources {
		ensureFile(s)
	}

	jobID := make(map[string]int64, len(jobs))
	for _, j := range jobs {
		id := nextID
		nextID++
		jobID[j.ID] = id
		g.AddNode(jobNode{id: id, job: j})
	}

	for _, j := range jobs {
		jid := jobID[j.ID]

		inputs := make([]string, 0, len(j.Deps)+1)
		inputs = append(inputs, j.Input)
		inputs = append(inputs, j.Deps...)
		for _, dep := range inputs {
			did, ok := fileID[dep]
			if !ok {
				return nil, &UnknownDepError{Job: j.ID, File: dep}
			}
			g.SetEdge(g.NewEdge(g.Node(jid), g.Node(did)))
		}

		for _, o := range j.Outputs {
			oid := ensureFile(o)
			g.SetEdge(g.NewEdge(g.Node(oid), g.Node(jid)))
		}
	}

	return g, nil
}
