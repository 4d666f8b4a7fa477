package planner

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// buildPlan layers the bipartite graph built from sources and jobs into
// alternating file/job batches via Kahn's algorithm, exactly as described
// in the batched topological sort: layer 0 is in-degree-0 nodes (the pure
// source files), and each subsequent layer is whatever becomes ready once
// the previous layers are accounted for.
func buildPlan(sources []string, jobs []*Job) (*Plan, error) {
	g, err := buildGraph(sources, jobs)
	if err != nil {
		return nil, err
	}

	layers, err := layerGraph(g)
	if err != nil {
		return nil, err
	}

	var batches [][]*Job
	for _, l := range layers {
		if l.Kind == JobLayer {
			batches = append(batches, l.Jobs)
		}
	}

	return &Plan{Layers: layers, Batches: batches}, nil
}

func layerGraph(g *simple.DirectedGraph) ([]Layer, error) {
	nodesByID := make(map[int64]graph.Node)
	remaining := make(map[int64]int)

	for it := g.Nodes(); it.Next(); {
		n := it.Node()
		nodesByID[n.ID()] = n
		remaining[n.ID()] = g.From(n.ID()).Len()
	}
	total := len(nodesByID)

	var layers []Layer
	processed := 0
	ready := readyNodes(remaining)

	for len(ready) > 0 {
		layers = append(layers, classify(nodesByID, ready))
		processed += len(ready)

		nextSet := make(map[int64]bool)
		for _, id := range ready {
			for to := g.To(id); to.Next(); {
				depID := to.Node().ID()
				remaining[depID]--
				if remaining[depID] == 0 {
					nextSet[depID] = true
				}
			}
		}

		var next []int64
		for id := range nextSet {
			next = append(next, id)
		}
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		ready = next
	}

	if processed != total {
		var stuck []int64
		for id, left := range remaining {
			if left > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Slice(stuck, func(i, j int) bool { return stuck[i] < stuck[j] })
		return nil, &CycleError{Node: describeNode(nodesByID[stuck[0]])}
	}

	return layers, nil
}

func readyNodes(remaining map[int64]int) []int64 {
	var ready []int64
	for id, deg := range remaining {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
	return ready
}

func classify(nodesByID map[int64]graph.Node, ids []int64) Layer {
	var layer Layer
	for _, id := range ids {
		switch n := nodesByID[id].(type) {
		case fileNode:
			layer.Kind = FileLayer
			layer.Files = append(layer.Files, n.path)
		case jobNode:
			layer.Kind = JobLayer
			layer.Jobs = append(layer.Jobs, n.job)
		}
	}
	return layer
}

func describeNode(n graph.Node) string {
	switch v := n.(type) {
	case fileNode:
		return v.path
	case jobNode:
		return fmt.Sprintf("%s(%s)", v.job.ToolName, v.job.Input)
	default:
		return fmt.Sprintf("node#%d", n.ID())
	}
}
