package planner

import "sort"

// candidate is a (tool, file) pair for which Match returned true in the
// current discovery round, together with the outputs it would declare.
type candidate struct {
	tool    RegisteredTool
	file    string
	outputs []string
}

// resolveCollisions implements the arbitration algorithm of the match &
// collision resolver: candidates whose outputs intersect each other, or
// intersect the output universe already committed in earlier rounds,
// collide. The lowest-priority colliding candidate is dropped, repeatedly,
// until no collisions remain. Among colliding candidates of equal lowest
// priority, the earliest-encountered one is dropped, so a later candidate
// survives a tie (order is registration order for a single file, file
// order within the round).
func resolveCollisions(cands []candidate, committed map[string]struct{}) []candidate {
	remaining := append([]candidate(nil), cands...)
	for {
		collisions := collidingIndices(remaining, committed)
		if len(collisions) == 0 {
			return remaining
		}
		drop := collisions[0]
		for _, i := range collisions[1:] {
			if remaining[i].tool.Priority < remaining[drop].tool.Priority {
				drop = i
			}
		}
		remaining = append(remaining[:drop], remaining[drop+1:]...)
	}
}

// collidingIndices returns, in ascending order, the indices of every
// candidate that shares an output with another candidate in cands or with
// the already-committed output universe.
func collidingIndices(cands []candidate, committed map[string]struct{}) []int {
	seen := make(map[int]bool)
	var collisions []int
	mark := func(i int) {
		if !seen[i] {
			seen[i] = true
			collisions = append(collisions, i)
		}
	}

	for i := range cands {
		for j := i + 1; j < len(cands); j++ {
			if outputsIntersect(cands[i].outputs, cands[j].outputs) {
				mark(i)
				mark(j)
			}
		}
		for _, o := range cands[i].outputs {
			if _, ok := committed[o]; ok {
				mark(i)
				break
			}
		}
	}

	sort.Ints(collisions)
	return collisions
}

func outputsIntersect(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, x := range a {
		set[x] = struct{}{}
	}
	for _, y := range b {
		if _, ok := set[y]; ok {
			return true
		}
	}
	return false
}
