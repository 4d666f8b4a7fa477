package planner

import "testing"

func rt(name string, priority int) RegisteredTool {
	return RegisteredTool{Name: name, Priority: priority}
}

func TestResolveCollisionsNoOverlap(t *testing.T) {
	cands := []candidate{
		{tool: rt("atlas", 100), file: "a.png", outputs: []string{"out/a.atlas"}},
		{tool: rt("copy", 10), file: "b.txt", outputs: []string{"out/b.txt"}},
	}
	got := resolveCollisions(cands, map[string]struct{}{})
	if len(got) != 2 {
		t.Fatalf("want 2 survivors, got %d", len(got))
	}
}

func TestResolveCollisionsDropsLowerPriority(t *testing.T) {
	cands := []candidate{
		{tool: rt("copy", 10), file: "a.png", outputs: []string{"out/a.png"}},
		{tool: rt("atlas", 100), file: "a.png", outputs: []string{"out/a.png"}},
	}
	got := resolveCollisions(cands, map[string]struct{}{})
	if len(got) != 1 {
		t.Fatalf("want 1 survivor, got %d", len(got))
	}
	if got[0].tool.Name != "atlas" {
		t.Fatalf("want atlas to win on priority, got %s", got[0].tool.Name)
	}
}

func TestResolveCollisionsTieBreaksByOrder(t *testing.T) {
	cands := []candidate{
		{tool: rt("first", 50), file: "a.png", outputs: []string{"out/a.png"}},
		{tool: rt("second", 50), file: "a.png", outputs: []string{"out/a.png"}},
	}
	got := resolveCollisions(cands, map[string]struct{}{})
	if len(got) != 1 || got[0].tool.Name != "second" {
		t.Fatalf("want second (later) candidate to survive a priority tie, got %+v", got)
	}
}

func TestResolveCollisionsAgainstCommitted(t *testing.T) {
	committed := map[string]struct{}{"out/a.png": {}}
	cands := []candidate{
		{tool: rt("copy", 100), file: "a.png", outputs: []string{"out/a.png"}},
	}
	got := resolveCollisions(cands, committed)
	if len(got) != 0 {
		t.Fatalf("want candidate colliding with committed output dropped, got %+v", got)
	}
}

func TestResolveCollisionsChainDrop(t *testing.T) {
	// Three candidates all claim the same output at three different
	// priorities; only the highest should survive even though the
	// collision set changes shape after each drop.
	cands := []candidate{
		{tool: rt("low", 1), file: "a", outputs: []string{"out"}},
		{tool: rt("mid", 50), file: "a", outputs: []string{"out"}},
		{tool: rt("high", 100), file: "a", outputs: []string{"out"}},
	}
	got := resolveCollisions(cands, map[string]struct{}{})
	if len(got) != 1 || got[0].tool.Name != "high" {
		t.Fatalf("want high to be the sole survivor, got %+v", got)
	}
}

func TestOutputsIntersect(t *testing.T) {
	if !outputsIntersect([]string{"a", "b"}, []string{"b", "c"}) {
		t.Fatal("want intersection detected")
	}
	if outputsIntersect([]string{"a"}, []string{"b"}) {
		t.Fatal("want no intersection")
	}
}
