package planner

import "testing"

func TestBuildPlanLayersSourcesFirst(t *testing.T) {
	jobs := []*Job{
		{ID: "copy#0", ToolName: "copy", Input: "a.txt", Outputs: []string{"out/a.txt"}},
	}
	plan, err := buildPlan([]string{"a.txt"}, jobs)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Layers) != 3 {
		t.Fatalf("want 3 layers (sources, job, outputs), got %d", len(plan.Layers))
	}
	if plan.Layers[0].Kind != FileLayer || len(plan.Layers[0].Files) != 1 {
		t.Fatalf("want first layer to be the lone source file, got %+v", plan.Layers[0])
	}
	if plan.Layers[1].Kind != JobLayer || len(plan.Layers[1].Jobs) != 1 {
		t.Fatalf("want second layer to be the job, got %+v", plan.Layers[1])
	}
	if plan.Layers[2].Kind != FileLayer || plan.Layers[2].Files[0] != "out/a.txt" {
		t.Fatalf("want third layer to be the produced output, got %+v", plan.Layers[2])
	}
}

func TestBuildPlanDetectsCycle(t *testing.T) {
	// job0 depends on out/1 (job1's output) and produces out/0; job1
	// depends on out/0 (job0's output) and produces out/1. Neither job can
	// ever become ready.
	jobs := []*Job{
		{ID: "a#0", ToolName: "a", Input: "src", Deps: []string{"out/1"}, Outputs: []string{"out/0"}},
		{ID: "b#0", ToolName: "b", Input: "src", Deps: []string{"out/0"}, Outputs: []string{"out/1"}},
	}
	_, err := buildPlan([]string{"src", "out/0", "out/1"}, jobs)
	if err == nil {
		t.Fatal("want a cycle error")
	}
	if _, ok := err.(*CycleError); !ok {
		t.Fatalf("want *CycleError, got %T: %v", err, err)
	}
}

func TestBuildPlanIndependentJobsShareABatch(t *testing.T) {
	jobs := []*Job{
		{ID: "copy#0", ToolName: "copy", Input: "a.txt", Outputs: []string{"out/a.txt"}},
		{ID: "copy#1", ToolName: "copy", Input: "b.txt", Outputs: []string{"out/b.txt"}},
	}
	plan, err := buildPlan([]string{"a.txt", "b.txt"}, jobs)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Batches) != 1 || len(plan.Batches[0]) != 2 {
		t.Fatalf("want both independent jobs in a single batch, got %+v", plan.Batches)
	}
}

func TestBuildGraphRejectsUnknownDep(t *testing.T) {
	jobs := []*Job{
		{ID: "a#0", ToolName: "a", Input: "src", Deps: []string{"nope"}, Outputs: []string{"out"}},
	}
	_, err := buildGraph([]string{"src"}, jobs)
	if _, ok := err.(*UnknownDepError); !ok {
		t.Fatalf("want *UnknownDepError, got %T: %v", err, err)
	}
}
