package executor

import (
	"context"
	"sync"
	"testing"
)

type concurrentJob struct {
	name, input string
	fail        bool
	mu          *sync.Mutex
	ran         *[]string
}

func (j *concurrentJob) Name() string  { return j.name }
func (j *concurrentJob) Input() string { return j.input }
func (j *concurrentJob) Run() error {
	j.mu.Lock()
	*j.ran = append(*j.ran, j.input)
	j.mu.Unlock()
	if j.fail {
		return context.DeadlineExceeded
	}
	return nil
}

func TestParallelRunsBatchConcurrently(t *testing.T) {
	var mu sync.Mutex
	var ran []string
	batch := []Job{
		&concurrentJob{name: "atlas", input: "a.png", mu: &mu, ran: &ran},
		&concurrentJob{name: "atlas", input: "b.png", mu: &mu, ran: &ran},
	}
	if err := Parallel(context.Background(), [][]Job{batch}, Options{}); err != nil {
		t.Fatal(err)
	}
	if len(ran) != 2 {
		t.Fatalf("want both jobs run, got %v", ran)
	}
}

func TestParallelContinuesPastFailure(t *testing.T) {
	var mu sync.Mutex
	var ran []string
	batches := [][]Job{
		{&concurrentJob{name: "atlas", input: "a.png", mu: &mu, ran: &ran, fail: true}},
		{&concurrentJob{name: "atlas", input: "b.png", mu: &mu, ran: &ran}},
	}
	err := Parallel(context.Background(), batches, Options{})
	if err != nil {
		t.Fatalf("want a failing job to not abort the build, got %v", err)
	}
	if len(ran) != 2 {
		t.Fatalf("want the second batch to run despite the first failing, got %v", ran)
	}
}

func TestWorkerCountRespectsCap(t *testing.T) {
	batch := []Job{
		&concurrentJob{name: "a", input: "1"},
		&concurrentJob{name: "a", input: "2"},
		&concurrentJob{name: "a", input: "3"},
	}
	if got := workerCount([][]Job{batch}, 2); got != 2 {
		t.Fatalf("want cap to win, got %d", got)
	}
	if got := workerCount([][]Job{batch}, 0); got != 3 {
		t.Fatalf("want uncapped width to equal batch size, got %d", got)
	}
}
