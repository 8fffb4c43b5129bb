package runner_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yaklabco/stylegrade/internal/logging"
	"github.com/yaklabco/stylegrade/pkg/engine"
	"github.com/yaklabco/stylegrade/pkg/normalize"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

var errBroken = errors.New("broken archive entry")

// fakeCollector returns canned pycodestyle output per submitter.
type fakeCollector struct {
	outputs map[string]string
	parsed  map[string]bool
	fail    map[string]bool
	delay   map[string]time.Duration
	calls   atomic.Int32
}

func (c *fakeCollector) Collect(ctx context.Context, target runner.Target) (engine.Submission, error) {
	c.calls.Add(1)

	if d := c.delay[target.ID]; d > 0 {
		select {
		case <-ctx.Done():
			return engine.Submission{}, ctx.Err()
		case <-time.After(d):
		}
	}
	if c.fail[target.ID] {
		return engine.Submission{}, errBroken
	}

	parsed := true
	if p, ok := c.parsed[target.ID]; ok {
		parsed = p
	}

	return engine.Submission{
		ID:     target.ID,
		Parsed: parsed,
		Outcomes: []normalize.Outcome{{
			Tool:   "pycodestyle",
			Format: normalize.FormatText,
			Output: c.outputs[target.ID],
		}},
	}, nil
}

func targets(ids ...string) []runner.Target {
	out := make([]runner.Target, len(ids))
	for i, id := range ids {
		out[i] = runner.Target{ID: id, Path: id + ".py"}
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	collector := &fakeCollector{}
	r := runner.New(collector, nil)

	if r.Collector != collector {
		t.Error("Collector not set correctly")
	}
	if r.Engine == nil {
		t.Error("Engine should default to a non-nil engine")
	}
}

func TestRunner_Run_NoTargets(t *testing.T) {
	t.Parallel()

	r := runner.New(&fakeCollector{}, nil)

	result, err := r.Run(context.Background(), runner.Options{Targets: []runner.Target{}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.Discovered != 0 {
		t.Errorf("Discovered = %d, want 0", result.Stats.Discovered)
	}
	if len(result.Batch()) != 0 {
		t.Errorf("Batch() = %v, want empty", result.Batch())
	}
}

func TestRunner_Run_BatchAndStats(t *testing.T) {
	t.Parallel()

	collector := &fakeCollector{
		outputs: map[string]string{
			"alice": "a.py:10:3: E501 line too long [pycodestyle]\na.py:10:7: E501 line too long [pylint]\n",
			"bob":   "",
			"carol": "c.py:1:1: W291 trailing whitespace\nnot a diagnostic\n",
		},
		parsed: map[string]bool{"carol": false},
	}
	r := runner.New(collector, engine.New(normalize.New(nil)))

	result, err := r.Run(context.Background(), runner.Options{
		Targets: targets("carol", "alice", "bob"),
		Jobs:    2,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := len(result.Submissions); got != 3 {
		t.Fatalf("len(Submissions) = %d, want 3", got)
	}
	// Outcomes follow target order regardless of completion order.
	for i, want := range []string{"carol", "alice", "bob"} {
		if got := result.Submissions[i].Target.ID; got != want {
			t.Errorf("Submissions[%d] = %s, want %s", i, got, want)
		}
	}

	batch := result.Batch()
	if len(batch["alice"]) != 1 {
		t.Fatalf("alice diagnostics = %v, want one merged entry", batch["alice"])
	}
	if tools := batch["alice"][0].Tools; len(tools) != 2 {
		t.Errorf("alice tools = %v, want 2", tools)
	}
	if _, ok := batch["bob"]; !ok {
		t.Error("bob missing from batch despite zero diagnostics")
	}

	stats := result.Stats
	if stats.Processed != 3 || stats.Failed != 0 {
		t.Errorf("Processed/Failed = %d/%d, want 3/0", stats.Processed, stats.Failed)
	}
	if stats.DiagnosticsTotal != 3 {
		t.Errorf("DiagnosticsTotal = %d, want 3", stats.DiagnosticsTotal)
	}
	if stats.Unparseable != 1 {
		t.Errorf("Unparseable = %d, want 1", stats.Unparseable)
	}
	if stats.WithIssues != 2 {
		t.Errorf("WithIssues = %d, want 2", stats.WithIssues)
	}
	if stats.LinesSkipped != 1 {
		t.Errorf("LinesSkipped = %d, want 1", stats.LinesSkipped)
	}
	if stats.DiagnosticsByClass["SYN"] != 1 || stats.DiagnosticsByClass["E"] != 1 || stats.DiagnosticsByClass["W"] != 1 {
		t.Errorf("DiagnosticsByClass = %v", stats.DiagnosticsByClass)
	}
	if !result.HasIssues() {
		t.Error("HasIssues() = false, want true")
	}
}

func TestRunner_Run_FailedSubmissionExcluded(t *testing.T) {
	t.Parallel()

	collector := &fakeCollector{
		outputs: map[string]string{"alice": "a.py:1:1: E225 missing whitespace\n"},
		fail:    map[string]bool{"bob": true},
	}
	r := runner.New(collector, nil)

	result, err := r.Run(context.Background(), runner.Options{Targets: targets("alice", "bob")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Stats.Failed)
	}
	failures := result.Failures()
	if len(failures) != 1 || failures[0].Target.ID != "bob" {
		t.Fatalf("Failures() = %v", failures)
	}
	if !errors.Is(failures[0].Err, errBroken) {
		t.Errorf("failure err = %v, want wrapped errBroken", failures[0].Err)
	}
	if _, ok := result.Batch()["bob"]; ok {
		t.Error("failed submission must not appear in the batch")
	}
}

func TestRunner_Run_LogsToContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithWriter(&buf, "debug"))

	collector := &fakeCollector{fail: map[string]bool{"bob": true}}
	if _, err := runner.New(collector, nil).Run(ctx, runner.Options{Targets: targets("alice", "bob")}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "submission failed") || !strings.Contains(out, "submitter=bob") {
		t.Errorf("missing failure log: %q", out)
	}
	if !strings.Contains(out, "submission processed") {
		t.Errorf("missing debug log: %q", out)
	}
}

func TestRunner_Run_SilentWithoutLogger(t *testing.T) {
	t.Parallel()

	collector := &fakeCollector{fail: map[string]bool{"bob": true}}
	result, err := runner.New(collector, nil).Run(context.Background(), runner.Options{Targets: targets("bob")})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Stats.Failed)
	}
}

func TestRunner_Run_Timeout(t *testing.T) {
	t.Parallel()

	collector := &fakeCollector{
		delay: map[string]time.Duration{"slow": time.Minute},
	}
	r := runner.New(collector, nil)

	result, err := r.Run(context.Background(), runner.Options{
		Targets: targets("fast", "slow"),
		Timeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	failures := result.Failures()
	if len(failures) != 1 || failures[0].Target.ID != "slow" {
		t.Fatalf("Failures() = %v, want slow", failures)
	}
	if !errors.Is(failures[0].Err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", failures[0].Err)
	}
	if _, ok := result.Batch()["fast"]; !ok {
		t.Error("fast submission missing from batch")
	}
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	t.Parallel()

	r := runner.New(&fakeCollector{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Run(ctx, runner.Options{Targets: targets("a", "b", "c")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("partial result should be returned on cancellation")
	}
}

func TestRunner_Run_ConcurrentProcessing(t *testing.T) {
	t.Parallel()

	const count = 50
	ids := make([]string, count)
	outputs := make(map[string]string, count)
	for i := range count {
		ids[i] = fmt.Sprintf("student%02d", i)
		outputs[ids[i]] = fmt.Sprintf("s.py:%d:1: E501 line too long\n", i+1)
	}

	collector := &fakeCollector{outputs: outputs}
	r := runner.New(collector, nil)

	result, err := r.Run(context.Background(), runner.Options{Targets: targets(ids...), Jobs: 8})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.Processed != count {
		t.Errorf("Processed = %d, want %d", result.Stats.Processed, count)
	}
	if int(collector.calls.Load()) != count {
		t.Errorf("collector called %d times, want %d", collector.calls.Load(), count)
	}
}

func TestRunner_Run_SerialVsParallelConsistency(t *testing.T) {
	t.Parallel()

	outputs := map[string]string{
		"a": "x.py:2:1: W291 trailing\nx.py:1:5: E225 op\n",
		"b": "x.py:3:1: C0103 name [pylint]\nx.py:3:4: C0103 name [flake8]\n",
		"c": "",
	}

	run := func(jobs int) map[string]int {
		r := runner.New(&fakeCollector{outputs: outputs}, nil)
		result, err := r.Run(context.Background(), runner.Options{Targets: targets("a", "b", "c"), Jobs: jobs})
		if err != nil {
			t.Fatalf("Run(jobs=%d) error = %v", jobs, err)
		}
		counts := map[string]int{}
		for id, ds := range result.Batch() {
			counts[id] = len(ds)
		}
		return counts
	}

	serial := run(1)
	parallel := run(4)
	for id, n := range serial {
		if parallel[id] != n {
			t.Errorf("%s: serial %d != parallel %d", id, n, parallel[id])
		}
	}
}

func TestRunner_Run_Discovery(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir+"/alice.py", "x = 1\n")
	writeFile(t, dir+"/bob.py", "y = 2\n")

	r := runner.New(runner.CollectorFunc(func(_ context.Context, target runner.Target) (engine.Submission, error) {
		return engine.Submission{ID: target.ID, Path: target.Path, Parsed: true}, nil
	}), nil)

	result, err := r.Run(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.Discovered != 2 {
		t.Errorf("Discovered = %d, want 2", result.Stats.Discovered)
	}
	if result.HasIssues() {
		t.Error("HasIssues() = true, want false")
	}
}

func TestResult_NilSafe(t *testing.T) {
	t.Parallel()

	var result *runner.Result
	if result.HasIssues() {
		t.Error("nil result should have no issues")
	}
	if len(result.Batch()) != 0 || result.Failures() != nil {
		t.Error("nil result should have an empty batch and no failures")
	}
}
