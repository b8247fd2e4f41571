package datadog

import (
	"reflect"
	"testing"

	"referralreport/internal/metrics"
)

type call struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	calls  []call
	closed int
}

func (f *fakeClient) Count(name string, value int64, tags []string, _ float64) error {
	f.calls = append(f.calls, call{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, _ float64) error {
	f.calls = append(f.calls, call{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("NewBackend without Addr: expected error")
	}
}

// TestBackend_ForwardsWithSortedTags verifies metric routing and that tags are
// emitted in a stable order.
func TestBackend_ForwardsWithSortedTags(t *testing.T) {
	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.StepTotal, 2.9, metrics.Labels{"step": "merge", "job": "nightly", "status": "success"})
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.25, metrics.Labels{"step": "merge"})
	b.IncCounter(metrics.BatchesTotal, 1, nil)

	want := []call{
		{"count", metrics.StepTotal, 2, []string{"job:nightly", "status:success", "step:merge"}},
		{"histogram", metrics.StepDurationSeconds, 0.25, []string{"step:merge"}},
		{"count", metrics.BatchesTotal, 1, nil},
	}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Fatalf("calls = %#v; want %#v", fc.calls, want)
	}

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if fc.closed != 1 {
		t.Fatalf("closed = %d; want 1", fc.closed)
	}
}

func TestBackend_NilClientIsSafe(t *testing.T) {
	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}
