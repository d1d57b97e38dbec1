package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second Register: %v", err)
	}
}

// scanSampleCount reads the latency histogram's observation count.
func scanSampleCount(t *testing.T) uint64 {
	t.Helper()
	reg := prometheus.NewRegistry()
	if err := reg.Register(scanDurationSeconds); err != nil {
		t.Fatalf("register histogram: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 1 || len(families[0].Metric) != 1 {
		t.Fatalf("unexpected gather shape: %+v", families)
	}
	return families[0].Metric[0].GetHistogram().GetSampleCount()
}

func TestObserveScanSkippedCountsWithoutDuration(t *testing.T) {
	skippedBefore := testutil.ToFloat64(scansTotal.WithLabelValues(OutcomeSkipped))
	samplesBefore := scanSampleCount(t)

	ObserveScan(0, OutcomeSkipped)

	got := testutil.ToFloat64(scansTotal.WithLabelValues(OutcomeSkipped))
	if got != skippedBefore+1 {
		t.Fatalf("skipped counter = %v, want %v", got, skippedBefore+1)
	}
	// Skipped ticks carry no latency sample.
	if after := scanSampleCount(t); after != samplesBefore {
		t.Fatalf("histogram sample count changed on a skipped tick: %d -> %d", samplesBefore, after)
	}
}

func TestObserveScanSuccessRecordsDuration(t *testing.T) {
	successBefore := testutil.ToFloat64(scansTotal.WithLabelValues(OutcomeSuccess))
	samplesBefore := scanSampleCount(t)

	ObserveScan(25*time.Millisecond, OutcomeSuccess)

	got := testutil.ToFloat64(scansTotal.WithLabelValues(OutcomeSuccess))
	if got != successBefore+1 {
		t.Fatalf("success counter = %v, want %v", got, successBefore+1)
	}
	if after := scanSampleCount(t); after != samplesBefore+1 {
		t.Fatalf("histogram sample count = %d, want %d", after, samplesBefore+1)
	}
}
