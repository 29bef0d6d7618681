package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)
	job := "expiry-sweep"

	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)
	metrics.SetLastRun(job, time.Now())

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	success, err := counterValue(mfs, "job_success", job)
	if err != nil {
		t.Fatalf("fetch success: %v", err)
	}
	if success != 1 {
		t.Fatalf("expected success=1, got %f", success)
	}

	failure, err := counterValue(mfs, "job_failure", job)
	if err != nil {
		t.Fatalf("fetch failure: %v", err)
	}
	if failure != 1 {
		t.Fatalf("expected failure=1, got %f", failure)
	}

	sum, err := histogramSum(mfs, "job_duration_seconds", job)
	if err != nil {
		t.Fatalf("fetch duration: %v", err)
	}
	if sum <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", sum)
	}

	lastRun, err := gaugeValue(mfs, "job_last_run_timestamp_seconds", job)
	if err != nil {
		t.Fatalf("fetch last run: %v", err)
	}
	if lastRun <= 0 {
		t.Fatalf("expected last run timestamp > 0, got %f", lastRun)
	}
}

func jobMetric(mfs []*dto.MetricFamily, name, job string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" && label.GetValue() == job {
					return metric, nil
				}
			}
		}
		return nil, fmt.Errorf("metric %q missing label job=%s", name, job)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}

func counterValue(mfs []*dto.MetricFamily, name, job string) (float64, error) {
	metric, err := jobMetric(mfs, name, job)
	if err != nil {
		return 0, err
	}
	return metric.GetCounter().GetValue(), nil
}

func gaugeValue(mfs []*dto.MetricFamily, name, job string) (float64, error) {
	metric, err := jobMetric(mfs, name, job)
	if err != nil {
		return 0, err
	}
	return metric.GetGauge().GetValue(), nil
}

func histogramSum(mfs []*dto.MetricFamily, name, job string) (float64, error) {
	metric, err := jobMetric(mfs, name, job)
	if err != nil {
		return 0, err
	}
	return metric.GetHistogram().GetSampleSum(), nil
}
