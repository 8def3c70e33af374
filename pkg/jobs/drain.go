package jobs

import (
	"context"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/autorecord"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/metrics"
)

// drainJob pumps the auto-record consumer.
type drainJob struct {
	consumer *autorecord.Consumer
}

func (j *drainJob) Run(ctx context.Context) error {
	report, err := j.consumer.DrainOnce(ctx, time.Now())
	if err != nil {
		return err
	}
	metrics.AutoRecordTotal.WithLabelValues("recorded").Add(float64(report.Recorded))
	metrics.AutoRecordTotal.WithLabelValues("duplicate").Add(float64(report.Duplicates))
	metrics.AutoRecordTotal.WithLabelValues("skipped").Add(float64(report.Skipped))
	metrics.AutoRecordTotal.WithLabelValues("requeued").Add(float64(report.Requeued))
	metrics.AutoRecordTotal.WithLabelValues("failed").Add(float64(report.Failed))
	return nil
}

func (j *drainJob) Schedule() string {
	return "@every 10s"
}
