package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/metrics"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/scheduler"
)

// materializeJob turns due policies into pending crawl jobs.
type materializeJob struct {
	materializer *scheduler.Materializer
	interval     time.Duration
}

func (j *materializeJob) Run(ctx context.Context) error {
	report, err := j.materializer.RunOnce(ctx, time.Now())
	if err != nil {
		return err
	}
	metrics.JobsMaterializedTotal.Add(float64(report.JobsCreated))
	if report.JobsCreated > 0 {
		log.Infof("materializer pass: %d due policies, %d urls scanned, %d jobs created",
			report.PoliciesDue, report.URLsScanned, report.JobsCreated)
	}
	return nil
}

func (j *materializeJob) Schedule() string {
	return fmt.Sprintf("@every %s", j.interval)
}
