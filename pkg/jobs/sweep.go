package jobs

import (
	"context"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/lifecycle"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/metrics"
)

// sweepJob returns expired leases to the pending pool so dead bots do not
// strand jobs.
type sweepJob struct {
	engine *lifecycle.Engine
	batch  int
}

func (j *sweepJob) Run(ctx context.Context) error {
	swept, err := j.engine.SweepExpiredLeases(ctx, time.Now(), j.batch)
	if err != nil {
		return err
	}
	metrics.LeasesSweptTotal.Add(float64(swept))
	if swept > 0 {
		log.Infof("lease sweep returned %d expired jobs to the pool", swept)
	}
	return nil
}

func (j *sweepJob) Schedule() string {
	return "@every 30s"
}
