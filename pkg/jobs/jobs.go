package jobs

import (
	"context"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/autorecord"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/config"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/lifecycle"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/queue"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/scheduler"
)

type Job interface {
	Run(ctx context.Context) error
	Schedule() string
}

var jobs = []Job{}

// InitJobs builds the background job set: policy materialization, lease
// sweeping, queue draining, queue gauges and terminal-job retention.
func InitJobs(
	cfg *config.Config,
	materializer *scheduler.Materializer,
	engine *lifecycle.Engine,
	consumer *autorecord.Consumer,
	q queue.Queue,
	jobFacade database.JobFacadeInterface,
) {
	jobs = []Job{
		&materializeJob{materializer: materializer, interval: cfg.Scheduler.Interval()},
		&sweepJob{engine: engine, batch: cfg.Scheduler.GetSweepBatch()},
		&drainJob{consumer: consumer},
		&queueGaugeJob{queue: q},
		&retentionJob{jobs: jobFacade, retention: cfg.Scheduler.Retention()},
	}
}
