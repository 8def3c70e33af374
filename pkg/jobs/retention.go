package jobs

import (
	"context"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
)

// retentionJob deletes terminal jobs past the retention window. Results and
// price history are kept; only the job rows age out.
type retentionJob struct {
	jobs      database.JobFacadeInterface
	retention time.Duration
}

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)
	removed, err := j.jobs.DeleteTerminalOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Infof("retention cleanup removed %d terminal jobs older than %s", removed, cutoff.Format(time.RFC3339))
	}
	return nil
}

func (j *retentionJob) Schedule() string {
	return "0 3 * * *"
}
