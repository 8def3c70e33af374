package jobs

import (
	"context"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/metrics"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/queue"
)

// queueGaugeJob exports the auto-record collection sizes.
type queueGaugeJob struct {
	queue queue.Queue
}

func (j *queueGaugeJob) Run(ctx context.Context) error {
	stats, err := j.queue.Stats(ctx)
	if err != nil {
		return err
	}
	metrics.QueueDepth.WithLabelValues("queue").Set(float64(stats.Queue))
	metrics.QueueDepth.WithLabelValues("processing").Set(float64(stats.Processing))
	metrics.QueueDepth.WithLabelValues("failed").Set(float64(stats.Failed))
	return nil
}

func (j *queueGaugeJob) Schedule() string {
	return "@every 15s"
}
