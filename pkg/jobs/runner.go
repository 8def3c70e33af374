package jobs

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
)

func Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()
	for _, job := range jobs {
		job := job
		_, err := c.AddFunc(job.Schedule(), func() {
			if err := job.Run(ctx); err != nil {
				log.Errorf("Job error %v", err)
			}
		})
		if err != nil {
			return nil, err
		}
	}
	c.Start()
	return c, nil
}
