package autorecord

import (
	"context"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/cache"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/queue"
)

// DrainReport summarizes one consumer pass over the queue.
type DrainReport struct {
	Recorded   int
	Duplicates int
	Skipped    int
	Requeued   int
	Failed     int
	Retried    int
}

// Consumer drains the auto-record queue: for each queued result id it
// re-checks the recording rules against the current config and appends a
// price-history point. Multiple concurrent consumers are safe because the
// processing set deduplicates within a pass and every queue mutation is
// atomic.
type Consumer struct {
	queue    queue.Queue
	results  database.ResultFacadeInterface
	jobs     database.JobFacadeInterface
	catalog  database.CatalogFacadeInterface
	history  database.PriceHistoryFacadeInterface
	settings database.SettingsFacadeInterface
	store    *cache.Store

	batch      int
	maxRetries int
	retryEvery int
	retryLimit int

	passes int
}

// NewConsumer wires the auto-record consumer. batch, maxRetries, retryEvery
// and retryLimit fall back to defaults when non-positive.
func NewConsumer(
	q queue.Queue,
	results database.ResultFacadeInterface,
	jobs database.JobFacadeInterface,
	catalog database.CatalogFacadeInterface,
	history database.PriceHistoryFacadeInterface,
	settings database.SettingsFacadeInterface,
	store *cache.Store,
	batch, maxRetries, retryEvery, retryLimit int,
) *Consumer {
	if batch <= 0 {
		batch = 100
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryEvery <= 0 {
		retryEvery = 10
	}
	if retryLimit <= 0 {
		retryLimit = 100
	}
	return &Consumer{
		queue:      q,
		results:    results,
		jobs:       jobs,
		catalog:    catalog,
		history:    history,
		settings:   settings,
		store:      store,
		batch:      batch,
		maxRetries: maxRetries,
		retryEvery: retryEvery,
		retryLimit: retryLimit,
	}
}

// DrainOnce processes up to one batch from the queue. The recording config
// is re-read at the top of every pass so operator edits take effect without
// a restart. Every retryEvery-th pass also gives permanently failed ids
// another chance.
func (c *Consumer) DrainOnce(ctx context.Context, now time.Time) (*DrainReport, error) {
	cfg, err := c.settings.GetAutoRecordConfig(ctx)
	if err != nil {
		return nil, err
	}
	cacheCfg, err := c.settings.GetCacheConfig(ctx)
	if err != nil {
		log.Warnf("cache config unavailable, using defaults: %v", err)
		cacheCfg = model.DefaultCacheConfig()
	}

	report := &DrainReport{}
	c.passes++
	if c.passes%c.retryEvery == 0 {
		moved, err := c.queue.RetryFailed(ctx, c.retryLimit)
		if err != nil {
			log.Warnf("retry of failed auto-record ids failed: %v", err)
		} else if moved > 0 {
			log.Infof("requeued %d previously failed auto-record ids", moved)
			report.Retried = moved
		}
	}

	for i := 0; i < c.batch; i++ {
		id, ok, err := c.queue.Dequeue(ctx)
		if err != nil {
			return report, err
		}
		if !ok {
			break
		}

		processing, err := c.queue.IsProcessing(ctx, id)
		if err != nil {
			return report, err
		}
		if processing {
			continue
		}
		if err := c.queue.MarkProcessing(ctx, id); err != nil {
			return report, err
		}

		c.processOne(ctx, cfg, cacheCfg, id, now, report)

		if err := c.queue.UnmarkProcessing(ctx, id); err != nil {
			log.Warnf("unmark processing %s failed: %v", id, err)
		}
	}
	return report, nil
}

func (c *Consumer) processOne(ctx context.Context, cfg *model.AutoRecordConfig, cacheCfg *model.CacheConfig, id string, now time.Time, report *DrainReport) {
	result, err := c.results.GetResultByID(ctx, id)
	if err != nil {
		c.countFailure(ctx, id, err, report)
		return
	}
	if result == nil {
		// poison by absence: drop the id rather than retrying forever
		log.Warnf("auto-record id %s has no result row, dropping", id)
		if err := c.queue.ClearFailure(ctx, id); err != nil {
			log.Warnf("clear failure counter for %s failed: %v", id, err)
		}
		report.Skipped++
		return
	}

	urlHash, domainName, err := c.resolveURL(ctx, cacheCfg, result)
	if err != nil {
		c.countFailure(ctx, id, err, report)
		return
	}
	if urlHash == "" {
		log.Warnf("result %s has no resolvable product url, dropping", id)
		if err := c.queue.ClearFailure(ctx, id); err != nil {
			log.Warnf("clear failure counter for %s failed: %v", id, err)
		}
		report.Skipped++
		return
	}

	verdict := ShouldAutoRecord(cfg, result, domainName)
	if !verdict.Record {
		log.Debugf("auto-record skipped result %s: %s", id, verdict.Reason)
		if err := c.queue.ClearFailure(ctx, id); err != nil {
			log.Warnf("clear failure counter for %s failed: %v", id, err)
		}
		report.Skipped++
		return
	}

	outcome, err := c.history.Append(ctx, &model.PriceHistory{
		URLHash:    urlHash,
		PriceValue: result.Price,
		Currency:   result.Currency,
		InStock:    result.InStock,
		Source:     model.PriceSourceAuto,
		RecordedAt: result.CrawledAt,
	})
	if err != nil {
		c.countFailure(ctx, id, err, report)
		return
	}

	status := model.HistoryRecordRecorded
	if outcome == database.HistoryDuplicate {
		status = model.HistoryRecordDuplicate
	}
	if err := c.results.UpdateHistoryStatus(ctx, id, status, &now); err != nil {
		c.countFailure(ctx, id, err, report)
		return
	}
	if err := c.queue.ClearFailure(ctx, id); err != nil {
		log.Warnf("clear failure counter for %s failed: %v", id, err)
	}

	if outcome == database.HistoryDuplicate {
		report.Duplicates++
	} else {
		report.Recorded++
	}
}

// countFailure bumps the per-id failure counter, requeueing at the tail
// while budget remains and moving to the failed set otherwise.
func (c *Consumer) countFailure(ctx context.Context, id string, cause error, report *DrainReport) {
	log.Warnf("auto-record of result %s failed: %v", id, cause)
	count, err := c.queue.IncrementFailure(ctx, id)
	if err != nil {
		log.Errorf("failure counter for %s unavailable, dropping item: %v", id, err)
		report.Failed++
		return
	}
	if count < c.maxRetries {
		if err := c.queue.Enqueue(ctx, id); err != nil {
			log.Errorf("requeue of %s failed: %v", id, err)
			report.Failed++
			return
		}
		report.Requeued++
		return
	}

	if err := c.queue.MarkFailed(ctx, id); err != nil {
		log.Errorf("mark %s failed errored: %v", id, err)
	}
	if err := c.results.UpdateHistoryStatus(ctx, id, model.HistoryRecordFailed, nil); err != nil {
		log.Errorf("record failed status for %s errored: %v", id, err)
	}
	report.Failed++
}

// resolveURL maps a result back to its product URL and domain name, serving
// the URL record through the cache when the strategy allows.
func (c *Consumer) resolveURL(ctx context.Context, cacheCfg *model.CacheConfig, result *model.CrawlResult) (urlHash, domainName string, err error) {
	job, err := c.jobs.GetJobByID(ctx, result.JobID)
	if err != nil {
		return "", "", err
	}
	if job == nil {
		return "", "", nil
	}

	load := func(ctx context.Context) (*model.ProductURL, error) {
		return c.catalog.GetProductURL(ctx, job.ProductURLHash)
	}
	var url *model.ProductURL
	if !cacheCfg.Enabled || !cacheCfg.ProductURLEnabled {
		url, err = load(ctx)
	} else {
		ttl := time.Duration(cacheCfg.ProductURLTTL()) * time.Second
		url, err = cache.ReadThrough(ctx, c.store, cache.ProductURLKey(job.ProductURLHash), ttl, load)
	}
	if err != nil {
		return "", "", err
	}
	if url == nil {
		return job.ProductURLHash, "", nil
	}

	domain, err := c.catalog.GetDomainByID(ctx, url.DomainID)
	if err != nil {
		return url.URLHash, "", err
	}
	if domain == nil {
		return url.URLHash, "", nil
	}
	return url.URLHash, domain.Name, nil
}
