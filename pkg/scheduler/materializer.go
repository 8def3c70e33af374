package scheduler

import (
	"context"
	"regexp"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/cache"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
)

// PassReport summarizes one materializer pass.
type PassReport struct {
	PoliciesDue int
	JobsCreated int
	URLsScanned int
}

// Materializer turns due crawl policies into pending jobs. It is re-entrant:
// a second pass with the same clock finds every (policy, url) pair already
// covered by an active job and creates nothing.
type Materializer struct {
	policies database.PolicyFacadeInterface
	jobs     database.JobFacadeInterface
	catalog  database.CatalogFacadeInterface
	store    *cache.Store

	policyBatch int
	urlBatch    int
}

// NewMaterializer wires the job materializer.
func NewMaterializer(
	policies database.PolicyFacadeInterface,
	jobs database.JobFacadeInterface,
	catalog database.CatalogFacadeInterface,
	store *cache.Store,
	policyBatch, urlBatch int,
) *Materializer {
	if policyBatch <= 0 {
		policyBatch = 500
	}
	if urlBatch <= 0 {
		urlBatch = 1000
	}
	return &Materializer{
		policies:    policies,
		jobs:        jobs,
		catalog:     catalog,
		store:       store,
		policyBatch: policyBatch,
		urlBatch:    urlBatch,
	}
}

// RunOnce executes a single pass over all due policies.
func (m *Materializer) RunOnce(ctx context.Context, now time.Time) (*PassReport, error) {
	due, err := m.policies.ListDuePolicies(ctx, now, m.policyBatch)
	if err != nil {
		return nil, err
	}

	report := &PassReport{PoliciesDue: len(due)}
	for _, policy := range due {
		created, scanned := m.materializePolicy(ctx, policy, now)
		report.JobsCreated += created
		report.URLsScanned += scanned

		// advance the schedule regardless of how the pass went, so a
		// policy with a broken pattern or a flaky store cannot tight-loop
		if err := m.policies.AdvanceSchedule(ctx, policy.ID, now); err != nil {
			log.Errorf("advance schedule for policy %s failed: %v", policy.ID, err)
		}
	}

	if report.JobsCreated > 0 {
		if err := m.store.DeletePattern(ctx, cache.PendingPattern); err != nil {
			log.Warnf("invalidate pending-list caches failed: %v", err)
		}
	}
	return report, nil
}

func (m *Materializer) materializePolicy(ctx context.Context, policy *model.CrawlPolicy, now time.Time) (created, scanned int) {
	match, err := compilePattern(policy.URLPattern)
	if err != nil {
		log.Errorf("policy %s has invalid url pattern %q: %v", policy.ID, policy.URLPattern, err)
		return 0, 0
	}

	after := ""
	for {
		urls, err := m.catalog.ListProductURLs(ctx, policy.DomainID, after, m.urlBatch)
		if err != nil {
			log.Errorf("list urls for policy %s failed: %v", policy.ID, err)
			return created, scanned
		}
		if len(urls) == 0 {
			return created, scanned
		}

		for _, url := range urls {
			scanned++
			if !match(url.NormalizedURL) {
				continue
			}
			active, err := m.jobs.HasActiveJob(ctx, policy.ID, url.URLHash)
			if err != nil {
				log.Errorf("active-job check for policy %s url %s failed: %v", policy.ID, url.URLHash, err)
				continue
			}
			if active {
				continue
			}
			job, err := model.NewCrawlJob(policy, url.URLHash, now)
			if err != nil {
				log.Errorf("materialize job for policy %s url %s failed: %v", policy.ID, url.URLHash, err)
				continue
			}
			if err := m.jobs.CreateJob(ctx, job); err != nil {
				// a racing pass may have created the same pair; the
				// unique constraint makes that harmless
				log.Warnf("create job for policy %s url %s failed: %v", policy.ID, url.URLHash, err)
				continue
			}
			created++
		}

		if len(urls) < m.urlBatch {
			return created, scanned
		}
		after = urls[len(urls)-1].URLHash
	}
}

// compilePattern builds a full-match predicate from a policy url pattern.
// An empty pattern matches every URL.
func compilePattern(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, err
	}
	return re.MatchString, nil
}
