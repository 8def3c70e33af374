package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
)

type memPolicies struct {
	mu       sync.Mutex
	policies map[string]*model.CrawlPolicy
}

func newMemPolicies() *memPolicies {
	return &memPolicies{policies: map[string]*model.CrawlPolicy{}}
}

func (m *memPolicies) put(policy *model.CrawlPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *policy
	m.policies[policy.ID] = &copied
}

func (m *memPolicies) CreatePolicy(_ context.Context, policy *model.CrawlPolicy) error {
	m.put(policy)
	return nil
}

func (m *memPolicies) UpdatePolicy(_ context.Context, policy *model.CrawlPolicy) error {
	m.put(policy)
	return nil
}

func (m *memPolicies) GetPolicyByID(_ context.Context, id string) (*model.CrawlPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if policy, ok := m.policies[id]; ok {
		copied := *policy
		return &copied, nil
	}
	return nil, nil
}

func (m *memPolicies) ListDuePolicies(_ context.Context, now time.Time, limit int) ([]*model.CrawlPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CrawlPolicy
	for _, policy := range m.policies {
		if policy.IsDue(now) {
			copied := *policy
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPolicies) ScheduleSuccess(_ context.Context, policyID string, now time.Time) error {
	return m.AdvanceSchedule(nil, policyID, now)
}

func (m *memPolicies) ScheduleFailure(_ context.Context, policyID string, now time.Time) error {
	return m.AdvanceSchedule(nil, policyID, now)
}

func (m *memPolicies) AdvanceSchedule(_ context.Context, policyID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	policy, ok := m.policies[policyID]
	if !ok {
		return fmt.Errorf("policy %s not found", policyID)
	}
	next := now.Add(policy.Frequency())
	policy.NextRunAt = &next
	return nil
}

type memJobs struct {
	mu   sync.Mutex
	jobs map[string]*model.CrawlJob
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]*model.CrawlJob{}}
}

func (m *memJobs) all() []*model.CrawlJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CrawlJob
	for _, job := range m.jobs {
		copied := *job
		out = append(out, &copied)
	}
	return out
}

func (m *memJobs) CreateJob(_ context.Context, job *model.CrawlJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.jobs {
		if existing.PolicyID == job.PolicyID &&
			existing.ProductURLHash == job.ProductURLHash &&
			!existing.State.IsTerminal() {
			return fmt.Errorf("active job exists for policy %s url %s", job.PolicyID, job.ProductURLHash)
		}
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memJobs) GetJobByID(_ context.Context, id string) (*model.CrawlJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, nil
}

func (m *memJobs) FindPendingJobs(_ context.Context, _ string, limit int) ([]*model.CrawlJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CrawlJob
	for _, job := range m.jobs {
		if job.State == model.JobStatePending || job.State == model.JobStateExpired {
			copied := *job
			out = append(out, &copied)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memJobs) HasActiveJob(_ context.Context, policyID, urlHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, job := range m.jobs {
		if job.PolicyID == policyID && job.ProductURLHash == urlHash && !job.State.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memJobs) TryLease(_ context.Context, _, _ string, _ time.Time) (database.LeaseResult, error) {
	return database.AlreadyLeased, nil
}

func (m *memJobs) AdvanceState(_ context.Context, jobID string, from, to model.JobState, _ map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.State != from {
		return false, nil
	}
	job.State = to
	return true, nil
}

func (m *memJobs) SweepExpiredLeases(_ context.Context, _ time.Time, _ int) ([]*model.CrawlJob, error) {
	return nil, nil
}

func (m *memJobs) DeleteTerminalOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, job := range m.jobs {
		if job.State.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed, nil
}

type memCatalog struct {
	domains map[string]*model.Domain
	urls    []*model.ProductURL
}

func newMemCatalog() *memCatalog {
	return &memCatalog{domains: map[string]*model.Domain{}}
}

func (m *memCatalog) addURL(url *model.ProductURL) {
	m.urls = append(m.urls, url)
	sort.Slice(m.urls, func(i, j int) bool { return m.urls[i].URLHash < m.urls[j].URLHash })
}

func (m *memCatalog) GetDomainByID(_ context.Context, id string) (*model.Domain, error) {
	return m.domains[id], nil
}

func (m *memCatalog) GetDomainByName(_ context.Context, name string) (*model.Domain, error) {
	for _, domain := range m.domains {
		if domain.Name == name {
			return domain, nil
		}
	}
	return nil, nil
}

func (m *memCatalog) GetProductURL(_ context.Context, urlHash string) (*model.ProductURL, error) {
	for _, url := range m.urls {
		if url.URLHash == urlHash {
			return url, nil
		}
	}
	return nil, nil
}

func (m *memCatalog) ListProductURLs(_ context.Context, domainID, afterHash string, limit int) ([]*model.ProductURL, error) {
	var out []*model.ProductURL
	for _, url := range m.urls {
		if url.DomainID != domainID {
			continue
		}
		if afterHash != "" && url.URLHash <= afterHash {
			continue
		}
		out = append(out, url)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
