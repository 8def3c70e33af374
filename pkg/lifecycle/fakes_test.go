package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
)

// memJobs is an in-memory JobFacadeInterface with the same CAS semantics as
// the SQL implementation. A single mutex stands in for row-level atomicity.
type memJobs struct {
	mu   sync.Mutex
	jobs map[string]*model.CrawlJob
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]*model.CrawlJob{}}
}

func (m *memJobs) put(job *model.CrawlJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.jobs[job.ID] = &copied
}

func (m *memJobs) snapshot(id string) *model.CrawlJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		copied := *job
		return &copied
	}
	return nil
}

func (m *memJobs) CreateJob(_ context.Context, job *model.CrawlJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[job.ID]; exists {
		return fmt.Errorf("duplicate job id %s", job.ID)
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memJobs) GetJobByID(_ context.Context, id string) (*model.CrawlJob, error) {
	return m.snapshot(id), nil
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
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
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

func (m *memJobs) TryLease(_ context.Context, jobID, botID string, now time.Time) (database.LeaseResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return database.AlreadyLeased, nil
	}
	leasable := job.State == model.JobStatePending ||
		job.State == model.JobStateExpired ||
		(job.State == model.JobStateLocked && job.LeaseExpired(now))
	if !leasable {
		return database.AlreadyLeased, nil
	}
	job.State = model.JobStateLocked
	job.LockedBy = botID
	lockedAt := now
	job.LockedAt = &lockedAt
	job.UpdatedAt = now
	return database.Leased, nil
}

func (m *memJobs) AdvanceState(_ context.Context, jobID string, from, to model.JobState, patch map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.State != from {
		return false, nil
	}
	job.State = to
	for k, v := range patch {
		switch k {
		case "locked_by":
			job.LockedBy = v.(string)
		case "locked_at":
			if v == nil {
				job.LockedAt = nil
			} else {
				at := v.(time.Time)
				job.LockedAt = &at
			}
		case "retry_count":
			job.RetryCount = v.(int)
		case "last_error":
			job.LastError = v.(string)
		}
	}
	job.UpdatedAt = time.Now()
	return true, nil
}

func (m *memJobs) SweepExpiredLeases(_ context.Context, now time.Time, limit int) ([]*model.CrawlJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CrawlJob
	for _, job := range m.jobs {
		if job.State == model.JobStateLocked && job.LeaseExpired(now) {
			copied := *job
			out = append(out, &copied)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
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

// memPolicies is an in-memory PolicyFacadeInterface mirroring the schedule
// callback semantics.
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
	m.mu.Lock()
	defer m.mu.Unlock()
	policy, ok := m.policies[policyID]
	if !ok {
		return fmt.Errorf("policy %s not found", policyID)
	}
	at := now
	policy.LastSuccessAt = &at
	policy.FailureCount = 0
	next := now.Add(policy.Frequency())
	policy.NextRunAt = &next
	return nil
}

func (m *memPolicies) ScheduleFailure(_ context.Context, policyID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	policy, ok := m.policies[policyID]
	if !ok {
		return fmt.Errorf("policy %s not found", policyID)
	}
	at := now
	policy.LastFailedAt = &at
	policy.FailureCount++
	next := now.Add(database.BackoffDelay(policy.RetryBackoffMinutes, policy.FailureCount))
	policy.NextRunAt = &next
	return nil
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

// memResults is an in-memory ResultFacadeInterface enforcing the unique
// job_id constraint.
type memResults struct {
	mu      sync.Mutex
	byID    map[string]*model.CrawlResult
	byJobID map[string]string
	failQty int
}

func newMemResults() *memResults {
	return &memResults{byID: map[string]*model.CrawlResult{}, byJobID: map[string]string{}}
}

func (m *memResults) failNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failQty = n
}

func (m *memResults) CreateResult(_ context.Context, result *model.CrawlResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failQty > 0 {
		m.failQty--
		return fmt.Errorf("result store unavailable")
	}
	if _, exists := m.byJobID[result.JobID]; exists {
		return fmt.Errorf("result already exists for job %s", result.JobID)
	}
	copied := *result
	m.byID[result.ID] = &copied
	m.byJobID[result.JobID] = result.ID
	return nil
}

func (m *memResults) GetResultByID(_ context.Context, id string) (*model.CrawlResult, error) {
	return m.getByID(id), nil
}

func (m *memResults) GetResultByJobID(_ context.Context, jobID string) (*model.CrawlResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byJobID[jobID]; ok {
		copied := *m.byID[id]
		return &copied, nil
	}
	return nil, nil
}

func (m *memResults) getByID(id string) *model.CrawlResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result, ok := m.byID[id]; ok {
		copied := *result
		return &copied
	}
	return nil
}

func (m *memResults) UpdateHistoryStatus(_ context.Context, resultID string, status model.HistoryRecordStatus, recordedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.byID[resultID]
	if !ok {
		return fmt.Errorf("result %s not found", resultID)
	}
	result.HistoryRecordStatus = status
	if recordedAt != nil {
		at := *recordedAt
		result.HistoryRecordedAt = &at
	}
	return nil
}
