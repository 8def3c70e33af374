package database

import (
	"context"
	"errors"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"gorm.io/gorm"
)

// LeaseResult reports the outcome of a lease attempt.
type LeaseResult int

const (
	// Leased means the caller now holds an exclusive lease on the job.
	Leased LeaseResult = iota
	// AlreadyLeased means another bot holds an unexpired lease, or the job
	// left the leasable states before our update landed.
	AlreadyLeased
)

// JobFacadeInterface defines the database operation interface for CrawlJob
type JobFacadeInterface interface {
	CreateJob(ctx context.Context, job *model.CrawlJob) error
	GetJobByID(ctx context.Context, id string) (*model.CrawlJob, error)
	FindPendingJobs(ctx context.Context, domainID string, limit int) ([]*model.CrawlJob, error)
	HasActiveJob(ctx context.Context, policyID, urlHash string) (bool, error)
	TryLease(ctx context.Context, jobID, botID string, now time.Time) (LeaseResult, error)
	AdvanceState(ctx context.Context, jobID string, from, to model.JobState, patch map[string]interface{}) (bool, error)
	SweepExpiredLeases(ctx context.Context, now time.Time, limit int) ([]*model.CrawlJob, error)
	DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// JobFacade implements JobFacadeInterface
type JobFacade struct {
	BaseFacade
}

// NewJobFacade creates a new JobFacade instance
func NewJobFacade() JobFacadeInterface {
	return &JobFacade{}
}

func (f *JobFacade) CreateJob(ctx context.Context, job *model.CrawlJob) error {
	return f.getDB().WithContext(ctx).Create(job).Error
}

func (f *JobFacade) GetJobByID(ctx context.Context, id string) (*model.CrawlJob, error) {
	var job model.CrawlJob
	err := f.getDB().WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// FindPendingJobs lists leasable jobs, highest priority first and oldest
// first within a priority. domainID narrows to one domain's policies.
func (f *JobFacade) FindPendingJobs(ctx context.Context, domainID string, limit int) ([]*model.CrawlJob, error) {
	var jobs []*model.CrawlJob
	query := f.getDB().WithContext(ctx).Model(&model.CrawlJob{}).
		Where("crawl_job.state IN ?", []model.JobState{model.JobStatePending, model.JobStateExpired})
	if domainID != "" {
		query = query.
			Joins("JOIN crawl_policy ON crawl_policy.id = crawl_job.policy_id").
			Where("crawl_policy.domain_id = ?", domainID)
	}
	query = query.Order("crawl_job.priority DESC, crawl_job.created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&jobs).Error
	return jobs, err
}

// HasActiveJob reports whether a non-terminal job already exists for the
// (policy, url) pair. The materializer uses it to avoid duplicate jobs.
func (f *JobFacade) HasActiveJob(ctx context.Context, policyID, urlHash string) (bool, error) {
	var count int64
	err := f.getDB().WithContext(ctx).Model(&model.CrawlJob{}).
		Where("policy_id = ? AND product_url_hash = ? AND state IN ?",
			policyID, urlHash, model.NonTerminalStates()).
		Count(&count).Error
	return count > 0, err
}

// TryLease attempts to acquire an exclusive lease on the job for botID.
// The guard and the lock write happen in a single UPDATE so two bots racing
// for the same job resolve on rows-affected: exactly one sees Leased. A
// locked job whose lease has outlived its TTL is stealable in the same
// statement, which lets pull traffic recover stuck jobs without waiting for
// the sweeper.
func (f *JobFacade) TryLease(ctx context.Context, jobID, botID string, now time.Time) (LeaseResult, error) {
	res := f.getDB().WithContext(ctx).Model(&model.CrawlJob{}).
		Where("id = ?", jobID).
		Where("state IN ? OR (state = ? AND locked_at <= now() - make_interval(secs => lock_ttl_seconds))",
			[]model.JobState{model.JobStatePending, model.JobStateExpired}, model.JobStateLocked).
		Updates(map[string]interface{}{
			"state":      model.JobStateLocked,
			"locked_by":  botID,
			"locked_at":  now,
			"updated_at": now,
		})
	if res.Error != nil {
		return AlreadyLeased, res.Error
	}
	if res.RowsAffected == 0 {
		return AlreadyLeased, nil
	}
	return Leased, nil
}

// AdvanceState moves the job from one state to another with a compare-and-set
// on the current state. Returns false when the job was not in the expected
// state, which callers treat as a lost race rather than an error. patch
// carries extra column updates applied in the same statement.
func (f *JobFacade) AdvanceState(ctx context.Context, jobID string, from, to model.JobState, patch map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{
		"state":      to,
		"updated_at": time.Now(),
	}
	for k, v := range patch {
		updates[k] = v
	}
	res := f.getDB().WithContext(ctx).Model(&model.CrawlJob{}).
		Where("id = ? AND state = ?", jobID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SweepExpiredLeases finds locked jobs whose lease TTL has elapsed. It only
// reads; the lifecycle layer decides the follow-up transition per job so
// retry accounting stays in one place.
func (f *JobFacade) SweepExpiredLeases(ctx context.Context, now time.Time, limit int) ([]*model.CrawlJob, error) {
	var jobs []*model.CrawlJob
	query := f.getDB().WithContext(ctx).Model(&model.CrawlJob{}).
		Where("state = ? AND locked_at <= now() - make_interval(secs => lock_ttl_seconds)", model.JobStateLocked).
		Order("locked_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&jobs).Error
	return jobs, err
}

// DeleteTerminalOlderThan removes done and failed jobs last touched before
// the cutoff. Returns the number of rows removed.
func (f *JobFacade) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := f.getDB().WithContext(ctx).
		Where("state IN ? AND updated_at < ?",
			[]model.JobState{model.JobStateDone, model.JobStateFailed}, cutoff).
		Delete(&model.CrawlJob{})
	return res.RowsAffected, res.Error
}
