package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const TableNameCrawlJob = "crawl_job"

// CrawlJob is one attempted execution of a URL under a policy. Retained as
// a historical record after it reaches a terminal state.
type CrawlJob struct {
	ID             string `gorm:"column:id;primaryKey;size:64" json:"id"`
	PolicyID       string `gorm:"column:policy_id;size:64;not null;index:idx_crawl_job_policy_url,priority:1" json:"policy_id"`
	ProductURLHash string `gorm:"column:product_url_hash;size:64;not null;index:idx_crawl_job_policy_url,priority:2" json:"product_url_hash"`

	State    JobState `gorm:"column:state;size:16;not null;default:'pending';index:idx_crawl_job_pull,priority:1" json:"state"`
	Priority int      `gorm:"column:priority;not null;default:10;index:idx_crawl_job_pull,priority:2,sort:desc" json:"priority"`

	LockedBy       string     `gorm:"column:locked_by;size:100;index:idx_crawl_job_lease,priority:1" json:"locked_by,omitempty"`
	LockedAt       *time.Time `gorm:"column:locked_at;index:idx_crawl_job_lease,priority:2" json:"locked_at,omitempty"`
	LockTTLSeconds int        `gorm:"column:lock_ttl_seconds;not null;default:600" json:"lock_ttl_seconds"`

	RetryCount int    `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	MaxRetries int    `gorm:"column:max_retries;not null;default:3" json:"max_retries"`
	LastError  string `gorm:"column:last_error;size:1000" json:"last_error,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_crawl_job_pull,priority:3" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (*CrawlJob) TableName() string {
	return TableNameCrawlJob
}

// NewCrawlJob materializes a pending job for one URL under a policy,
// inheriting priority, retry budget and lease TTL.
func NewCrawlJob(policy *CrawlPolicy, urlHash string, now time.Time) (*CrawlJob, error) {
	if policy == nil {
		return nil, fmt.Errorf("policy is required")
	}
	if urlHash == "" {
		return nil, fmt.Errorf("product url hash is required")
	}
	ttl := policy.LockTTLSeconds()
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be > 0, got %d", ttl)
	}
	return &CrawlJob{
		ID:             uuid.New().String(),
		PolicyID:       policy.ID,
		ProductURLHash: urlHash,
		State:          JobStatePending,
		Priority:       policy.Priority,
		LockTTLSeconds: ttl,
		MaxRetries:     policy.MaxRetries,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// LockTTL is the lease duration.
func (j *CrawlJob) LockTTL() time.Duration {
	return time.Duration(j.LockTTLSeconds) * time.Second
}

// LeaseExpired reports whether the lease is past its TTL at now. Only
// meaningful while the job is locked.
func (j *CrawlJob) LeaseExpired(now time.Time) bool {
	if j.LockedAt == nil {
		return false
	}
	return !now.Before(j.LockedAt.Add(j.LockTTL()))
}

// LockedUntil is the moment the current lease expires. Zero when unleased.
func (j *CrawlJob) LockedUntil() time.Time {
	if j.LockedAt == nil {
		return time.Time{}
	}
	return j.LockedAt.Add(j.LockTTL())
}

// CheckInvariants verifies the lease/state coupling the state machine
// relies on.
func (j *CrawlJob) CheckInvariants() error {
	leased := j.LockedBy != "" && j.LockedAt != nil
	if j.State.IsLeased() != leased {
		return fmt.Errorf("job %s: state %s inconsistent with lease (locked_by=%q)", j.ID, j.State, j.LockedBy)
	}
	if j.RetryCount > j.MaxRetries {
		return fmt.Errorf("job %s: retry_count %d exceeds max_retries %d", j.ID, j.RetryCount, j.MaxRetries)
	}
	return nil
}
