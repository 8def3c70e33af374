package model

import (
	"fmt"
	"time"
)

const TableNameCrawlPolicy = "crawl_policy"

// CrawlPolicy is the long-lived scheduling recipe for a set of URLs under
// one domain. (domain_id, name) is unique.
type CrawlPolicy struct {
	ID         string `gorm:"column:id;primaryKey;size:64" json:"id"`
	DomainID   string `gorm:"column:domain_id;size:64;not null;uniqueIndex:uq_crawl_policy_domain_name,priority:1" json:"domain_id"`
	Name       string `gorm:"column:name;size:255;not null;uniqueIndex:uq_crawl_policy_domain_name,priority:2" json:"name"`
	URLPattern string `gorm:"column:url_pattern;size:1024" json:"url_pattern"`

	FrequencyHours      int  `gorm:"column:frequency_hours;not null;default:24" json:"frequency_hours"`
	Priority            int  `gorm:"column:priority;not null;default:10" json:"priority"`
	MaxRetries          int  `gorm:"column:max_retries;not null;default:3" json:"max_retries"`
	RetryBackoffMinutes int  `gorm:"column:retry_backoff_minutes;not null;default:30" json:"retry_backoff_minutes"`
	TimeoutMinutes      int  `gorm:"column:timeout_minutes;not null;default:10" json:"timeout_minutes"`
	Enabled             bool `gorm:"column:enabled;not null;default:true;index:idx_crawl_policy_due,priority:1" json:"enabled"`

	NextRunAt     *time.Time `gorm:"column:next_run_at;index:idx_crawl_policy_due,priority:2" json:"next_run_at,omitempty"`
	LastSuccessAt *time.Time `gorm:"column:last_success_at" json:"last_success_at,omitempty"`
	LastFailedAt  *time.Time `gorm:"column:last_failed_at" json:"last_failed_at,omitempty"`
	FailureCount  int        `gorm:"column:failure_count;not null;default:0" json:"failure_count"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (*CrawlPolicy) TableName() string {
	return TableNameCrawlPolicy
}

const (
	policyPriorityMin = 1
	policyPriorityMax = 20
)

// Validate enforces the construction invariants of a policy.
func (p *CrawlPolicy) Validate() error {
	if p.DomainID == "" {
		return fmt.Errorf("policy domain_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("policy name is required")
	}
	if p.FrequencyHours < 1 {
		return fmt.Errorf("frequency_hours must be >= 1, got %d", p.FrequencyHours)
	}
	if p.Priority < policyPriorityMin || p.Priority > policyPriorityMax {
		return fmt.Errorf("priority must be in [%d, %d], got %d", policyPriorityMin, policyPriorityMax, p.Priority)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", p.MaxRetries)
	}
	if p.RetryBackoffMinutes <= 0 {
		return fmt.Errorf("retry_backoff_minutes must be > 0, got %d", p.RetryBackoffMinutes)
	}
	if p.TimeoutMinutes <= 0 {
		return fmt.Errorf("timeout_minutes must be > 0, got %d", p.TimeoutMinutes)
	}
	return nil
}

// LockTTLSeconds is the lease TTL jobs inherit from this policy at creation.
func (p *CrawlPolicy) LockTTLSeconds() int {
	if p.TimeoutMinutes <= 0 {
		return 600
	}
	return p.TimeoutMinutes * 60
}

// Frequency is the scheduling interval.
func (p *CrawlPolicy) Frequency() time.Duration {
	return time.Duration(p.FrequencyHours) * time.Hour
}

// IsDue reports whether the policy should materialize jobs at now.
func (p *CrawlPolicy) IsDue(now time.Time) bool {
	return p.Enabled && p.NextRunAt != nil && !p.NextRunAt.After(now)
}
