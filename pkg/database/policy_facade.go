package database

import (
	"context"
	"errors"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"gorm.io/gorm"
)

// backoffExponentCap bounds the doubling so the delay stays well inside
// time.Duration range even for policies that fail for weeks.
const backoffExponentCap = 16

// PolicyFacadeInterface defines the database operation interface for CrawlPolicy
type PolicyFacadeInterface interface {
	CreatePolicy(ctx context.Context, policy *model.CrawlPolicy) error
	UpdatePolicy(ctx context.Context, policy *model.CrawlPolicy) error
	GetPolicyByID(ctx context.Context, id string) (*model.CrawlPolicy, error)
	ListDuePolicies(ctx context.Context, now time.Time, limit int) ([]*model.CrawlPolicy, error)
	ScheduleSuccess(ctx context.Context, policyID string, now time.Time) error
	ScheduleFailure(ctx context.Context, policyID string, now time.Time) error
	AdvanceSchedule(ctx context.Context, policyID string, now time.Time) error
}

// PolicyFacade implements PolicyFacadeInterface
type PolicyFacade struct {
	BaseFacade
}

// NewPolicyFacade creates a new PolicyFacade instance
func NewPolicyFacade() PolicyFacadeInterface {
	return &PolicyFacade{}
}

func (f *PolicyFacade) CreatePolicy(ctx context.Context, policy *model.CrawlPolicy) error {
	return f.getDB().WithContext(ctx).Create(policy).Error
}

func (f *PolicyFacade) UpdatePolicy(ctx context.Context, policy *model.CrawlPolicy) error {
	return f.getDB().WithContext(ctx).Save(policy).Error
}

func (f *PolicyFacade) GetPolicyByID(ctx context.Context, id string) (*model.CrawlPolicy, error) {
	var policy model.CrawlPolicy
	err := f.getDB().WithContext(ctx).Where("id = ?", id).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

// ListDuePolicies returns enabled policies whose next_run_at has passed,
// highest priority first.
func (f *PolicyFacade) ListDuePolicies(ctx context.Context, now time.Time, limit int) ([]*model.CrawlPolicy, error) {
	var policies []*model.CrawlPolicy
	query := f.getDB().WithContext(ctx).
		Where("enabled = true AND next_run_at IS NOT NULL AND next_run_at <= ?", now).
		Order("priority DESC, next_run_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&policies).Error
	return policies, err
}

// ScheduleSuccess records a successful crawl for the policy: resets the
// failure counter and schedules the next regular run.
func (f *PolicyFacade) ScheduleSuccess(ctx context.Context, policyID string, now time.Time) error {
	var policy model.CrawlPolicy
	if err := f.getDB().WithContext(ctx).Where("id = ?", policyID).First(&policy).Error; err != nil {
		return err
	}
	next := now.Add(policy.Frequency())
	return f.getDB().WithContext(ctx).Model(&model.CrawlPolicy{}).
		Where("id = ?", policyID).
		Updates(map[string]interface{}{
			"last_success_at": now,
			"failure_count":   0,
			"next_run_at":     next,
			"updated_at":      now,
		}).Error
}

// ScheduleFailure records a terminally failed crawl: increments the failure
// counter atomically and pushes next_run_at out by an exponential backoff.
// Concurrent failures may each re-read the counter, but the increment itself
// never loses updates.
func (f *PolicyFacade) ScheduleFailure(ctx context.Context, policyID string, now time.Time) error {
	db := f.getDB().WithContext(ctx)

	err := db.Model(&model.CrawlPolicy{}).
		Where("id = ?", policyID).
		Updates(map[string]interface{}{
			"last_failed_at": now,
			"failure_count":  gorm.Expr("failure_count + 1"),
			"updated_at":     now,
		}).Error
	if err != nil {
		return err
	}

	var policy model.CrawlPolicy
	if err := db.Where("id = ?", policyID).First(&policy).Error; err != nil {
		return err
	}
	next := now.Add(BackoffDelay(policy.RetryBackoffMinutes, policy.FailureCount))
	return db.Model(&model.CrawlPolicy{}).
		Where("id = ?", policyID).
		Update("next_run_at", next).Error
}

// AdvanceSchedule moves next_run_at one frequency interval forward without
// touching the success or failure bookkeeping. The materializer calls it
// after every pass so a partially failed pass cannot tight-loop.
func (f *PolicyFacade) AdvanceSchedule(ctx context.Context, policyID string, now time.Time) error {
	var policy model.CrawlPolicy
	if err := f.getDB().WithContext(ctx).Where("id = ?", policyID).First(&policy).Error; err != nil {
		return err
	}
	next := now.Add(policy.Frequency())
	return f.getDB().WithContext(ctx).Model(&model.CrawlPolicy{}).
		Where("id = ?", policyID).
		Updates(map[string]interface{}{
			"next_run_at": next,
			"updated_at":  now,
		}).Error
}

// BackoffDelay computes the exponential backoff for the nth consecutive
// failure: base * 2^(failures-1), exponent capped.
func BackoffDelay(backoffMinutes, failureCount int) time.Duration {
	if failureCount < 1 {
		failureCount = 1
	}
	exp := failureCount - 1
	if exp > backoffExponentCap {
		exp = backoffExponentCap
	}
	return time.Duration(backoffMinutes) * time.Minute * time.Duration(1<<exp)
}
