package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/cache"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/queue"
)

// SubmitOutcome describes where a job landed after a submit.
type SubmitOutcome struct {
	Job           *model.CrawlJob
	Status        model.JobState
	Result        *model.CrawlResult
	PolicyNextRun *time.Time
	RetryCount    int
	MaxRetries    int
	LastError     string
}

// Engine owns every job state change. All transitions go through the
// compare-and-set facade primitives, so no in-memory lock is held across
// store calls.
type Engine struct {
	jobs     database.JobFacadeInterface
	policies database.PolicyFacadeInterface
	results  database.ResultFacadeInterface
	store    *cache.Store
	queue    queue.Queue
}

// NewEngine wires the lifecycle engine.
func NewEngine(
	jobs database.JobFacadeInterface,
	policies database.PolicyFacadeInterface,
	results database.ResultFacadeInterface,
	store *cache.Store,
	q queue.Queue,
) *Engine {
	return &Engine{
		jobs:     jobs,
		policies: policies,
		results:  results,
		store:    store,
		queue:    q,
	}
}

// Lease attempts to lock a job for a bot. On success it invalidates the
// pending-list caches so the next pull sees fresh candidates.
func (e *Engine) Lease(ctx context.Context, jobID, botID string, now time.Time) (database.LeaseResult, error) {
	res, err := e.jobs.TryLease(ctx, jobID, botID, now)
	if err != nil {
		return database.AlreadyLeased, err
	}
	if res == database.Leased {
		e.invalidatePendingLists(ctx)
	}
	return res, nil
}

// CompleteJob handles submit(success=true): moves the job LOCKED -> DONE,
// persists the result, feeds the auto-record queue and reschedules the
// policy. result arrives without an id or job binding; both are set here.
func (e *Engine) CompleteJob(ctx context.Context, jobID, botID string, result *model.CrawlResult, now time.Time) (*SubmitOutcome, error) {
	job, err := e.checkSubmittable(ctx, jobID, botID, now)
	if err != nil {
		return nil, err
	}

	result.ID = uuid.New().String()
	result.JobID = job.ID
	result.CrawledAt = now
	result.HistoryRecordStatus = model.HistoryRecordNone
	result.CreatedAt = now

	ok, err := e.advance(ctx, job.ID, model.JobStateLocked, model.JobStateDone, clearLease(nil))
	if err != nil {
		return nil, err
	}
	if !ok {
		// the lease was swept or stolen between the check and the CAS
		return nil, errors.NewError().
			WithCode(errors.CodeJobNotLocked).
			WithMessagef("job %s left LOCKED before completion", job.ID)
	}

	if err := e.results.CreateResult(ctx, result); err != nil {
		// compensate: put the job back under its lease so the bot can
		// retry the submit instead of losing the observation
		lease := map[string]interface{}{"locked_by": job.LockedBy}
		if job.LockedAt != nil {
			lease["locked_at"] = *job.LockedAt
		}
		if _, rerr := e.jobs.AdvanceState(ctx, job.ID, model.JobStateDone, model.JobStateLocked, lease); rerr != nil {
			log.Errorf("revert of job %s to LOCKED after result write failure failed: %v", job.ID, rerr)
		}
		return nil, errors.NewError().
			WithCode(errors.CodeDatabaseError).
			WithMessagef("job %s result write failed", job.ID).
			WithError(err)
	}

	if err := e.queue.Enqueue(ctx, result.ID); err != nil {
		// auto-record is best effort here; the retry-failed sweep cannot
		// recover an id that never reached Redis, so log at error
		log.Errorf("enqueue result %s for auto-record failed: %v", result.ID, err)
	}

	e.invalidateJob(ctx, job.ID)
	e.invalidatePendingLists(ctx)

	var nextRun *time.Time
	if err := e.policies.ScheduleSuccess(ctx, job.PolicyID, now); err != nil {
		log.Errorf("schedule success for policy %s failed: %v", job.PolicyID, err)
	} else if policy, perr := e.policies.GetPolicyByID(ctx, job.PolicyID); perr == nil && policy != nil {
		nextRun = policy.NextRunAt
	}

	job.State = model.JobStateDone
	return &SubmitOutcome{
		Job:           job,
		Status:        model.JobStateDone,
		Result:        result,
		PolicyNextRun: nextRun,
		RetryCount:    job.RetryCount,
		MaxRetries:    job.MaxRetries,
	}, nil
}

// FailJob handles submit(success=false): the job goes back to PENDING while
// retry budget remains, otherwise to FAILED with a policy backoff.
func (e *Engine) FailJob(ctx context.Context, jobID, botID, errMsg string, now time.Time) (*SubmitOutcome, error) {
	job, err := e.checkSubmittable(ctx, jobID, botID, now)
	if err != nil {
		return nil, err
	}

	if len(errMsg) > 1000 {
		errMsg = errMsg[:1000]
	}

	if job.RetryCount < job.MaxRetries {
		patch := clearLease(map[string]interface{}{
			"retry_count": job.RetryCount + 1,
			"last_error":  errMsg,
		})
		ok, err := e.advance(ctx, job.ID, model.JobStateLocked, model.JobStatePending, patch)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NewError().
				WithCode(errors.CodeJobNotLocked).
				WithMessagef("job %s left LOCKED before retry", job.ID)
		}
		e.invalidateJob(ctx, job.ID)
		e.invalidatePendingLists(ctx)
		job.State = model.JobStatePending
		job.RetryCount++
		return &SubmitOutcome{
			Job:        job,
			Status:     model.JobStatePending,
			RetryCount: job.RetryCount,
			MaxRetries: job.MaxRetries,
			LastError:  errMsg,
		}, nil
	}

	ok, err := e.advance(ctx, job.ID, model.JobStateLocked, model.JobStateFailed, clearLease(map[string]interface{}{
		"last_error": errMsg,
	}))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewError().
			WithCode(errors.CodeJobNotLocked).
			WithMessagef("job %s left LOCKED before failure", job.ID)
	}
	e.invalidateJob(ctx, job.ID)

	if err := e.policies.ScheduleFailure(ctx, job.PolicyID, now); err != nil {
		log.Errorf("schedule failure for policy %s failed: %v", job.PolicyID, err)
	}

	job.State = model.JobStateFailed
	return &SubmitOutcome{
		Job:        job,
		Status:     model.JobStateFailed,
		RetryCount: job.RetryCount,
		MaxRetries: job.MaxRetries,
		LastError:  errMsg,
	}, nil
}

// SweepExpiredLeases moves lapsed LOCKED jobs to EXPIRED and immediately on
// to PENDING so they re-enter the pull pool. Returns how many were swept.
func (e *Engine) SweepExpiredLeases(ctx context.Context, now time.Time, limit int) (int, error) {
	stale, err := e.jobs.SweepExpiredLeases(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, job := range stale {
		ok, err := e.advance(ctx, job.ID, model.JobStateLocked, model.JobStateExpired, clearLease(nil))
		if err != nil {
			log.Errorf("sweep: expire job %s failed: %v", job.ID, err)
			continue
		}
		if !ok {
			// the owner submitted, or a pull stole the lease, in between
			continue
		}
		if _, err := e.advance(ctx, job.ID, model.JobStateExpired, model.JobStatePending, nil); err != nil {
			log.Errorf("sweep: requeue job %s failed: %v", job.ID, err)
			continue
		}
		log.Warnf("lease on job %s held by %s expired after %ds, requeued",
			job.ID, job.LockedBy, job.LockTTLSeconds)
		swept++
	}
	if swept > 0 {
		e.invalidatePendingLists(ctx)
	}
	return swept, nil
}

// checkSubmittable runs the ownership and lease checks shared by both submit
// branches. The returned job snapshot reflects the row at check time.
func (e *Engine) checkSubmittable(ctx context.Context, jobID, botID string, now time.Time) (*model.CrawlJob, error) {
	job, err := e.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.NewError().
			WithCode(errors.RequestDataNotExisted).
			WithMessagef("job %s not found", jobID)
	}
	if job.State != model.JobStateLocked {
		return nil, errors.NewError().
			WithCode(errors.CodeJobNotLocked).
			WithMessagef("job %s is %s, not locked", jobID, job.State)
	}
	if job.LockedBy != botID {
		return nil, errors.NewError().
			WithCode(errors.CodeNotAssigned).
			WithMessagef("job %s is assigned to %s", jobID, job.LockedBy)
	}
	if job.LeaseExpired(now) {
		// no state change: the job stays LOCKED until the sweeper runs
		return nil, errors.NewError().
			WithCode(errors.CodeLeaseExpired).
			WithMessagef("lease on job %s expired at %s", jobID, job.LockedUntil().Format(time.RFC3339))
	}
	return job, nil
}

func (e *Engine) advance(ctx context.Context, jobID string, from, to model.JobState, patch map[string]interface{}) (bool, error) {
	if !CanTransition(from, to) {
		return false, illegalTransition(from, to)
	}
	return e.jobs.AdvanceState(ctx, jobID, from, to, patch)
}

// clearLease merges the lease-clearing columns into patch.
func clearLease(patch map[string]interface{}) map[string]interface{} {
	if patch == nil {
		patch = map[string]interface{}{}
	}
	patch["locked_by"] = ""
	patch["locked_at"] = nil
	return patch
}

func (e *Engine) invalidateJob(ctx context.Context, jobID string) {
	if err := e.store.Delete(ctx, cache.JobDetailKey(jobID)); err != nil {
		log.Warnf("invalidate job cache %s failed: %v", jobID, err)
	}
}

func (e *Engine) invalidatePendingLists(ctx context.Context) {
	if err := e.store.DeletePattern(ctx, cache.PendingPattern); err != nil {
		log.Warnf("invalidate pending-list caches failed: %v", err)
	}
}
