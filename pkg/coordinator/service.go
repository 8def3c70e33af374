package coordinator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/cache"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/errors"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/lifecycle"
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
)

// hardPullCap bounds max_jobs no matter what the bot config says.
const hardPullCap = 100

// candidateScanLimit bounds how many pending ids one pull considers.
const candidateScanLimit = 500

// PulledJob is one leased job as returned to a bot.
type PulledJob struct {
	JobID          string    `json:"job_id"`
	URL            string    `json:"url"`
	Priority       int       `json:"priority"`
	MaxRetries     int       `json:"max_retries"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	RetryCount     int       `json:"retry_count"`
	LockedUntil    time.Time `json:"locked_until"`
}

// PullResponse is the payload for a successful pull.
type PullResponse struct {
	Jobs    []PulledJob `json:"jobs"`
	Count   int         `json:"count"`
	Skipped int         `json:"skipped"`
}

// SubmitRequest carries a crawl outcome from a bot.
type SubmitRequest struct {
	JobID      string
	Success    bool
	Price      *decimal.Decimal
	Currency   string
	Title      string
	InStock    *bool
	ParsedData map[string]interface{}
	RawHTML    string
	ErrorMsg   string
}

// SubmitResponse is the payload for an accepted submit.
type SubmitResponse struct {
	ResultID      string     `json:"result_id,omitempty"`
	JobID         string     `json:"job_id"`
	Status        string     `json:"status"`
	Price         string     `json:"price,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	PolicyNextRun *time.Time `json:"policy_next_run,omitempty"`
	RetryCount    int        `json:"retry_count,omitempty"`
	MaxRetries    int        `json:"max_retries,omitempty"`
	Error         string     `json:"error,omitempty"`
	Message       string     `json:"message,omitempty"`
}

// Service is the bot-facing coordination layer: it matches pull requests to
// leasable jobs and routes submits through the lifecycle engine.
type Service struct {
	engine   *lifecycle.Engine
	jobs     database.JobFacadeInterface
	catalog  database.CatalogFacadeInterface
	settings database.SettingsFacadeInterface
	store    *cache.Store

	cacheCfg atomic.Pointer[model.CacheConfig]
}

// NewService wires the coordination service. The cache strategy starts from
// defaults until ReloadCacheConfig is called.
func NewService(
	engine *lifecycle.Engine,
	jobs database.JobFacadeInterface,
	catalog database.CatalogFacadeInterface,
	settings database.SettingsFacadeInterface,
	store *cache.Store,
) *Service {
	s := &Service{
		engine:   engine,
		jobs:     jobs,
		catalog:  catalog,
		settings: settings,
		store:    store,
	}
	s.cacheCfg.Store(model.DefaultCacheConfig())
	return s
}

// ReloadCacheConfig re-reads the persisted cache strategy. Called at startup
// and from the admin reload endpoint.
func (s *Service) ReloadCacheConfig(ctx context.Context) error {
	cfg, err := s.settings.GetCacheConfig(ctx)
	if err != nil {
		return err
	}
	s.cacheCfg.Store(cfg)
	log.Infof("cache config loaded: enabled=%v pending_ttl=%ds", cfg.Enabled, cfg.PendingJobsTTL())
	return nil
}

// Pull leases up to maxJobs jobs for the bot. Candidates come from the
// cached pending list when the strategy allows; every candidate still goes
// through the atomic lease, so staleness only costs a skip.
func (s *Service) Pull(ctx context.Context, bot *model.BotConfig, maxJobs int, domainName string) (*PullResponse, error) {
	maxJobs = s.clampMaxJobs(bot, maxJobs)
	now := time.Now()

	domainID := ""
	if domainName != "" {
		domain, err := s.catalog.GetDomainByName(ctx, domainName)
		if err != nil {
			return nil, err
		}
		if domain == nil {
			// unknown domain filters everything out rather than erroring
			return &PullResponse{Jobs: []PulledJob{}}, nil
		}
		domainID = domain.ID
	}

	candidates, err := s.pendingCandidates(ctx, domainID)
	if err != nil {
		return nil, err
	}

	resp := &PullResponse{Jobs: []PulledJob{}}
	for _, jobID := range candidates {
		if len(resp.Jobs) >= maxJobs {
			break
		}
		res, err := s.engine.Lease(ctx, jobID, bot.BotID, now)
		if err != nil {
			return nil, err
		}
		if res != database.Leased {
			resp.Skipped++
			continue
		}
		pulled, err := s.describeLeasedJob(ctx, jobID, now)
		if err != nil {
			log.Errorf("describe leased job %s failed: %v", jobID, err)
			resp.Skipped++
			continue
		}
		resp.Jobs = append(resp.Jobs, *pulled)
	}
	resp.Count = len(resp.Jobs)
	return resp, nil
}

// Submit validates and applies a crawl outcome.
func (s *Service) Submit(ctx context.Context, bot *model.BotConfig, req *SubmitRequest) (*SubmitResponse, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}
	now := time.Now()

	if req.Success {
		inStock := true
		if req.InStock != nil {
			inStock = *req.InStock
		}
		result := &model.CrawlResult{
			Price:      *req.Price,
			Currency:   req.Currency,
			Title:      req.Title,
			InStock:    inStock,
			ParsedData: model.ExtType(req.ParsedData),
			RawHTML:    req.RawHTML,
		}
		outcome, err := s.engine.CompleteJob(ctx, req.JobID, bot.BotID, result, now)
		if err != nil {
			return nil, err
		}
		return &SubmitResponse{
			ResultID:      outcome.Result.ID,
			JobID:         req.JobID,
			Status:        string(model.JobStateDone),
			Price:         outcome.Result.Price.String(),
			Currency:      outcome.Result.Currency,
			PolicyNextRun: outcome.PolicyNextRun,
		}, nil
	}

	outcome, err := s.engine.FailJob(ctx, req.JobID, bot.BotID, req.ErrorMsg, now)
	if err != nil {
		return nil, err
	}
	resp := &SubmitResponse{
		JobID:      req.JobID,
		Status:     string(outcome.Status),
		RetryCount: outcome.RetryCount,
		MaxRetries: outcome.MaxRetries,
	}
	if outcome.Status == model.JobStateFailed {
		resp.Error = outcome.LastError
		resp.Message = "job failed permanently, no retries left"
	} else {
		resp.Message = "job requeued for retry"
	}
	return resp, nil
}

// GetJob serves a job snapshot through the detail cache, for the admin API.
func (s *Service) GetJob(ctx context.Context, jobID string) (*model.CrawlJob, error) {
	cfg := s.cacheCfg.Load()
	if !cfg.Enabled || !cfg.JobDetailEnabled {
		return s.jobs.GetJobByID(ctx, jobID)
	}
	ttl := time.Duration(cfg.JobDetailTTL()) * time.Second
	return cache.ReadThrough(ctx, s.store, cache.JobDetailKey(jobID), ttl,
		func(ctx context.Context) (*model.CrawlJob, error) {
			return s.jobs.GetJobByID(ctx, jobID)
		})
}

func (s *Service) clampMaxJobs(bot *model.BotConfig, maxJobs int) int {
	limit := bot.MaxJobsPerPull
	if limit <= 0 || limit > hardPullCap {
		limit = hardPullCap
	}
	if maxJobs <= 0 {
		maxJobs = 10
	}
	if maxJobs > limit {
		maxJobs = limit
	}
	return maxJobs
}

// pendingCandidates returns candidate job ids, through the pending-list
// cache when the strategy allows.
func (s *Service) pendingCandidates(ctx context.Context, domainID string) ([]string, error) {
	load := func(ctx context.Context) ([]string, error) {
		jobs, err := s.jobs.FindPendingJobs(ctx, domainID, candidateScanLimit)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(jobs))
		for _, job := range jobs {
			ids = append(ids, job.ID)
		}
		return ids, nil
	}

	cfg := s.cacheCfg.Load()
	if !cfg.Enabled || !cfg.PendingJobsEnabled {
		return load(ctx)
	}
	ttl := time.Duration(cfg.PendingJobsTTL()) * time.Second
	return cache.ReadThrough(ctx, s.store, cache.PendingJobsKey(domainID), ttl, load)
}

func (s *Service) describeLeasedJob(ctx context.Context, jobID string, now time.Time) (*PulledJob, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.NewError().
			WithCode(errors.RequestDataNotExisted).
			WithMessagef("leased job %s vanished", jobID)
	}

	url := ""
	record, err := s.catalog.GetProductURL(ctx, job.ProductURLHash)
	if err != nil {
		log.Warnf("resolve url for job %s failed: %v", jobID, err)
	} else if record != nil {
		url = record.NormalizedURL
	}

	return &PulledJob{
		JobID:          job.ID,
		URL:            url,
		Priority:       job.Priority,
		MaxRetries:     job.MaxRetries,
		TimeoutSeconds: job.LockTTLSeconds,
		RetryCount:     job.RetryCount,
		LockedUntil:    now.Add(time.Duration(job.LockTTLSeconds) * time.Second),
	}, nil
}

func validateSubmit(req *SubmitRequest) error {
	if req.JobID == "" {
		return errors.NewError().
			WithCode(errors.RequestParameterInvalid).
			WithMessage("job_id is required")
	}
	if req.Success {
		if req.Price == nil {
			return errors.NewError().
				WithCode(errors.RequestParameterInvalid).
				WithMessage("price is required on success")
		}
		if req.Price.IsNegative() {
			return errors.NewError().
				WithCode(errors.RequestParameterInvalid).
				WithMessage("price must be non-negative")
		}
		if !model.ValidCurrency(req.Currency) {
			return errors.NewError().
				WithCode(errors.RequestParameterInvalid).
				WithMessagef("currency %q must be 3 uppercase letters", req.Currency)
		}
	}
	if len(req.ErrorMsg) > 1000 {
		req.ErrorMsg = req.ErrorMsg[:1000]
	}
	return nil
}
