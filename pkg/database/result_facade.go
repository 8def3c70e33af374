package database

import (
	"context"
	"errors"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"gorm.io/gorm"
)

// ResultFacadeInterface defines the database operation interface for CrawlResult
type ResultFacadeInterface interface {
	CreateResult(ctx context.Context, result *model.CrawlResult) error
	GetResultByID(ctx context.Context, id string) (*model.CrawlResult, error)
	GetResultByJobID(ctx context.Context, jobID string) (*model.CrawlResult, error)
	UpdateHistoryStatus(ctx context.Context, resultID string, status model.HistoryRecordStatus, recordedAt *time.Time) error
}

// ResultFacade implements ResultFacadeInterface
type ResultFacade struct {
	BaseFacade
}

// NewResultFacade creates a new ResultFacade instance
func NewResultFacade() ResultFacadeInterface {
	return &ResultFacade{}
}

// CreateResult persists the result of a finished crawl. The unique index on
// job_id guarantees at most one result per job.
func (f *ResultFacade) CreateResult(ctx context.Context, result *model.CrawlResult) error {
	return f.getDB().WithContext(ctx).Create(result).Error
}

func (f *ResultFacade) GetResultByID(ctx context.Context, id string) (*model.CrawlResult, error) {
	var result model.CrawlResult
	err := f.getDB().WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (f *ResultFacade) GetResultByJobID(ctx context.Context, jobID string) (*model.CrawlResult, error) {
	var result model.CrawlResult
	err := f.getDB().WithContext(ctx).Where("job_id = ?", jobID).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (f *ResultFacade) UpdateHistoryStatus(ctx context.Context, resultID string, status model.HistoryRecordStatus, recordedAt *time.Time) error {
	updates := map[string]interface{}{
		"history_record_status": status,
	}
	if recordedAt != nil {
		updates["history_recorded_at"] = *recordedAt
	}
	return f.getDB().WithContext(ctx).Model(&model.CrawlResult{}).
		Where("id = ?", resultID).
		Updates(updates).Error
}
