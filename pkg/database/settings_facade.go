package database

import (
	"context"
	"errors"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"gorm.io/gorm"
)

// SettingsFacadeInterface defines the database operation interface for the
// singleton runtime settings rows.
type SettingsFacadeInterface interface {
	GetAutoRecordConfig(ctx context.Context) (*model.AutoRecordConfig, error)
	SaveAutoRecordConfig(ctx context.Context, cfg *model.AutoRecordConfig) error
	GetCacheConfig(ctx context.Context) (*model.CacheConfig, error)
	SaveCacheConfig(ctx context.Context, cfg *model.CacheConfig) error
}

// SettingsFacade implements SettingsFacadeInterface
type SettingsFacade struct {
	BaseFacade
}

// NewSettingsFacade creates a new SettingsFacade instance
func NewSettingsFacade() SettingsFacadeInterface {
	return &SettingsFacade{}
}

// GetAutoRecordConfig returns the auto-record settings row, falling back to
// the disabled default when none has been saved yet.
func (f *SettingsFacade) GetAutoRecordConfig(ctx context.Context) (*model.AutoRecordConfig, error) {
	var cfg model.AutoRecordConfig
	err := f.getDB().WithContext(ctx).Where("id = ?", model.SettingsSingletonID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultAutoRecordConfig(), nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (f *SettingsFacade) SaveAutoRecordConfig(ctx context.Context, cfg *model.AutoRecordConfig) error {
	cfg.ID = model.SettingsSingletonID
	return f.getDB().WithContext(ctx).Save(cfg).Error
}

// GetCacheConfig returns the cache settings row, falling back to defaults
// when none has been saved yet.
func (f *SettingsFacade) GetCacheConfig(ctx context.Context) (*model.CacheConfig, error) {
	var cfg model.CacheConfig
	err := f.getDB().WithContext(ctx).Where("id = ?", model.SettingsSingletonID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultCacheConfig(), nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (f *SettingsFacade) SaveCacheConfig(ctx context.Context, cfg *model.CacheConfig) error {
	cfg.ID = model.SettingsSingletonID
	return f.getDB().WithContext(ctx).Save(cfg).Error
}
