package database

import (
	"context"
	"errors"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"gorm.io/gorm"
)

// BotFacadeInterface defines the database operation interface for BotConfig
type BotFacadeInterface interface {
	GetBotByID(ctx context.Context, botID string) (*model.BotConfig, error)
	CreateBot(ctx context.Context, bot *model.BotConfig) error
	UpdateBot(ctx context.Context, bot *model.BotConfig) error
}

// BotFacade implements BotFacadeInterface
type BotFacade struct {
	BaseFacade
}

// NewBotFacade creates a new BotFacade instance
func NewBotFacade() BotFacadeInterface {
	return &BotFacade{}
}

func (f *BotFacade) GetBotByID(ctx context.Context, botID string) (*model.BotConfig, error) {
	var bot model.BotConfig
	err := f.getDB().WithContext(ctx).Where("bot_id = ?", botID).First(&bot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bot, nil
}

func (f *BotFacade) CreateBot(ctx context.Context, bot *model.BotConfig) error {
	return f.getDB().WithContext(ctx).Create(bot).Error
}

func (f *BotFacade) UpdateBot(ctx context.Context, bot *model.BotConfig) error {
	return f.getDB().WithContext(ctx).Save(bot).Error
}
