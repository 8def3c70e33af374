package database

import (
	"context"
	"errors"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"gorm.io/gorm"
)

// AppendOutcome reports what Append did with a candidate price point.
type AppendOutcome int

const (
	// HistoryCreated means a new price point was written.
	HistoryCreated AppendOutcome = iota
	// HistoryDuplicate means the latest point for the URL already carries
	// the same price, currency and stock flag, so nothing was written.
	HistoryDuplicate
)

// PriceHistoryFacadeInterface defines the database operation interface for PriceHistory
type PriceHistoryFacadeInterface interface {
	Append(ctx context.Context, entry *model.PriceHistory) (AppendOutcome, error)
	Latest(ctx context.Context, urlHash string) (*model.PriceHistory, error)
	ListByURL(ctx context.Context, urlHash string, limit int) ([]*model.PriceHistory, error)
}

// PriceHistoryFacade implements PriceHistoryFacadeInterface
type PriceHistoryFacade struct {
	BaseFacade
}

// NewPriceHistoryFacade creates a new PriceHistoryFacade instance
func NewPriceHistoryFacade() PriceHistoryFacadeInterface {
	return &PriceHistoryFacade{}
}

// Append writes a price point unless it duplicates the latest point for the
// URL. Equality is the (price, currency, in_stock) tuple; recorded_at is
// deliberately excluded so re-crawls of an unchanged price stay silent.
// Prices compare by value, not scale, since numeric(20,4) reads back with
// trailing zeros.
func (f *PriceHistoryFacade) Append(ctx context.Context, entry *model.PriceHistory) (AppendOutcome, error) {
	latest, err := f.Latest(ctx, entry.URLHash)
	if err != nil {
		return HistoryDuplicate, err
	}
	if latest != nil &&
		latest.PriceValue.Compare(entry.PriceValue) == 0 &&
		latest.Currency == entry.Currency &&
		latest.InStock == entry.InStock {
		return HistoryDuplicate, nil
	}
	if err := f.getDB().WithContext(ctx).Create(entry).Error; err != nil {
		return HistoryDuplicate, err
	}
	return HistoryCreated, nil
}

func (f *PriceHistoryFacade) Latest(ctx context.Context, urlHash string) (*model.PriceHistory, error) {
	var entry model.PriceHistory
	err := f.getDB().WithContext(ctx).
		Where("url_hash = ?", urlHash).
		Order("recorded_at DESC, id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (f *PriceHistoryFacade) ListByURL(ctx context.Context, urlHash string, limit int) ([]*model.PriceHistory, error) {
	var entries []*model.PriceHistory
	query := f.getDB().WithContext(ctx).
		Where("url_hash = ?", urlHash).
		Order("recorded_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}
