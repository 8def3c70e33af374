package database

import (
	"context"
	"errors"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/database/model"
	"gorm.io/gorm"
)

// CatalogFacadeInterface defines read access to the product catalog tables
// (domains and product URLs) owned by the discovery side of the platform.
type CatalogFacadeInterface interface {
	GetDomainByID(ctx context.Context, id string) (*model.Domain, error)
	GetDomainByName(ctx context.Context, name string) (*model.Domain, error)
	GetProductURL(ctx context.Context, urlHash string) (*model.ProductURL, error)
	ListProductURLs(ctx context.Context, domainID, afterHash string, limit int) ([]*model.ProductURL, error)
}

// CatalogFacade implements CatalogFacadeInterface
type CatalogFacade struct {
	BaseFacade
}

// NewCatalogFacade creates a new CatalogFacade instance
func NewCatalogFacade() CatalogFacadeInterface {
	return &CatalogFacade{}
}

func (f *CatalogFacade) GetDomainByID(ctx context.Context, id string) (*model.Domain, error) {
	var domain model.Domain
	err := f.getDB().WithContext(ctx).Where("id = ?", id).First(&domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain, nil
}

func (f *CatalogFacade) GetDomainByName(ctx context.Context, name string) (*model.Domain, error) {
	var domain model.Domain
	err := f.getDB().WithContext(ctx).Where("name = ?", name).First(&domain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain, nil
}

func (f *CatalogFacade) GetProductURL(ctx context.Context, urlHash string) (*model.ProductURL, error) {
	var url model.ProductURL
	err := f.getDB().WithContext(ctx).Where("url_hash = ?", urlHash).First(&url).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &url, nil
}

// ListProductURLs pages through a domain's URLs ordered by url_hash. Pass the
// last hash of the previous page as afterHash, empty for the first page.
func (f *CatalogFacade) ListProductURLs(ctx context.Context, domainID, afterHash string, limit int) ([]*model.ProductURL, error) {
	var urls []*model.ProductURL
	query := f.getDB().WithContext(ctx).Where("domain_id = ?", domainID)
	if afterHash != "" {
		query = query.Where("url_hash > ?", afterHash)
	}
	query = query.Order("url_hash ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&urls).Error
	return urls, err
}
