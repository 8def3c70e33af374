package database

import (
	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/sql"
	"gorm.io/gorm"
)

// BaseFacade is the base structure for all Facades, providing DB access capability
type BaseFacade struct {
	db *gorm.DB // nil means using the default connection
}

// getDB retrieves the database connection backing this facade
func (f *BaseFacade) getDB() *gorm.DB {
	if f.db != nil {
		return f.db
	}
	return sql.GetDefaultDB()
}
