package model

import "strings"

// Singleton configuration rows edited out-of-band by operators. The
// coordinator re-reads AutoRecordConfig at the top of each consumer pass
// and CacheConfig on startup or explicit reload.

const SettingsSingletonID = 1

const TableNameAutoRecordConfig = "auto_record_config"

type AutoRecordConfig struct {
	ID      int  `gorm:"column:id;primaryKey" json:"id"`
	Enabled bool `gorm:"column:enabled;not null;default:false" json:"enabled"`

	// Empty sets mean "any".
	AllowedSources    StringList `gorm:"column:allowed_sources;type:jsonb" json:"allowed_sources"`
	AllowedDomains    StringList `gorm:"column:allowed_domains;type:jsonb" json:"allowed_domains"`
	CurrencyWhitelist StringList `gorm:"column:currency_whitelist;type:jsonb" json:"currency_whitelist"`

	// Applied only when an ML source is present on the result.
	MinConfidence  float64 `gorm:"column:min_confidence;not null;default:0" json:"min_confidence"`
	RequireInStock bool    `gorm:"column:require_in_stock;not null;default:false" json:"require_in_stock"`
}

func (*AutoRecordConfig) TableName() string {
	return TableNameAutoRecordConfig
}

// DefaultAutoRecordConfig is the row used when none has been persisted:
// recording disabled.
func DefaultAutoRecordConfig() *AutoRecordConfig {
	return &AutoRecordConfig{ID: SettingsSingletonID}
}

// CurrencyAllowed checks the whitelist, uppercasing both sides.
func (c *AutoRecordConfig) CurrencyAllowed(currency string) bool {
	if len(c.CurrencyWhitelist) == 0 {
		return true
	}
	upper := strings.ToUpper(currency)
	for _, allowed := range c.CurrencyWhitelist {
		if strings.ToUpper(allowed) == upper {
			return true
		}
	}
	return false
}

const TableNameCacheConfig = "cache_config"

// CacheConfig controls the read-through cache strategies. At most one
// active row.
type CacheConfig struct {
	ID      int  `gorm:"column:id;primaryKey" json:"id"`
	Enabled bool `gorm:"column:enabled;not null;default:true" json:"enabled"`

	DefaultTTLSeconds int `gorm:"column:default_ttl_seconds;not null;default:60" json:"default_ttl_seconds"`

	PendingJobsEnabled    bool `gorm:"column:pending_jobs_enabled;not null;default:true" json:"pending_jobs_enabled"`
	PendingJobsTTLSeconds int  `gorm:"column:pending_jobs_ttl_seconds;not null;default:0" json:"pending_jobs_ttl_seconds"`

	JobDetailEnabled    bool `gorm:"column:job_detail_enabled;not null;default:true" json:"job_detail_enabled"`
	JobDetailTTLSeconds int  `gorm:"column:job_detail_ttl_seconds;not null;default:0" json:"job_detail_ttl_seconds"`

	ProductURLEnabled    bool `gorm:"column:product_url_enabled;not null;default:true" json:"product_url_enabled"`
	ProductURLTTLSeconds int  `gorm:"column:product_url_ttl_seconds;not null;default:0" json:"product_url_ttl_seconds"`
}

func (*CacheConfig) TableName() string {
	return TableNameCacheConfig
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		ID:                 SettingsSingletonID,
		Enabled:            true,
		DefaultTTLSeconds:  60,
		PendingJobsEnabled: true,
		JobDetailEnabled:   true,
		ProductURLEnabled:  true,
	}
}

func (c *CacheConfig) ttlOrDefault(ttl int) int {
	if ttl > 0 {
		return ttl
	}
	if c.DefaultTTLSeconds > 0 {
		return c.DefaultTTLSeconds
	}
	return 60
}

func (c *CacheConfig) PendingJobsTTL() int {
	return c.ttlOrDefault(c.PendingJobsTTLSeconds)
}

func (c *CacheConfig) JobDetailTTL() int {
	return c.ttlOrDefault(c.JobDetailTTLSeconds)
}

func (c *CacheConfig) ProductURLTTL() int {
	return c.ttlOrDefault(c.ProductURLTTLSeconds)
}
