package model

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

const TableNameCrawlResult = "crawl_result"

// MLPriceSource is the parsed_data source name produced by the
// ML-based extractor. Its confidence gates auto-recording.
const MLPriceSource = "html_ml"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidCurrency reports whether s is a three-letter uppercase currency code.
func ValidCurrency(s string) bool {
	return currencyPattern.MatchString(s)
}

// CrawlResult is the structured observation produced by one successful job
// submission. One-to-one with a job; only the history_record_* fields are
// ever mutated after creation.
type CrawlResult struct {
	ID    string `gorm:"column:id;primaryKey;size:64" json:"id"`
	JobID string `gorm:"column:job_id;size:64;not null;uniqueIndex:uq_crawl_result_job" json:"job_id"`

	Price    decimal.Decimal `gorm:"column:price;type:numeric(20,4);not null" json:"price"`
	Currency string          `gorm:"column:currency;size:3;not null" json:"currency"`
	Title    string          `gorm:"column:title;size:512" json:"title,omitempty"`
	InStock  bool            `gorm:"column:in_stock;not null;default:true" json:"in_stock"`

	ParsedData ExtType `gorm:"column:parsed_data;type:jsonb" json:"parsed_data,omitempty"`
	RawHTML    string  `gorm:"column:raw_html" json:"raw_html,omitempty"`

	CrawledAt time.Time `gorm:"column:crawled_at;not null" json:"crawled_at"`

	HistoryRecordStatus HistoryRecordStatus `gorm:"column:history_record_status;size:16;not null;default:'none'" json:"history_record_status"`
	HistoryRecordedAt   *time.Time          `gorm:"column:history_recorded_at" json:"history_recorded_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (*CrawlResult) TableName() string {
	return TableNameCrawlResult
}

// Validate enforces the construction invariants of a result.
func (r *CrawlResult) Validate() error {
	if r.JobID == "" {
		return fmt.Errorf("result job_id is required")
	}
	if r.Price.IsNegative() {
		return fmt.Errorf("price must be >= 0, got %s", r.Price)
	}
	if !ValidCurrency(r.Currency) {
		return fmt.Errorf("currency must be three uppercase letters, got %q", r.Currency)
	}
	return nil
}

// PriceSources returns the parsed_data price_sources list.
func (r *CrawlResult) PriceSources() []string {
	if r.ParsedData == nil {
		return nil
	}
	return r.ParsedData.GetStringSlice("price_sources")
}

// MLConfidence returns the ML extractor confidence when parsed_data carries
// one; ok is false otherwise.
func (r *CrawlResult) MLConfidence() (float64, bool) {
	if r.ParsedData == nil {
		return 0, false
	}
	return r.ParsedData.GetFloatPath("price_extraction", "extract_price_from_html_ml", "confidence")
}
