package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductURL and Domain are owned by the surrounding platform. The
// coordinator only reads them, keyed by hash / id.

const TableNameProductURL = "product_url"

type ProductURL struct {
	URLHash       string `gorm:"column:url_hash;primaryKey;size:64" json:"url_hash"`
	NormalizedURL string `gorm:"column:normalized_url;size:2048;not null" json:"normalized_url"`
	DomainID      string `gorm:"column:domain_id;size:64;not null;index" json:"domain_id"`
}

func (*ProductURL) TableName() string {
	return TableNameProductURL
}

const TableNameDomain = "domain"

type Domain struct {
	ID   string `gorm:"column:id;primaryKey;size:64" json:"id"`
	Name string `gorm:"column:name;size:255;not null;uniqueIndex" json:"name"`
}

func (*Domain) TableName() string {
	return TableNameDomain
}

const TableNameBotConfig = "bot_config"

// BotConfig resolves a bot credential pair. Token comparison is opaque
// byte equality, nothing cryptographic.
type BotConfig struct {
	BotID          string    `gorm:"column:bot_id;primaryKey;size:100" json:"bot_id"`
	APIToken       string    `gorm:"column:api_token;size:255;not null" json:"-"`
	Enabled        bool      `gorm:"column:enabled;not null;default:true" json:"enabled"`
	MaxJobsPerPull int       `gorm:"column:max_jobs_per_pull;not null;default:10" json:"max_jobs_per_pull"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (*BotConfig) TableName() string {
	return TableNameBotConfig
}

const TableNamePriceHistory = "price_history"

// PriceSourceAuto marks history entries appended by the auto-record
// pipeline.
const PriceSourceAuto = "auto"

// PriceHistory is the external shared price log. The coordinator appends
// to it but does not own it.
type PriceHistory struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	URLHash string `gorm:"column:url_hash;size:64;not null;index:idx_price_history_url,priority:1" json:"url_hash"`
	// numeric scale normalization means a stored "1290000" reads back as
	// "1290000.0000"; keep the value as a decimal so comparisons ignore scale
	PriceValue decimal.Decimal `gorm:"column:price;type:numeric(20,4);not null" json:"price"`
	Currency   string          `gorm:"column:currency;size:3;not null" json:"currency"`
	InStock    bool            `gorm:"column:in_stock;not null;default:true" json:"in_stock"`
	Source     string          `gorm:"column:source;size:32;not null" json:"source"`
	RecordedAt time.Time       `gorm:"column:recorded_at;not null;index:idx_price_history_url,priority:2,sort:desc" json:"recorded_at"`
}

func (*PriceHistory) TableName() string {
	return TableNamePriceHistory
}
