package sql

import (
	"fmt"
	"sync"
	"time"

	"github.com/minhNhat-ctrl/crawl-coordinator/pkg/logger/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	dbKeyDefault = "default"
)

var (
	connPools    = map[string]*gorm.DB{}
	connPoolLock = &sync.RWMutex{}
)

var (
	errInvalidConfig = fmt.Errorf("config invalid")
)

type DatabaseConfig struct {
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	UserName    string `json:"user_name" yaml:"user_name"`
	Password    string `json:"password" yaml:"password"`
	DBName      string `json:"db_name" yaml:"db_name"`
	LogMode     bool   `json:"log_mode" yaml:"log_mode"`
	MaxIdleConn int    `json:"max_idle_conn" yaml:"max_idle_conn"`
	MaxOpenConn int    `json:"max_open_conn" yaml:"max_open_conn"`
	SSLMode     string `json:"ssl_mode" yaml:"ssl_mode"`
	TimeZone    string `json:"time_zone" yaml:"time_zone"`
}

func (d DatabaseConfig) Validate() error {
	if d.Host == "" || d.Port == 0 || d.DBName == "" {
		return errInvalidConfig
	}
	return nil
}

func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	timeZone := d.TimeZone
	if timeZone == "" {
		timeZone = "UTC"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host, d.Port, d.UserName, d.Password, d.DBName, sslMode, timeZone)
}

type opts func(db *gorm.DB)

func InitDefault(conf DatabaseConfig, opts ...opts) (*gorm.DB, error) {
	return InitGormDB(dbKeyDefault, conf, opts...)
}

func InitGormDB(key string, conf DatabaseConfig, opts ...opts) (*gorm.DB, error) {
	if gormDB := GetDB(key); gormDB != nil {
		return gormDB, nil
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	gormLogger := logger.Default.LogMode(logger.Silent)
	if conf.LogMode {
		gormLogger = logger.Default.LogMode(logger.Info)
	}
	gormDB, err := gorm.Open(postgres.Open(conf.DSN()), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// Pool lifetimes keep connections fresh across master failover.
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if conf.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConn)
	} else {
		sqlDB.SetMaxIdleConns(10)
	}

	if conf.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpenConn)
	} else {
		sqlDB.SetMaxOpenConns(40)
	}

	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	log.Infof("Configured connection pool for '%s': MaxIdleConn=%d, MaxOpenConn=%d, ConnMaxLifetime=5m, ConnMaxIdleTime=2m",
		key, conf.MaxIdleConn, conf.MaxOpenConn)

	for _, opt := range opts {
		opt(gormDB)
	}
	connPoolLock.Lock()
	defer connPoolLock.Unlock()
	connPools[key] = gormDB
	return gormDB, nil
}

func GetDB(key string) *gorm.DB {
	connPoolLock.RLock()
	defer connPoolLock.RUnlock()

	if db, ok := connPools[key]; ok {
		return db
	}
	return nil
}

func GetDefaultDB() *gorm.DB {
	return GetDB(dbKeyDefault)
}

// SetDefaultDB installs a database handle directly, bypassing InitDefault.
// Used by tests.
func SetDefaultDB(db *gorm.DB) {
	connPoolLock.Lock()
	defer connPoolLock.Unlock()
	connPools[dbKeyDefault] = db
}
