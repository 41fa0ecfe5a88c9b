package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"social_moderation/internal/pkg/config"

	_ "github.com/jackc/pgx/v5/stdlib" // 注册 pgx database/sql 驱动，供 sqlx 使用
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresDSN 拼接 key=value 形式的 DSN
func PostgresDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone)
}

// MigrateURL golang-migrate 使用的 URL 形式
func MigrateURL(cfg config.DatabaseConfig) string {
	if cfg.Driver == "sqlite" {
		return "sqlite3://" + cfg.Path
	}
	return "postgres://" + cfg.User + ":" + cfg.Password + "@" + cfg.Host + ":" + cfg.Port + "/" + cfg.DBName + "?sslmode=" + cfg.SSLMode
}

// InitDatabase 初始化数据库连接
// postgres 用于部署，sqlite 用于本地开发
func InitDatabase(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		dialector = sqlite.Open(cfg.Path)
	default:
		dialector = postgres.Open(PostgresDSN(cfg))
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	// 配置 GORM
	gormConfig := &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true, // 预编译 SQL 缓存
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// 获取底层 SQL DB 对象以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}

	configureConnectionPool(sqlDB, cfg.Driver)
	return db, nil
}

// InitReadModel 为统计查询打开 sqlx 连接
// postgres 走 pgx 驱动；sqlite 复用 gorm 底层连接
func InitReadModel(cfg config.DatabaseConfig, gdb *gorm.DB) (*sqlx.DB, error) {
	if cfg.Driver == "sqlite" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		return sqlx.NewDb(sqlDB, "sqlite3"), nil
	}

	db, err := sqlx.Open("pgx", PostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open read model: %w", err)
	}
	configureConnectionPool(db.DB, cfg.Driver)
	return db, nil
}

// configureConnectionPool 配置数据库连接池
func configureConnectionPool(sqlDB *sql.DB, driver string) {
	if driver == "sqlite" {
		// sqlite 单写者
		sqlDB.SetMaxOpenConns(1)
		return
	}

	// 设置连接池中的最大连接数
	sqlDB.SetMaxOpenConns(50)

	// 设置连接池中的最大空闲连接数
	sqlDB.SetMaxIdleConns(5)

	// 设置连接的最大生命周期
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 设置连接的最大空闲时间
	sqlDB.SetConnMaxIdleTime(time.Minute * 30)
}
