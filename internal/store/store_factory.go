package store

import (
	"database/sql"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"notifysync/internal/config"
	"notifysync/internal/db"
	"notifysync/internal/repository"
	"notifysync/internal/store/memory"
	"notifysync/internal/store/mysql"
)

func NewStore(cfg *config.Config, logger *zap.Logger) (repository.AlertRepository, error) {
	if cfg.MySQLDSN == "" {
		logger.Info("MYSQL_DSN not set, keeping alert history in memory")
		return memory.New(logger), nil
	}
	dsn, err := normalizeDSN(cfg.MySQLDSN)
	if err != nil {
		logger.Error("mysql dsn invalid", zap.Error(err))
		return nil, err
	}
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		logger.Error("mysql open failed", zap.Error(err))
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Error("mysql ping failed", zap.Error(err))
		return nil, err
	}
	queries := db.New(sqlDB)
	return mysql.New(queries, logger), nil
}

// normalizeDSN forces DATETIME columns to scan into time.Time in UTC,
// whatever the operator put in MYSQL_DSN.
func normalizeDSN(dsn string) (string, error) {
	parsed, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	parsed.ParseTime = true
	parsed.Loc = time.UTC
	return parsed.FormatDSN(), nil
}
