// Package db stores rendered configs in MySQL.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"meshconf/pkg/model"
	"meshconf/pkg/store"
)

const batchSize = 100

// Sink upserts each run's outputs into the rendered_configs table.
type Sink struct {
	db  *gorm.DB
	sep string
}

// Open connects to MySQL, creating the database if it does not exist yet,
// and runs migrations.
func Open(dsn, sep string) (*Sink, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	db, err := gorm.Open(mysql.Open(dsn), cfg)
	if err != nil {
		if !strings.Contains(err.Error(), "Unknown database") {
			return nil, err
		}
		if cerr := createDatabase(dsn); cerr != nil {
			return nil, fmt.Errorf("create database failed: %w", cerr)
		}
		db, err = gorm.Open(mysql.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	return NewSink(db, sep)
}

// NewSink wraps an open gorm handle.
func NewSink(db *gorm.DB, sep string) (*Sink, error) {
	if err := db.AutoMigrate(&model.RenderedConfig{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if sep == "" {
		sep = store.DefaultSeparator
	}
	return &Sink{db: db, sep: sep}, nil
}

// Write upserts the whole batch in a single transaction.
func (s *Sink) Write(ctx context.Context, outputs []model.Output) error {
	if len(outputs) == 0 {
		return nil
	}
	rows := Rows(outputs, s.sep, time.Now().UTC())
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, batchSize).Error
	})
}

// Close releases the underlying connection pool.
func (s *Sink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Rows converts outputs into table rows stamped with now.
func Rows(outputs []model.Output, sep string, now time.Time) []model.RenderedConfig {
	rows := make([]model.RenderedConfig, 0, len(outputs))
	for _, o := range outputs {
		rows = append(rows, model.RenderedConfig{
			Name:      o.Name(sep),
			Node:      o.Node,
			Peer:      o.Peer,
			Content:   o.Text,
			Digest:    o.Digest(),
			UpdatedAt: now,
		})
	}
	return rows
}

func createDatabase(dsn string) error {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return err
	}
	dbname := cfg.DBName
	if dbname == "" {
		return fmt.Errorf("dsn names no database")
	}
	cfg.DBName = ""
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` DEFAULT CHARACTER SET utf8mb4", dbname))
	return err
}
