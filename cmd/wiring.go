package cmd

import (
	"fmt"
	"time"

	"datadiff/core/config"
	"datadiff/core/database"
	"datadiff/core/logger"
	"datadiff/core/storage"
	"datadiff/feature/compare"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// environment is the configuration and logger shared by every command.
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadEnvironment() (*environment, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &environment{cfg: cfg, logger: l}, nil
}

// connectDatabase opens the SQL connection. When required is false a failure is
// logged and a nil connection returned.
func (e *environment) connectDatabase(required bool) (*gorm.DB, error) {
	db, err := database.Connect(e.cfg.Database)
	if err != nil {
		if required {
			return nil, fmt.Errorf("database connection required: %w", err)
		}
		e.logger.Warn("Optional database connection failed", zap.Error(err))
		return nil, nil
	}
	e.logger.Debug("Connected to database", zap.String("driver", e.cfg.Database.Driver))
	return db, nil
}

// serviceOptions builds the compare service options from configuration.
func (e *environment) serviceOptions(db *gorm.DB) (compare.Options, error) {
	store, err := storage.NewClient(e.cfg.Storage)
	if err != nil {
		return compare.Options{}, fmt.Errorf("failed to create storage client: %w", err)
	}

	c := e.cfg.Compare
	return compare.Options{
		Storage:      store,
		Bucket:       e.cfg.Storage.Bucket,
		Region:       e.cfg.Storage.Region,
		ReportPrefix: c.ReportPrefix,
		DB:           db,
		SinkTable:    c.SinkTable,
		PostgresDSN:  e.cfg.Postgres.DSN,
		CacheTTL:     time.Duration(c.CacheTTLSeconds) * time.Second,
		Workers:      c.Workers,
		LabelA:       c.LabelA,
		LabelB:       c.LabelB,
		Logger:       e.logger,
	}, nil
}

// needsDatabase reports whether any request reads a SQL table or writes to the database sink.
func needsDatabase(reqs ...compare.Request) bool {
	for _, req := range reqs {
		for _, raw := range []string{req.A, req.B} {
			if d, err := compare.ParseDescriptor(raw); err == nil && d.Scheme == compare.SchemeDatabase {
				return true
			}
		}
		for _, sink := range req.Sinks {
			if sink == compare.SinkDatabase {
				return true
			}
		}
	}
	return false
}
