package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/tenant"
	"github.com/bizgrid/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database is the tenant-guarded postgres handle shared by the repositories
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// Options tune how the connection is opened
type Options struct {
	Logger        *zap.Logger
	LogLevel      gormlogger.LogLevel
	SlowThreshold time.Duration
	Tracing       telemetry.DBTracingConfig
}

// NewDatabase connects to postgres, sizes the pool from cfg and verifies the
// connection before returning.
func NewDatabase(cfg *config.DatabaseConfig, opts Options) (*Database, error) {
	db, err := Open(postgres.Open(cfg.DSN()), opts)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Database{DB: db, sql: sqlDB}, nil
}

// Open opens a gorm handle on dialector and installs the isolation callbacks.
// Every statement issued through the handle needs a principal in its context.
func Open(dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(log, logger.GormOptions{Level: opts.LogLevel, SlowThreshold: opts.SlowThreshold}),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}
	if err := Configure(db, log, opts.Tracing); err != nil {
		return nil, err
	}
	return db, nil
}

// Configure installs the isolation callbacks and the tracing plugin on an open handle
func Configure(db *gorm.DB, log *zap.Logger, tracing telemetry.DBTracingConfig) error {
	if err := tenant.Register(db, log); err != nil {
		return fmt.Errorf("register tenant guard: %w", err)
	}
	if err := telemetry.RegisterDBTracing(db, tracing, log); err != nil {
		return fmt.Errorf("register database tracing: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.sql.Close()
}

// Ping backs the readiness probe
func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// ObservePool exports the connection pool state as gauges read at each collection.
// Waits show up when finalizations queue behind row locks and exhaust the pool.
func (d *Database) ObservePool(meter metric.Meter) error {
	open, err := meter.Int64ObservableGauge("bizgrid_db_connections_open", metric.WithDescription("Open connections in the pool"))
	if err != nil {
		return err
	}
	inUse, err := meter.Int64ObservableGauge("bizgrid_db_connections_in_use", metric.WithDescription("Connections checked out of the pool"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("bizgrid_db_connection_waits_total", metric.WithDescription("Checkouts that had to wait for a free connection"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := d.sql.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, waits)
	return err
}
