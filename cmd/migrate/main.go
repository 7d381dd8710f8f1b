package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	catalogapp "github.com/bizgrid/backend/internal/application/catalog"
	"github.com/bizgrid/backend/internal/domain/access"
	"github.com/bizgrid/backend/internal/infrastructure/auth"
	"github.com/bizgrid/backend/internal/infrastructure/config"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"github.com/bizgrid/backend/internal/infrastructure/migration"
	"github.com/bizgrid/backend/internal/infrastructure/persistence"
	"github.com/bizgrid/backend/internal/infrastructure/persistence/trusted"
	"github.com/bizgrid/backend/migrations"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
		configFile     string
		batchSize      int
	)
	flag.StringVar(&migrationsPath, "path", "", "Migrations directory (default: the migrations compiled into the binary)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&configFile, "config", "", "Configuration file (default: ./config.toml when present)")
	flag.IntVar(&batchSize, "batch-size", 0, "Rows per batch for backfill-governance (default: governance.backfill_batch_size)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeLayout: "2006-01-02 15:04:05",
		Service:    "bizgrid-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	var cfg *config.Config
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	log.Info("Migration CLI started", zap.String("command", command))

	switch command {
	case "up", "down", "step", "version", "force":
		if err := runSchema(cfg, migrationsPath, log, command, args[1:]); err != nil {
			log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
		}
	case "backfill-governance":
		if batchSize <= 0 {
			batchSize = cfg.Governance.BackfillBatchSize
		}
		if err := backfillGovernance(ctx, cfg, log, batchSize); err != nil {
			log.Fatal("Governance backfill failed", zap.Error(err))
		}
	case "grant-admin":
		if len(args) < 2 {
			log.Fatal("Principal id required. Usage: migrate grant-admin <principal-id>")
		}
		if err := grantAdmin(ctx, cfg, log, args[1]); err != nil {
			log.Fatal("Grant failed", zap.Error(err))
		}
	case "issue-token":
		if len(args) < 2 {
			log.Fatal("Principal id required. Usage: migrate issue-token <principal-id> [name]")
		}
		if cfg.App.Env == "production" {
			log.Fatal("issue-token is disabled in production")
		}
		name := ""
		if len(args) > 2 {
			name = args[2]
		}
		if err := issueToken(cfg, args[1], name); err != nil {
			log.Fatal("Token issue failed", zap.Error(err))
		}
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func runSchema(cfg *config.Config, path string, log *zap.Logger, command string, args []string) error {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	src := migration.Source{FS: migrations.FS}
	if path == "" {
		path = cfg.Database.MigrationsPath
	}
	if path != "" {
		src = migration.Source{Path: path}
	}
	m, err := migration.New(db, src, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _ = m.Close() }()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		if len(args) < 1 {
			return fmt.Errorf("step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)
	case "force":
		if len(args) < 1 {
			return fmt.Errorf("version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(version)
	default:
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	return persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      logger.GormLevel(cfg.Log.SQLLevel),
		SlowThreshold: cfg.Log.SlowSQLThreshold,
	})
}

// backfillGovernance auto-passes legacy imported master products that reference an
// active tax code
func backfillGovernance(ctx context.Context, cfg *config.Config, log *zap.Logger, batchSize int) error {
	database, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	db := database.DB
	governance := catalogapp.NewGovernanceService(
		persistence.NewGormMasterProductRepository(db),
		persistence.NewGormTaxCodeRepository(db),
		persistence.NewGormReviewAuditRepository(db),
		trusted.NewGovernanceRecorder(db, log, nil),
		log,
	)

	started := time.Now()
	result, err := governance.AutoPassLegacy(ctx, batchSize)
	if result != nil {
		log.Info("Governance backfill finished",
			zap.Int("scanned", result.Scanned),
			zap.Int("auto_passed", result.AutoPassed),
			zap.Int("left_pending", result.LeftPending),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
	return err
}

func grantAdmin(ctx context.Context, cfg *config.Config, log *zap.Logger, raw string) error {
	principalID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid principal id %q", raw)
	}
	database, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	grants := trusted.NewPlatformAdminGrants(database.DB, log, nil)
	if err := grants.Grant(access.WithPrincipal(ctx, access.System()), principalID); err != nil {
		return err
	}
	log.Info("Platform admin granted", zap.String("principal_id", principalID.String()))
	return nil
}

// issueToken prints a bearer token for local testing
func issueToken(cfg *config.Config, raw, name string) error {
	principalID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid principal id %q", raw)
	}
	token, err := auth.NewJWTService(cfg.JWT).Issue(principalID, name)
	if err != nil {
		return err
	}
	fmt.Println(token.AccessToken)
	return nil
}

func printUsage() {
	fmt.Println(`BizGrid database tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                         Apply all pending migrations
  down                       Roll back all migrations
  step <n>                   Apply n migrations (positive=up, negative=down)
  version                    Show current migration version
  force <version>            Force set migration version (clears a dirty state)
  backfill-governance        Auto-pass legacy imported master products with an active tax code
  grant-admin <principal>    Make a principal a platform admin
  issue-token <principal>    Print a bearer token (not available in production)

Flags:
  -path string          Migrations directory (default: compiled-in migrations)
  -config string        Configuration file (default: ./config.toml)
  -log-level string     Log level: debug, info, warn, error (default: info)
  -batch-size int       Rows per backfill batch

Environment Variables:
  BIZ_DATABASE_HOST, BIZ_DATABASE_PORT, BIZ_DATABASE_USER, BIZ_DATABASE_PASSWORD,
  BIZ_DATABASE_DBNAME, BIZ_DATABASE_SSLMODE, BIZ_JWT_SECRET`)
}
