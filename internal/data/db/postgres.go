package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/pathforge-backend/internal/platform/envutil"
	"github.com/yungbote/pathforge-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open connects using DB_DRIVER and prepares the schema.
func Open(logg *logger.Logger) (*Service, error) {
	switch driver := envutil.String("DB_DRIVER", DriverPostgres); driver {
	case DriverPostgres:
		return NewPostgresService(logg)
	case DriverSQLite:
		return NewSQLiteService(logg, envutil.String("SQLITE_PATH", "pathforge.db"))
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

func NewPostgresService(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "PostgresService")

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		envutil.String("POSTGRES_USER", "postgres"),
		envutil.String("POSTGRES_PASSWORD", "postgres"),
		envutil.String("POSTGRES_HOST", "localhost"),
		envutil.String("POSTGRES_PORT", "5432"),
		envutil.String("POSTGRES_NAME", "pathforge"),
		envutil.String("POSTGRES_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(logg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	for _, ext := range []string{`"uuid-ossp"`, "vector"} {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS " + ext + ";").Error; err != nil {
			return nil, fmt.Errorf("failed to enable %s extension: %w", ext, err)
		}
	}
	if err := AutoMigrateAll(db); err != nil {
		return nil, err
	}
	serviceLog.Info("postgres ready", "host", envutil.String("POSTGRES_HOST", "localhost"))
	return &Service{db: db, driver: DriverPostgres, log: serviceLog}, nil
}

// NewSQLiteService opens a file (or ":memory:") database. Vectors are stored
// as text and ranked in process by the retrieval engine.
func NewSQLiteService(logg *logger.Logger, path string) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")
	db, err := gorm.Open(sqlite.Open(path), gormConfig(logg))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection serializes units of work.
	sqlDB.SetMaxOpenConns(1)
	if err := AutoMigrateAll(db); err != nil {
		return nil, err
	}
	serviceLog.Info("sqlite ready", "path", path)
	return &Service{db: db, driver: DriverSQLite, log: serviceLog}, nil
}

func gormConfig(logg *logger.Logger) *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(
			zap.NewStdLog(logg.SugaredLogger.Desugar()),
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}
