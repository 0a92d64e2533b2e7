package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"clinic/config"
	logg "clinic/internal/logger"

	"github.com/valkey-io/valkey-go"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type CacheClient valkey.Client

type Cache struct {
	Events CacheClient
}

type DB struct {
	SQL     *gorm.DB
	Cache   Cache
	Dialect Dialect
	log     logg.Logger
}

func New(config config.Config) (DB, error) {
	log := logg.New("database").Function("New")

	log.Info("Initializing database")
	db := &DB{log: log}

	err := db.initializeDB(config)
	if err != nil {
		return DB{}, log.Err("failed to initialize database", err)
	}

	if config.CacheEnabled() {
		err = db.initializeCacheDB(config)
		if err != nil {
			_ = db.Close()
			return DB{}, log.Err("failed to initialize cache database", err)
		}
	}

	return *db, nil
}

// Now is the store clock. Microsecond precision in UTC survives a round trip
// through both sqlite and postgres unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func TXDefer(tx *gorm.DB, log logg.Logger) {
	if tx.Error != nil {
		log.Er("failed to commit transaction", tx.Error)
		tx.Rollback()
	} else {
		err := tx.Commit().Error
		if err != nil {
			log.Er("failed to commit transaction", err)
		} else {
			log.Info("committed transaction")
		}
	}
}

func (s *DB) initializeDB(config config.Config) error {
	log := s.log.Function("initializeDB")

	target, err := ParseDatabaseURL(config.DatabaseURL)
	if err != nil {
		return log.Err("failed to parse database url", err)
	}

	gormLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug),
		logger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogLevel(config),
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	gormConfig := &gorm.Config{
		Logger:                                   gormLogger,
		NowFunc:                                  Now,
		DisableForeignKeyConstraintWhenMigrating: false,
		CreateBatchSize:                          100,
	}

	switch target.Dialect {
	case DialectPostgres:
		return s.initializePostgresDB(gormConfig, target)
	default:
		return s.initializeSQLiteDB(gormConfig, target)
	}
}

func (s *DB) initializeSQLiteDB(gormConfig *gorm.Config, target Target) error {
	log := s.log.Function("initializeSQLiteDB")

	dbPath := target.Path
	if dbPath == "" {
		return log.Error("database path is empty", "dbPath", dbPath)
	}

	if !target.InMemory() {
		dir := filepath.Dir(dbPath)
		log.Info("Creating database directory", "dir", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return log.Err("failed to create database directory", err, "dir", dir)
		}
	}

	log.Info("Connecting with GORM", "dbPath", dbPath)
	db, err := gorm.Open(sqlite.Open(target.DSN), gormConfig)
	if err != nil {
		return log.Err("failed to open database with GORM", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return log.Err("failed to ping database through GORM", err)
	}

	log.Info("Successfully connected with GORM")
	// sqlite serializes writers itself; a single connection also keeps an
	// in-memory database alive for the life of the pool.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	s.SQL = db
	s.Dialect = DialectSQLite

	return nil
}

func (s *DB) initializePostgresDB(gormConfig *gorm.Config, target Target) error {
	log := s.log.Function("initializePostgresDB")

	gormConfig.PrepareStmt = true

	log.Info("Connecting with GORM", "host", target.Host)
	db, err := gorm.Open(postgres.Open(target.DSN), gormConfig)
	if err != nil {
		return log.Err("failed to open database with GORM", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return log.Err("failed to ping database through GORM", err)
	}

	log.Info("Successfully connected with GORM")
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s.SQL = db
	s.Dialect = DialectPostgres

	return nil
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")

	if config.DatabaseCacheAddress == "" || config.DatabaseCachePort == 0 {
		return log.Error(
			"cache address or port is empty",
			"address", config.DatabaseCacheAddress,
			"port", config.DatabaseCachePort,
		)
	}

	address := fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort)
	log.Info("Connecting to valkey", "address", address)

	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{address}})
	if err != nil {
		return log.Err("failed to connect to valkey", err, "address", address)
	}

	s.Cache.Events = client
	return nil
}

func (s *DB) Close() (err error) {
	if s.SQL != nil {
		sqlDB, dbErr := s.SQL.DB()
		if dbErr == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				err = s.log.Err("failed to close database", closeErr)
			}
		}
	}

	if s.Cache.Events != nil {
		s.Cache.Events.Close()
	}

	return err
}

func (s *DB) SQLWithContext(ctx context.Context) *gorm.DB {
	return s.SQL.WithContext(ctx)
}

func gormLogLevel(config config.Config) logger.LogLevel {
	if logg.ParseLevel(config.LogLevel) <= slog.LevelDebug {
		return logger.Info
	}
	return logger.Warn
}
