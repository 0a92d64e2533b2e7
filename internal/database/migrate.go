package database

import (
	"embed"
	"time"

	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations
var migrationFiles embed.FS

type MigrationStatus struct {
	ID        string
	Applied   bool
	AppliedAt *time.Time
}

// MigrateUp applies every pending migration and returns how many ran.
func (s *DB) MigrateUp() (int, error) {
	return s.migrate(migrate.Up, 0)
}

// MigrateDown rolls back at most steps migrations; zero rolls back one.
func (s *DB) MigrateDown(steps int) (int, error) {
	if steps <= 0 {
		steps = 1
	}
	return s.migrate(migrate.Down, steps)
}

func (s *DB) MigrationStatus() ([]MigrationStatus, error) {
	log := s.log.Function("MigrationStatus")

	sqlDB, err := s.SQL.DB()
	if err != nil {
		return nil, log.Err("failed to get database from GORM", err)
	}

	migrations, err := s.migrationSource().FindMigrations()
	if err != nil {
		return nil, log.Err("failed to load migrations", err)
	}

	records, err := migrate.GetMigrationRecords(sqlDB, string(s.Dialect))
	if err != nil {
		return nil, log.Err("failed to read applied migrations", err)
	}

	applied := make(map[string]time.Time, len(records))
	for _, record := range records {
		applied[record.Id] = record.AppliedAt
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, migration := range migrations {
		status := MigrationStatus{ID: migration.Id}
		if appliedAt, ok := applied[migration.Id]; ok {
			status.Applied = true
			status.AppliedAt = &appliedAt
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

func (s *DB) migrate(direction migrate.MigrationDirection, max int) (int, error) {
	log := s.log.Function("migrate")

	sqlDB, err := s.SQL.DB()
	if err != nil {
		return 0, log.Err("failed to get database from GORM", err)
	}

	count, err := migrate.ExecMax(sqlDB, string(s.Dialect), s.migrationSource(), direction, max)
	if err != nil {
		return count, log.Err("failed to run migrations", err, "dialect", s.Dialect)
	}

	log.Info("Applied migrations", "count", count, "dialect", s.Dialect)
	return count, nil
}

func (s *DB) migrationSource() *migrate.EmbedFileSystemMigrationSource {
	root := "migrations/sqlite"
	if s.Dialect == DialectPostgres {
		root = "migrations/postgres"
	}

	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       root,
	}
}
