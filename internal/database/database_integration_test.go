package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"clinic/config"
	"clinic/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMemoryDB(t *testing.T) *DB {
	t.Helper()

	db := &DB{log: logger.New("test")}
	target, err := ParseDatabaseURL("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, db.initializeSQLiteDB(&gorm.Config{NowFunc: Now}, target))

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_InMemoryWithoutCache(t *testing.T) {
	testConfig := config.Config{DatabaseURL: "sqlite://:memory:"}

	db, err := New(testConfig)
	require.NoError(t, err)
	defer db.Close()

	assert.NotNil(t, db.SQL)
	assert.Nil(t, db.Cache.Events)
	assert.Equal(t, DialectSQLite, db.Dialect)
}

func TestNew_CacheUnavailable(t *testing.T) {
	testConfig := config.Config{
		DatabaseURL:          "sqlite://:memory:",
		DatabaseCacheAddress: "127.0.0.1",
		DatabaseCachePort:    1,
	}

	// Should fail at the cache after the SQL setup succeeded
	_, err := New(testConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize cache database")
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(config.Config{DatabaseURL: "mysql://root@localhost/clinic"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database scheme")
}

func TestInitializeSQLiteDB_Success(t *testing.T) {
	db := &DB{log: logger.New("test")}

	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	target, err := ParseDatabaseURL("sqlite:///" + dbPath)
	require.NoError(t, err)

	err = db.initializeSQLiteDB(&gorm.Config{}, target)
	assert.NoError(t, err)
	assert.NotNil(t, db.SQL)

	// Verify database file was created
	assert.FileExists(t, dbPath)

	assert.NoError(t, db.Close())
}

func TestInitializeSQLiteDB_EmptyPath(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializeSQLiteDB(&gorm.Config{}, Target{Dialect: DialectSQLite})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database path is empty")
}

func TestInitializeSQLiteDB_InMemory(t *testing.T) {
	db := newMemoryDB(t)

	sqlDB, err := db.SQL.DB()
	assert.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestInitializeSQLiteDB_ForeignKeysEnabled(t *testing.T) {
	db := newMemoryDB(t)

	var enabled int
	require.NoError(t, db.SQL.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestInitializeDB_ConfigurationCheck(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializeDB(config.Config{DatabaseURL: ":memory:"})
	assert.NoError(t, err)
	assert.NotNil(t, db.SQL)

	assert.NoError(t, db.Close())
}

func TestClose_WithNilSQL(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
		SQL: nil,
	}

	// Should not panic with nil SQL
	err := db.Close()
	assert.NoError(t, err)
}

func TestSQLWithContext(t *testing.T) {
	db := newMemoryDB(t)

	ctx := context.Background()
	gormDB := db.SQLWithContext(ctx)

	assert.NotNil(t, gormDB)
	assert.NotEqual(t, db.SQL, gormDB) // Should be different instance with context
}

func TestTXDefer_Success(t *testing.T) {
	db := newMemoryDB(t)

	err := db.SQL.Exec("CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT)").Error
	require.NoError(t, err)

	tx := db.SQL.Begin()
	assert.NoError(t, tx.Error)

	err = tx.Exec("INSERT INTO test_table (name) VALUES (?)", "test").Error
	assert.NoError(t, err)

	TXDefer(tx, db.log)

	// Verify data was committed
	var count int64
	err = db.SQL.Table("test_table").Count(&count).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTXDefer_WithTransactionError(t *testing.T) {
	db := newMemoryDB(t)

	err := db.SQL.Exec("CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT)").Error
	require.NoError(t, err)

	tx := db.SQL.Begin()
	assert.NoError(t, tx.Error)

	err = tx.Exec("INSERT INTO test_table (name) VALUES (?)", "test").Error
	assert.NoError(t, err)

	// Force an error on the transaction
	tx.Error = fmt.Errorf("simulated transaction error")

	TXDefer(tx, db.log)

	var count int64
	err = db.SQL.Table("test_table").Count(&count).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestInitializeCacheDB_MissingConfig(t *testing.T) {
	db := &DB{log: logger.New("test")}

	err := db.initializeCacheDB(config.Config{
		DatabaseCacheAddress: "",
		DatabaseCachePort:    6379,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "address or port is empty")

	err = db.initializeCacheDB(config.Config{
		DatabaseCacheAddress: "localhost",
		DatabaseCachePort:    0,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "address or port is empty")
}

func TestMigrations_UpStatusDown(t *testing.T) {
	db := newMemoryDB(t)
	db.Dialect = DialectSQLite

	applied, err := db.MigrateUp()
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	for _, table := range []string{
		"users",
		"appointments",
		"messages",
		"medical_records",
		"prescriptions",
		"billing_records",
	} {
		assert.True(t, db.SQL.Migrator().HasTable(table), table)
	}

	// idempotent
	applied, err = db.MigrateUp()
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	statuses, err := db.MigrationStatus()
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, status := range statuses {
		assert.True(t, status.Applied, status.ID)
		require.NotNil(t, status.AppliedAt)
		assert.WithinDuration(t, time.Now(), *status.AppliedAt, time.Minute)
	}

	rolledBack, err := db.MigrateDown(0)
	require.NoError(t, err)
	assert.Equal(t, 1, rolledBack)
	assert.False(t, db.SQL.Migrator().HasTable("appointments"))
	assert.True(t, db.SQL.Migrator().HasTable("users"))

	statuses, err = db.MigrationStatus()
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied)
	assert.False(t, statuses[1].Applied)
	assert.Nil(t, statuses[1].AppliedAt)
}

func TestNow_IsUTCMicroseconds(t *testing.T) {
	now := Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.Zero(t, now.Nanosecond()%1000)
}
