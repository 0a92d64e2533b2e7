package initialize

import (
	"clinic/config"
	"clinic/internal/database"
	"clinic/internal/logger"
)

func InitializeTables(db database.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Applying pending migrations")

	applied, err := db.MigrateUp()
	if err != nil {
		return log.Err("failed to apply migrations", err)
	}

	log.Info("Table initialization complete", "applied", applied)
	return nil
}
