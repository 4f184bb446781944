package services

import (
	"fmt"

	"github.com/cardwall/core/internal/infrastructure/config"
	"github.com/cardwall/core/internal/infrastructure/database"
	"github.com/cardwall/core/internal/infrastructure/logger"
)

// SettingsService applies runtime changes to the database connection. The
// new parameters are written to the db-config file first, then the live
// connection is swapped; if the new connection cannot be established the
// previous one is restored so the application keeps working.
type SettingsService struct {
	manager    *database.Manager
	dbFilePath string
	logger     *logger.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(manager *database.Manager, dbFilePath string, logger *logger.Logger) *SettingsService {
	return &SettingsService{
		manager:    manager,
		dbFilePath: dbFilePath,
		logger:     logger,
	}
}

// CurrentDBConfig returns the connection parameters currently in effect,
// without the password.
func (s *SettingsService) CurrentDBConfig() config.DBFileConfig {
	cfg := s.manager.Config()
	return config.DBFileConfig{
		Host: cfg.Host,
		User: cfg.User,
		Port: cfg.Port,
		Name: cfg.Name,
	}
}

// UpdateDBConfig persists new connection parameters and reconnects. On a
// failed reconnect the previous connection is re-established and the error
// reported, leaving the service degraded but alive.
func (s *SettingsService) UpdateDBConfig(fileCfg *config.DBFileConfig) error {
	previous := s.manager.Config()

	if err := config.SaveDBFile(s.dbFilePath, fileCfg); err != nil {
		return fmt.Errorf("save db config: %w", err)
	}

	next := previous
	next.ApplyFileConfig(fileCfg)

	if err := s.manager.Reconnect(next); err != nil {
		s.logger.Errorw("Reconnect with new parameters failed, restoring previous connection",
			"host", fileCfg.Host, "port", fileCfg.Port, "error", err)
		if restoreErr := s.manager.Reconnect(previous); restoreErr != nil {
			s.logger.Errorw("Restoring previous connection failed", "error", restoreErr)
		}
		return fmt.Errorf("connect with new parameters: %w", err)
	}

	s.logger.Infow("Database connection updated", "host", next.Host, "port", next.Port, "name", next.Name)
	return nil
}
