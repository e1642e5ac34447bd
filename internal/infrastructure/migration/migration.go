package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/floradex/billing/internal/shared/logger"
)

// Manager runs the selected Strategy with logging around it.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks gorm AutoMigrate when autoMigrate is set and the
// embedded goose scripts otherwise.
func NewManager(autoMigrate bool, log logger.Interface) *Manager {
	var strategy Strategy = NewGooseStrategy(log)
	if autoMigrate {
		strategy = NewAutoMigrateStrategy(log)
	}
	return NewManagerWithStrategy(strategy, log)
}

func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.Named("migration.manager"),
	}
}

func (m *Manager) Migrate(ctx context.Context, db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.Name())

	if err := m.strategy.Migrate(ctx, db); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.Name(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.Name(), err)
	}
	return nil
}

func (m *Manager) Strategy() Strategy {
	return m.strategy
}
