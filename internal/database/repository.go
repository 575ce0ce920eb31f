package database

import (
	"github.com/robalyx/havenhelper/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	thanks *models.ThanksModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		thanks: models.NewThanks(db, logger),
	}
}

// Thanks returns the thanks ledger model.
func (r *Repository) Thanks() *models.ThanksModel {
	return r.thanks
}
