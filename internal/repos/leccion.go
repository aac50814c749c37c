package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/polyia/polyia-backend/internal/logger"
	"github.com/polyia/polyia-backend/internal/types"
)

type LeccionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, leccion *types.Leccion) error
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Leccion, error)
}

type leccionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeccionRepo(db *gorm.DB, baseLog *logger.Logger) LeccionRepo {
	return &leccionRepo{db: db, log: baseLog.With("repo", "LeccionRepo")}
}

func (lr *leccionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return lr.db
}

func (lr *leccionRepo) Create(ctx context.Context, tx *gorm.DB, leccion *types.Leccion) error {
	if leccion.ID == uuid.Nil {
		leccion.ID = uuid.New()
	}
	return lr.conn(tx).WithContext(ctx).Create(leccion).Error
}

// ListByUserID returns the user's lessons newest first.
func (lr *leccionRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Leccion, error) {
	var results []*types.Leccion
	if err := lr.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
