package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/polyia/polyia-backend/internal/logger"
	"github.com/polyia/polyia-backend/internal/types"
)

type MensajeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, mensaje *types.Mensaje) error
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Mensaje, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type mensajeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMensajeRepo(db *gorm.DB, baseLog *logger.Logger) MensajeRepo {
	return &mensajeRepo{db: db, log: baseLog.With("repo", "MensajeRepo")}
}

func (mr *mensajeRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return mr.db
}

func (mr *mensajeRepo) Create(ctx context.Context, tx *gorm.DB, mensaje *types.Mensaje) error {
	if mensaje.ID == uuid.Nil {
		mensaje.ID = uuid.New()
	}
	return mr.conn(tx).WithContext(ctx).Create(mensaje).Error
}

func (mr *mensajeRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Mensaje, error) {
	var results []*types.Mensaje
	if err := mr.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *mensajeRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	if err := mr.conn(tx).WithContext(ctx).
		Model(&types.Mensaje{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
