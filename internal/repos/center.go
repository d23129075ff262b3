package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type CenterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, center *types.Center) (*types.Center, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Center, error)
	Save(ctx context.Context, tx *gorm.DB, center *types.Center) error
}

type centerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCenterRepo(db *gorm.DB, baseLog *logger.Logger) CenterRepo {
	return &centerRepo{db: db, log: baseLog.With("repo", "CenterRepo")}
}

func (cr *centerRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

func (cr *centerRepo) Create(ctx context.Context, tx *gorm.DB, center *types.Center) (*types.Center, error) {
	if err := cr.conn(tx).WithContext(ctx).Create(center).Error; err != nil {
		return nil, err
	}
	return center, nil
}

func (cr *centerRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Center, error) {
	var result types.Center
	err := cr.conn(tx).WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *centerRepo) Save(ctx context.Context, tx *gorm.DB, center *types.Center) error {
	return cr.conn(tx).WithContext(ctx).Save(center).Error
}
