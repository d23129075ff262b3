package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type AdminRepo interface {
	Create(ctx context.Context, tx *gorm.DB, admin *types.Admin) (*types.Admin, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Admin, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Admin, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*types.Admin, error)
	GetByVerificationToken(ctx context.Context, tx *gorm.DB, token string) (*types.Admin, error)
	Save(ctx context.Context, tx *gorm.DB, admin *types.Admin) error
	MaxStaffSeq(ctx context.Context, tx *gorm.DB) (int64, error)
}

type adminRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdminRepo(db *gorm.DB, baseLog *logger.Logger) AdminRepo {
	return &adminRepo{db: db, log: baseLog.With("repo", "AdminRepo")}
}

func (ar *adminRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ar.db
}

func (ar *adminRepo) Create(ctx context.Context, tx *gorm.DB, admin *types.Admin) (*types.Admin, error) {
	if err := ar.conn(tx).WithContext(ctx).Create(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

func (ar *adminRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Admin, error) {
	var result types.Admin
	err := ar.conn(tx).WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *adminRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Admin, error) {
	var result types.Admin
	err := ar.conn(tx).WithContext(ctx).Where("email = ?", email).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *adminRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := ar.conn(tx).WithContext(ctx).
		Model(&types.Admin{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *adminRepo) GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*types.Admin, error) {
	var result types.Admin
	err := ar.conn(tx).WithContext(ctx).Where("reset_password_token = ?", token).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *adminRepo) GetByVerificationToken(ctx context.Context, tx *gorm.DB, token string) (*types.Admin, error) {
	var result types.Admin
	err := ar.conn(tx).WithContext(ctx).Where("verification_token = ?", token).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *adminRepo) Save(ctx context.Context, tx *gorm.DB, admin *types.Admin) error {
	return ar.conn(tx).WithContext(ctx).Save(admin).Error
}

func (ar *adminRepo) MaxStaffSeq(ctx context.Context, tx *gorm.DB) (int64, error) {
	return maxDisplaySeq(ctx, ar.conn(tx), "admins", "staff_id", "AD-")
}
