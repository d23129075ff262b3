package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type ParentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, parent *types.Parent) (*types.Parent, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Parent, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Parent, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Parent, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	GetByLinkedSpecialistIDs(ctx context.Context, tx *gorm.DB, specialistIDs []uuid.UUID) ([]*types.Parent, error)
	Search(ctx context.Context, tx *gorm.DB, query string, excludeIDs []uuid.UUID, limit int) ([]*types.Parent, error)
	GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*types.Parent, error)
	GetByVerificationToken(ctx context.Context, tx *gorm.DB, token string) (*types.Parent, error)
	Save(ctx context.Context, tx *gorm.DB, parent *types.Parent) error
	SetLinkedSpecialist(ctx context.Context, tx *gorm.DB, parentID uuid.UUID, specialistID *uuid.UUID) error
	ClearLinkedSpecialist(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) error
	MaxStaffSeq(ctx context.Context, tx *gorm.DB) (int64, error)
}

type parentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewParentRepo(db *gorm.DB, baseLog *logger.Logger) ParentRepo {
	return &parentRepo{db: db, log: baseLog.With("repo", "ParentRepo")}
}

func (pr *parentRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return pr.db
}

func (pr *parentRepo) Create(ctx context.Context, tx *gorm.DB, parent *types.Parent) (*types.Parent, error) {
	if err := pr.conn(tx).WithContext(ctx).Create(parent).Error; err != nil {
		return nil, err
	}
	return parent, nil
}

func (pr *parentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Parent, error) {
	var result types.Parent
	err := pr.conn(tx).WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *parentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Parent, error) {
	var results []*types.Parent
	if len(ids) == 0 {
		return results, nil
	}
	if err := pr.conn(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *parentRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Parent, error) {
	var result types.Parent
	err := pr.conn(tx).WithContext(ctx).Where("email = ?", email).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *parentRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := pr.conn(tx).WithContext(ctx).
		Model(&types.Parent{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (pr *parentRepo) GetByLinkedSpecialistIDs(ctx context.Context, tx *gorm.DB, specialistIDs []uuid.UUID) ([]*types.Parent, error) {
	var results []*types.Parent
	if len(specialistIDs) == 0 {
		return results, nil
	}
	if err := pr.conn(tx).WithContext(ctx).
		Where("linked_specialist_id IN ?", specialistIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *parentRepo) Search(ctx context.Context, tx *gorm.DB, query string, excludeIDs []uuid.UUID, limit int) ([]*types.Parent, error) {
	var results []*types.Parent
	q := pr.conn(tx).WithContext(ctx).Model(&types.Parent{})
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *parentRepo) GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*types.Parent, error) {
	var result types.Parent
	err := pr.conn(tx).WithContext(ctx).Where("reset_password_token = ?", token).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *parentRepo) GetByVerificationToken(ctx context.Context, tx *gorm.DB, token string) (*types.Parent, error) {
	var result types.Parent
	err := pr.conn(tx).WithContext(ctx).Where("verification_token = ?", token).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *parentRepo) Save(ctx context.Context, tx *gorm.DB, parent *types.Parent) error {
	return pr.conn(tx).WithContext(ctx).Save(parent).Error
}

func (pr *parentRepo) SetLinkedSpecialist(ctx context.Context, tx *gorm.DB, parentID uuid.UUID, specialistID *uuid.UUID) error {
	return pr.conn(tx).WithContext(ctx).
		Model(&types.Parent{}).
		Where("id = ?", parentID).
		Update("linked_specialist_id", specialistID).Error
}

func (pr *parentRepo) ClearLinkedSpecialist(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) error {
	return pr.conn(tx).WithContext(ctx).
		Model(&types.Parent{}).
		Where("linked_specialist_id = ?", specialistID).
		Update("linked_specialist_id", nil).Error
}

func (pr *parentRepo) MaxStaffSeq(ctx context.Context, tx *gorm.DB) (int64, error) {
	return maxDisplaySeq(ctx, pr.conn(tx), "parents", "staff_id", "PT-")
}
