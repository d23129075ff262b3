package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type SpecialistRepo interface {
	Create(ctx context.Context, tx *gorm.DB, specialist *types.Specialist) (*types.Specialist, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Specialist, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Specialist, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	GetByCenterID(ctx context.Context, tx *gorm.DB, centerID uuid.UUID) ([]*types.Specialist, error)
	CountByCenterID(ctx context.Context, tx *gorm.DB, centerID uuid.UUID) (int64, error)
	RecentByCenterID(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, limit int) ([]*types.Specialist, error)
	GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*types.Specialist, error)
	GetByVerificationToken(ctx context.Context, tx *gorm.DB, token string) (*types.Specialist, error)
	Save(ctx context.Context, tx *gorm.DB, specialist *types.Specialist) error
	SetCenter(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID, centerID *uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) error

	// linkedParents set operations (specialist_parent_links).
	AddLinkedParent(ctx context.Context, tx *gorm.DB, specialistID, parentID uuid.UUID) error
	RemoveLinkedParent(ctx context.Context, tx *gorm.DB, specialistID, parentID uuid.UUID) error
	LinkedParentIDs(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) ([]uuid.UUID, error)
	LinkedParentIDsForSpecialists(ctx context.Context, tx *gorm.DB, specialistIDs []uuid.UUID) ([]uuid.UUID, error)
	HasLinkedParent(ctx context.Context, tx *gorm.DB, specialistID, parentID uuid.UUID) (bool, error)
	RemoveAllLinks(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) error

	MaxStaffSeq(ctx context.Context, tx *gorm.DB) (int64, error)
}

type specialistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSpecialistRepo(db *gorm.DB, baseLog *logger.Logger) SpecialistRepo {
	return &specialistRepo{db: db, log: baseLog.With("repo", "SpecialistRepo")}
}

func (sr *specialistRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return sr.db
}

func (sr *specialistRepo) Create(ctx context.Context, tx *gorm.DB, specialist *types.Specialist) (*types.Specialist, error) {
	if err := sr.conn(tx).WithContext(ctx).Create(specialist).Error; err != nil {
		return nil, err
	}
	return specialist, nil
}

func (sr *specialistRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Specialist, error) {
	var result types.Specialist
	err := sr.conn(tx).WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *specialistRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Specialist, error) {
	var result types.Specialist
	err := sr.conn(tx).WithContext(ctx).Where("email = ?", email).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *specialistRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := sr.conn(tx).WithContext(ctx).
		Model(&types.Specialist{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (sr *specialistRepo) GetByCenterID(ctx context.Context, tx *gorm.DB, centerID uuid.UUID) ([]*types.Specialist, error) {
	var results []*types.Specialist
	if err := sr.conn(tx).WithContext(ctx).
		Where("center_id = ?", centerID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *specialistRepo) CountByCenterID(ctx context.Context, tx *gorm.DB, centerID uuid.UUID) (int64, error) {
	var count int64
	if err := sr.conn(tx).WithContext(ctx).
		Model(&types.Specialist{}).
		Where("center_id = ?", centerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (sr *specialistRepo) RecentByCenterID(ctx context.Context, tx *gorm.DB, centerID uuid.UUID, limit int) ([]*types.Specialist, error) {
	var results []*types.Specialist
	if err := sr.conn(tx).WithContext(ctx).
		Where("center_id = ?", centerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *specialistRepo) GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*types.Specialist, error) {
	var result types.Specialist
	err := sr.conn(tx).WithContext(ctx).Where("reset_password_token = ?", token).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *specialistRepo) GetByVerificationToken(ctx context.Context, tx *gorm.DB, token string) (*types.Specialist, error) {
	var result types.Specialist
	err := sr.conn(tx).WithContext(ctx).Where("verification_token = ?", token).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *specialistRepo) Save(ctx context.Context, tx *gorm.DB, specialist *types.Specialist) error {
	return sr.conn(tx).WithContext(ctx).Save(specialist).Error
}

func (sr *specialistRepo) SetCenter(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID, centerID *uuid.UUID) error {
	return sr.conn(tx).WithContext(ctx).
		Model(&types.Specialist{}).
		Where("id = ?", specialistID).
		Update("center_id", centerID).Error
}

func (sr *specialistRepo) Delete(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) error {
	return sr.conn(tx).WithContext(ctx).
		Where("id = ?", specialistID).
		Delete(&types.Specialist{}).Error
}

func (sr *specialistRepo) AddLinkedParent(ctx context.Context, tx *gorm.DB, specialistID, parentID uuid.UUID) error {
	link := types.SpecialistParentLink{SpecialistID: specialistID, ParentID: parentID}
	// Set-add semantics: re-linking an already linked parent is a no-op.
	return sr.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
}

func (sr *specialistRepo) RemoveLinkedParent(ctx context.Context, tx *gorm.DB, specialistID, parentID uuid.UUID) error {
	return sr.conn(tx).WithContext(ctx).
		Where("specialist_id = ? AND parent_id = ?", specialistID, parentID).
		Delete(&types.SpecialistParentLink{}).Error
}

func (sr *specialistRepo) LinkedParentIDs(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) ([]uuid.UUID, error) {
	return sr.LinkedParentIDsForSpecialists(ctx, tx, []uuid.UUID{specialistID})
}

func (sr *specialistRepo) LinkedParentIDsForSpecialists(ctx context.Context, tx *gorm.DB, specialistIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(specialistIDs) == 0 {
		return ids, nil
	}
	if err := sr.conn(tx).WithContext(ctx).
		Model(&types.SpecialistParentLink{}).
		Where("specialist_id IN ?", specialistIDs).
		Distinct().
		Pluck("parent_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (sr *specialistRepo) HasLinkedParent(ctx context.Context, tx *gorm.DB, specialistID, parentID uuid.UUID) (bool, error) {
	var count int64
	if err := sr.conn(tx).WithContext(ctx).
		Model(&types.SpecialistParentLink{}).
		Where("specialist_id = ? AND parent_id = ?", specialistID, parentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (sr *specialistRepo) RemoveAllLinks(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) error {
	return sr.conn(tx).WithContext(ctx).
		Where("specialist_id = ?", specialistID).
		Delete(&types.SpecialistParentLink{}).Error
}

func (sr *specialistRepo) MaxStaffSeq(ctx context.Context, tx *gorm.DB) (int64, error) {
	return maxDisplaySeq(ctx, sr.conn(tx), "specialists", "staff_id", "SP-")
}
