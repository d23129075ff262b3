package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type ChildRepo interface {
	Create(ctx context.Context, tx *gorm.DB, child *types.Child) (*types.Child, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Child, error)
	GetByParentID(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Child, error)
	GetReachable(ctx context.Context, tx *gorm.DB, specialistIDs, parentIDs []uuid.UUID) ([]*types.Child, error)
	CountByAssignedSpecialists(ctx context.Context, tx *gorm.DB, specialistIDs []uuid.UUID) (int64, error)
	Save(ctx context.Context, tx *gorm.DB, child *types.Child) error
	SetAssignedSpecialist(ctx context.Context, tx *gorm.DB, childID uuid.UUID, specialistID *uuid.UUID) error
	ClearAssignedSpecialist(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) error
	MaxChildSeq(ctx context.Context, tx *gorm.DB) (int64, error)
}

type childRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildRepo(db *gorm.DB, baseLog *logger.Logger) ChildRepo {
	return &childRepo{db: db, log: baseLog.With("repo", "ChildRepo")}
}

func (chr *childRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return chr.db
}

func (chr *childRepo) Create(ctx context.Context, tx *gorm.DB, child *types.Child) (*types.Child, error) {
	if err := chr.conn(tx).WithContext(ctx).Create(child).Error; err != nil {
		return nil, err
	}
	return child, nil
}

func (chr *childRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Child, error) {
	var result types.Child
	err := chr.conn(tx).WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (chr *childRepo) GetByParentID(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.Child, error) {
	var results []*types.Child
	if err := chr.conn(tx).WithContext(ctx).
		Where("parent_id = ?", parentID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetReachable returns children assigned to any of the given specialists,
// unioned with children owned by any of the given parents. Either id list
// may be empty.
func (chr *childRepo) GetReachable(ctx context.Context, tx *gorm.DB, specialistIDs, parentIDs []uuid.UUID) ([]*types.Child, error) {
	var results []*types.Child
	if len(specialistIDs) == 0 && len(parentIDs) == 0 {
		return results, nil
	}
	q := chr.conn(tx).WithContext(ctx).Model(&types.Child{})
	switch {
	case len(specialistIDs) > 0 && len(parentIDs) > 0:
		q = q.Where("assigned_specialist_id IN ? OR parent_id IN ?", specialistIDs, parentIDs)
	case len(specialistIDs) > 0:
		q = q.Where("assigned_specialist_id IN ?", specialistIDs)
	default:
		q = q.Where("parent_id IN ?", parentIDs)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (chr *childRepo) CountByAssignedSpecialists(ctx context.Context, tx *gorm.DB, specialistIDs []uuid.UUID) (int64, error) {
	if len(specialistIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := chr.conn(tx).WithContext(ctx).
		Model(&types.Child{}).
		Where("assigned_specialist_id IN ?", specialistIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (chr *childRepo) Save(ctx context.Context, tx *gorm.DB, child *types.Child) error {
	return chr.conn(tx).WithContext(ctx).Save(child).Error
}

func (chr *childRepo) SetAssignedSpecialist(ctx context.Context, tx *gorm.DB, childID uuid.UUID, specialistID *uuid.UUID) error {
	return chr.conn(tx).WithContext(ctx).
		Model(&types.Child{}).
		Where("id = ?", childID).
		Update("assigned_specialist_id", specialistID).Error
}

func (chr *childRepo) ClearAssignedSpecialist(ctx context.Context, tx *gorm.DB, specialistID uuid.UUID) error {
	return chr.conn(tx).WithContext(ctx).
		Model(&types.Child{}).
		Where("assigned_specialist_id = ?", specialistID).
		Update("assigned_specialist_id", nil).Error
}

func (chr *childRepo) MaxChildSeq(ctx context.Context, tx *gorm.DB) (int64, error) {
	return maxDisplaySeq(ctx, chr.conn(tx), "children", "child_id", "CH-")
}
