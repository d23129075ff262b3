package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type ExerciseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, exercise *types.Exercise) (*types.Exercise, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, error)
	ListByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID, includeInactive bool) ([]*types.Exercise, error)
	GetContentByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (*types.Exercise, error)
	DeactivatePlans(ctx context.Context, tx *gorm.DB, childID uuid.UUID) error
	MaxSessionIndex(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (int, error)
	Save(ctx context.Context, tx *gorm.DB, exercise *types.Exercise) error
}

type exerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExerciseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseRepo {
	return &exerciseRepo{db: db, log: baseLog.With("repo", "ExerciseRepo")}
}

func (er *exerciseRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return er.db
}

func (er *exerciseRepo) Create(ctx context.Context, tx *gorm.DB, exercise *types.Exercise) (*types.Exercise, error) {
	if err := er.conn(tx).WithContext(ctx).Create(exercise).Error; err != nil {
		return nil, err
	}
	return exercise, nil
}

func (er *exerciseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Exercise, error) {
	var result types.Exercise
	err := er.conn(tx).WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (er *exerciseRepo) ListByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID, includeInactive bool) ([]*types.Exercise, error) {
	var results []*types.Exercise
	q := er.conn(tx).WithContext(ctx).Where("child_id = ?", childID)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *exerciseRepo) GetContentByChild(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (*types.Exercise, error) {
	var result types.Exercise
	err := er.conn(tx).WithContext(ctx).
		Where("child_id = ? AND kind = ?", childID, types.ExerciseKindContent).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// DeactivatePlans flips every active plan for the child to inactive. Run it
// in the same transaction as the subsequent create so the at-most-one-active
// invariant holds at commit.
func (er *exerciseRepo) DeactivatePlans(ctx context.Context, tx *gorm.DB, childID uuid.UUID) error {
	return er.conn(tx).WithContext(ctx).
		Model(&types.Exercise{}).
		Where("child_id = ? AND kind = ? AND active = ?", childID, types.ExerciseKindPlan, true).
		Update("active", false).Error
}

func (er *exerciseRepo) MaxSessionIndex(ctx context.Context, tx *gorm.DB, childID uuid.UUID) (int, error) {
	var max *int
	err := er.conn(tx).WithContext(ctx).
		Model(&types.Exercise{}).
		Where("child_id = ? AND kind = ?", childID, types.ExerciseKindPlan).
		Select("MAX(session_index)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (er *exerciseRepo) Save(ctx context.Context, tx *gorm.DB, exercise *types.Exercise) error {
	return er.conn(tx).WithContext(ctx).Save(exercise).Error
}
