package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type CounterRepo interface {
	Exists(ctx context.Context, tx *gorm.DB, name string) (bool, error)
	Bootstrap(ctx context.Context, tx *gorm.DB, name string, seq int64) error
	// Next atomically increments the named counter and returns the new value.
	// The counter row must already exist.
	Next(ctx context.Context, tx *gorm.DB, name string) (int64, error)
}

type counterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCounterRepo(db *gorm.DB, baseLog *logger.Logger) CounterRepo {
	return &counterRepo{db: db, log: baseLog.With("repo", "CounterRepo")}
}

func (cr *counterRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

func (cr *counterRepo) Exists(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	var count int64
	if err := cr.conn(tx).WithContext(ctx).
		Model(&types.Counter{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (cr *counterRepo) Bootstrap(ctx context.Context, tx *gorm.DB, name string, seq int64) error {
	counter := types.Counter{Name: name, Seq: seq}
	// Concurrent bootstrap attempts collapse to a single row.
	return cr.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&counter).Error
}

func (cr *counterRepo) Next(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	var counter types.Counter
	counter.Name = name
	result := cr.conn(tx).WithContext(ctx).
		Model(&counter).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "seq"}}}).
		Where("name = ?", name).
		Update("seq", gorm.Expr("seq + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("counter %q: %w", name, ErrCounterMissing)
	}
	return counter.Seq, nil
}

var ErrCounterMissing = errors.New("counter row does not exist")
