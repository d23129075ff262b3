package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/repos"
)

// nextDisplayID draws the next zero-padded display id from the named counter.
// On first use the counter is bootstrapped from the highest id already in the
// table, so pre-counter rows keep their place in the sequence.
func nextDisplayID(ctx context.Context, tx *gorm.DB, counters repos.CounterRepo, name, prefix string, maxSeq func(context.Context, *gorm.DB) (int64, error)) (string, error) {
	exists, err := counters.Exists(ctx, tx, name)
	if err != nil {
		return "", fmt.Errorf("check counter: %w", err)
	}
	if !exists {
		start, mErr := maxSeq(ctx, tx)
		if mErr != nil {
			return "", fmt.Errorf("bootstrap counter: %w", mErr)
		}
		if bErr := counters.Bootstrap(ctx, tx, name, start); bErr != nil {
			return "", fmt.Errorf("bootstrap counter: %w", bErr)
		}
	}
	seq, err := counters.Next(ctx, tx, name)
	if err != nil {
		return "", fmt.Errorf("increment counter: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
