package repos

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// maxDisplaySeq reads the highest sequence embedded in a display id column
// (e.g. CH-0042 → 42). Used only to bootstrap a missing counter row from
// pre-counter data; LENGTH ordering keeps the comparison numeric once ids
// outgrow the zero padding.
func maxDisplaySeq(ctx context.Context, db *gorm.DB, table, column, prefix string) (int64, error) {
	var displayID string
	err := db.WithContext(ctx).
		Table(table).
		Select(column).
		Where(column+" LIKE ?", prefix+"%").
		Order("LENGTH(" + column + ") DESC, " + column + " DESC").
		Limit(1).
		Scan(&displayID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if displayID == "" {
		return 0, nil
	}
	raw := strings.TrimPrefix(displayID, prefix)
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return seq, nil
}
