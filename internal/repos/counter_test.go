package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/types"
)

func newRepoTestDB(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.Parent{}, &types.Child{}, &types.Counter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return db, log
}

func TestCounterRepo_NextIsMonotonic(t *testing.T) {
	db, log := newRepoTestDB(t)
	repo := NewCounterRepo(db, log)
	ctx := context.Background()

	if err := repo.Bootstrap(ctx, nil, types.CounterChildID, 0); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	for want := int64(1); want <= 5; want++ {
		got, err := repo.Next(ctx, nil, types.CounterChildID)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Fatalf("seq: want %d, got %d", want, got)
		}
	}
}

func TestCounterRepo_BootstrapIsIdempotent(t *testing.T) {
	db, log := newRepoTestDB(t)
	repo := NewCounterRepo(db, log)
	ctx := context.Background()

	if err := repo.Bootstrap(ctx, nil, types.CounterChildID, 10); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	// A second bootstrap must not reset the sequence.
	if err := repo.Bootstrap(ctx, nil, types.CounterChildID, 0); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	got, err := repo.Next(ctx, nil, types.CounterChildID)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != 11 {
		t.Fatalf("seq after duplicate bootstrap: want 11, got %d", got)
	}
}

func TestCounterRepo_NextWithoutRow(t *testing.T) {
	db, log := newRepoTestDB(t)
	repo := NewCounterRepo(db, log)

	if _, err := repo.Next(context.Background(), nil, "missing"); !errors.Is(err, ErrCounterMissing) {
		t.Fatalf("want ErrCounterMissing, got %v", err)
	}
}

func TestMaxDisplaySeq(t *testing.T) {
	db, log := newRepoTestDB(t)
	ctx := context.Background()

	repo := NewChildRepo(db, log)
	got, err := repo.MaxChildSeq(ctx, nil)
	if err != nil {
		t.Fatalf("empty table: %v", err)
	}
	if got != 0 {
		t.Fatalf("empty table: want 0, got %d", got)
	}

	parent := &types.Parent{Name: "P", Email: "p@example.com", Password: "x", Role: types.RoleParent, StaffID: "PT-0001"}
	if err := db.Create(parent).Error; err != nil {
		t.Fatalf("seed parent: %v", err)
	}
	for _, id := range []string{"CH-0003", "CH-0041", "CH-0007"} {
		child := &types.Child{Name: id, Age: 4, Gender: "male", ParentID: parent.ID, ChildID: id, Active: true}
		if err := db.Create(child).Error; err != nil {
			t.Fatalf("seed child: %v", err)
		}
	}
	got, err = repo.MaxChildSeq(ctx, nil)
	if err != nil {
		t.Fatalf("max seq: %v", err)
	}
	if got != 41 {
		t.Fatalf("max seq: want 41, got %d", got)
	}
}
