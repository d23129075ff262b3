package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type childFixture struct {
	db     *gorm.DB
	svc    ChildService
	parent *types.Parent
}

func newChildFixture(t *testing.T) *childFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	parentRepo := repos.NewParentRepo(db, log)
	specialistRepo := repos.NewSpecialistRepo(db, log)
	centerRepo := repos.NewCenterRepo(db, log)
	childRepo := repos.NewChildRepo(db, log)
	counterRepo := repos.NewCounterRepo(db, log)
	linkGraph := NewLinkGraphService(db, log, parentRepo, specialistRepo, centerRepo, childRepo)
	svc := NewChildService(db, log, childRepo, counterRepo, linkGraph)

	parent := &types.Parent{Name: "Umm Ali", Email: "parent@example.com", Password: "x", Role: types.RoleParent, StaffID: "PT-0001"}
	if err := db.Create(parent).Error; err != nil {
		t.Fatalf("seed parent: %v", err)
	}
	return &childFixture{db: db, svc: svc, parent: parent}
}

func TestChildService_Create(t *testing.T) {
	f := newChildFixture(t)
	ctx := context.Background()

	boy, err := f.svc.Create(ctx, f.parent, CreateChildInput{Name: " Ali ", Age: 4, Gender: "male"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if boy.Name != "Ali" {
		t.Fatalf("name not trimmed: %q", boy.Name)
	}
	if boy.ChildID != "CH-0001" {
		t.Fatalf("display id: want CH-0001, got %q", boy.ChildID)
	}
	if boy.AvatarID != "avatar_01" {
		t.Fatalf("male default avatar: want avatar_01, got %q", boy.AvatarID)
	}
	if !boy.Active {
		t.Fatalf("new child must be active")
	}

	girl, err := f.svc.Create(ctx, f.parent, CreateChildInput{Name: "Aisha", Age: 5, Gender: "female"})
	if err != nil {
		t.Fatalf("create girl: %v", err)
	}
	if girl.ChildID != "CH-0002" {
		t.Fatalf("display id sequence: want CH-0002, got %q", girl.ChildID)
	}
	if girl.AvatarID != "avatar_02" {
		t.Fatalf("female default avatar: want avatar_02, got %q", girl.AvatarID)
	}
}

func TestChildService_CreateValidation(t *testing.T) {
	f := newChildFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateChildInput
	}{
		{"missing name", CreateChildInput{Age: 4, Gender: "male"}},
		{"age too low", CreateChildInput{Name: "Ali", Age: 3, Gender: "male"}},
		{"age too high", CreateChildInput{Name: "Ali", Age: 6, Gender: "male"}},
		{"bad gender", CreateChildInput{Name: "Ali", Age: 4, Gender: "other"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, f.parent, tt.in); apierr.Status(err) != 400 {
				t.Fatalf("want 400, got %v", err)
			}
		})
	}
}

func TestChildService_DisplayIDBootstrap(t *testing.T) {
	f := newChildFixture(t)

	legacy := &types.Child{Name: "Old", Age: 4, Gender: "male", ParentID: f.parent.ID, ChildID: "CH-0007", Active: true}
	if err := f.db.Create(legacy).Error; err != nil {
		t.Fatalf("seed legacy child: %v", err)
	}

	child, err := f.svc.Create(context.Background(), f.parent, CreateChildInput{Name: "New", Age: 4, Gender: "male"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if child.ChildID != "CH-0008" {
		t.Fatalf("bootstrap: want CH-0008, got %q", child.ChildID)
	}
}

func TestChildService_GetEnforcesOwnership(t *testing.T) {
	f := newChildFixture(t)
	ctx := context.Background()

	child, err := f.svc.Create(ctx, f.parent, CreateChildInput{Name: "Ali", Age: 4, Gender: "male"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	owner := &Actor{ID: f.parent.ID, Role: types.RoleParent, Parent: f.parent}
	if _, err := f.svc.Get(ctx, owner, child.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}

	stranger := &types.Parent{Name: "Other", Email: "other@example.com", Password: "x", Role: types.RoleParent, StaffID: "PT-0002"}
	if err := f.db.Create(stranger).Error; err != nil {
		t.Fatalf("seed stranger: %v", err)
	}
	strangerActor := &Actor{ID: stranger.ID, Role: types.RoleParent, Parent: stranger}
	if _, err := f.svc.Get(ctx, strangerActor, child.ID); apierr.Status(err) != 403 {
		t.Fatalf("stranger get: want 403, got %v", err)
	}
}

func TestChildService_GetAdminScopedToCenter(t *testing.T) {
	f := newChildFixture(t)
	ctx := context.Background()

	child, err := f.svc.Create(ctx, f.parent, CreateChildInput{Name: "Ali", Age: 4, Gender: "male"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	orphan := &types.Admin{Name: "Orphan", Email: "orphan@example.com", Password: "x", Role: types.RoleAdmin, StaffID: "AD-0001"}
	if err := f.db.Create(orphan).Error; err != nil {
		t.Fatalf("seed orphan admin: %v", err)
	}
	orphanActor := &Actor{ID: orphan.ID, Role: types.RoleAdmin, Admin: orphan}
	if _, err := f.svc.Get(ctx, orphanActor, child.ID); apierr.Status(err) != 403 {
		t.Fatalf("centerless admin get: want 403, got %v", err)
	}

	owner := &types.Admin{Name: "Owner", Email: "owner@example.com", Password: "x", Role: types.RoleAdmin, StaffID: "AD-0002"}
	if err := f.db.Create(owner).Error; err != nil {
		t.Fatalf("seed owner admin: %v", err)
	}
	center := &types.Center{Name: "مركز نطق", AdminID: owner.ID, IsActive: true}
	if err := f.db.Create(center).Error; err != nil {
		t.Fatalf("seed center: %v", err)
	}
	owner.CenterID = &center.ID
	if err := f.db.Save(owner).Error; err != nil {
		t.Fatalf("save owner admin: %v", err)
	}
	specialist := &types.Specialist{Name: "Dr. Sara", Email: "sara@example.com", Password: "x", Role: types.RoleSpecialist, StaffID: "SP-0001", CenterID: &center.ID}
	if err := f.db.Create(specialist).Error; err != nil {
		t.Fatalf("seed specialist: %v", err)
	}
	if err := f.db.Create(&types.SpecialistParentLink{SpecialistID: specialist.ID, ParentID: f.parent.ID}).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}

	ownerActor := &Actor{ID: owner.ID, Role: types.RoleAdmin, Admin: owner}
	if _, err := f.svc.Get(ctx, ownerActor, child.ID); err != nil {
		t.Fatalf("center admin get: %v", err)
	}
}

func TestChildService_ListMine(t *testing.T) {
	f := newChildFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Ali", "Aisha"} {
		if _, err := f.svc.Create(ctx, f.parent, CreateChildInput{Name: name, Age: 4, Gender: "male"}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	children, err := f.svc.ListMine(ctx, f.parent)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("want 2 children, got %d", len(children))
	}
}
