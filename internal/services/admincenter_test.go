package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type adminFixture struct {
	db        *gorm.DB
	svc       AdminCenterService
	linkGraph LinkGraphService
	center    *types.Center
	admin     *types.Admin
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	parentRepo := repos.NewParentRepo(db, log)
	specialistRepo := repos.NewSpecialistRepo(db, log)
	adminRepo := repos.NewAdminRepo(db, log)
	centerRepo := repos.NewCenterRepo(db, log)
	childRepo := repos.NewChildRepo(db, log)
	counterRepo := repos.NewCounterRepo(db, log)
	linkGraph := NewLinkGraphService(db, log, parentRepo, specialistRepo, centerRepo, childRepo)
	svc := NewAdminCenterService(db, log, parentRepo, specialistRepo, adminRepo, centerRepo, childRepo, counterRepo, linkGraph)

	admin := &types.Admin{Name: "Manager", Email: "admin@example.com", Password: "x", Role: types.RoleAdmin, StaffID: "AD-0001"}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	center := &types.Center{Name: "مركز نطق", AdminID: admin.ID, IsActive: true}
	if err := db.Create(center).Error; err != nil {
		t.Fatalf("seed center: %v", err)
	}
	admin.CenterID = &center.ID
	if err := db.Save(admin).Error; err != nil {
		t.Fatalf("save admin: %v", err)
	}
	return &adminFixture{db: db, svc: svc, linkGraph: linkGraph, center: center, admin: admin}
}

func TestAdminCenterService_CreateSpecialist(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	specialist, err := f.svc.CreateSpecialist(ctx, f.center, CreateSpecialistInput{
		Name:           "Dr. Sara",
		Email:          "Sara@Example.com",
		Password:       "secret123",
		Specialization: "speech",
	})
	if err != nil {
		t.Fatalf("create specialist: %v", err)
	}
	if specialist.Email != "sara@example.com" {
		t.Fatalf("email not normalized: %q", specialist.Email)
	}
	if specialist.StaffID != "SP-0001" {
		t.Fatalf("staff id: want SP-0001, got %q", specialist.StaffID)
	}
	if !specialist.EmailVerified {
		t.Fatalf("admin-provisioned specialists start verified")
	}
	if specialist.CenterID == nil || *specialist.CenterID != f.center.ID {
		t.Fatalf("specialist not attached to center")
	}

	// Duplicate email across stores is rejected.
	if _, err := f.svc.CreateSpecialist(ctx, f.center, CreateSpecialistInput{
		Name:     "Other",
		Email:    "admin@example.com",
		Password: "secret123",
	}); apierr.Status(err) != 400 {
		t.Fatalf("duplicate email: want 400, got %v", err)
	}
}

func TestAdminCenterService_StatsUsesLinkUnion(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	specialist, err := f.svc.CreateSpecialist(ctx, f.center, CreateSpecialistInput{
		Name: "Dr. Sara", Email: "sara@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("create specialist: %v", err)
	}
	parent := &types.Parent{Name: "Umm Ali", Email: "parent@example.com", Password: "x", Role: types.RoleParent, StaffID: "PT-0001"}
	if err := f.db.Create(parent).Error; err != nil {
		t.Fatalf("seed parent: %v", err)
	}
	child := &types.Child{Name: "Ali", Age: 4, Gender: "male", ParentID: parent.ID, ChildID: "CH-0001", Active: true}
	if err := f.db.Create(child).Error; err != nil {
		t.Fatalf("seed child: %v", err)
	}
	if err := f.linkGraph.LinkParentToSpecialist(ctx, specialist.ID, parent.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	stats, err := f.svc.Stats(ctx, f.center)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Specialists != 1 {
		t.Fatalf("specialists: want 1, got %d", stats.Specialists)
	}
	if stats.Parents != 1 {
		t.Fatalf("parents: want 1, got %d", stats.Parents)
	}
	if stats.Children != 1 {
		t.Fatalf("children: want 1, got %d", stats.Children)
	}
	if len(stats.RecentSpecialists) != 1 {
		t.Fatalf("recent specialists: want 1, got %d", len(stats.RecentSpecialists))
	}
}

func TestAdminCenterService_SpecialistScopedToCenter(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	outsider := &types.Specialist{Name: "Outsider", Email: "out@example.com", Password: "x", Role: types.RoleSpecialist, StaffID: "SP-0099"}
	if err := f.db.Create(outsider).Error; err != nil {
		t.Fatalf("seed outsider: %v", err)
	}

	if _, err := f.svc.GetSpecialist(ctx, f.center, outsider.ID); apierr.Status(err) != 404 {
		t.Fatalf("outsider lookup: want 404, got %v", err)
	}
	if err := f.svc.DeleteSpecialist(ctx, f.center, outsider.ID); apierr.Status(err) != 404 {
		t.Fatalf("outsider delete: want 404, got %v", err)
	}
}

func TestAdminCenterService_DeleteSpecialistScrubsEdges(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	specialist, err := f.svc.CreateSpecialist(ctx, f.center, CreateSpecialistInput{
		Name: "Dr. Sara", Email: "sara@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("create specialist: %v", err)
	}
	parent := &types.Parent{Name: "Umm Ali", Email: "parent@example.com", Password: "x", Role: types.RoleParent, StaffID: "PT-0001"}
	if err := f.db.Create(parent).Error; err != nil {
		t.Fatalf("seed parent: %v", err)
	}
	child := &types.Child{Name: "Ali", Age: 4, Gender: "male", ParentID: parent.ID, ChildID: "CH-0001", Active: true}
	if err := f.db.Create(child).Error; err != nil {
		t.Fatalf("seed child: %v", err)
	}
	if err := f.linkGraph.LinkParentToSpecialist(ctx, specialist.ID, parent.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := f.linkGraph.AssignChildToSpecialist(ctx, child.ID, specialist.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := f.svc.DeleteSpecialist(ctx, f.center, specialist.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var specialistCount, linkCount int64
	f.db.Model(&types.Specialist{}).Where("id = ?", specialist.ID).Count(&specialistCount)
	f.db.Model(&types.SpecialistParentLink{}).Where("specialist_id = ?", specialist.ID).Count(&linkCount)
	if specialistCount != 0 || linkCount != 0 {
		t.Fatalf("specialist or links survived delete: %d/%d", specialistCount, linkCount)
	}

	var reloadedParent types.Parent
	if err := f.db.First(&reloadedParent, "id = ?", parent.ID).Error; err != nil {
		t.Fatalf("reload parent: %v", err)
	}
	if reloadedParent.LinkedSpecialistID != nil {
		t.Fatalf("parent pointer not scrubbed")
	}
	var reloadedChild types.Child
	if err := f.db.First(&reloadedChild, "id = ?", child.ID).Error; err != nil {
		t.Fatalf("reload child: %v", err)
	}
	if reloadedChild.AssignedSpecialistID != nil {
		t.Fatalf("child assignment not scrubbed")
	}
}

func TestAdminCenterService_UpdateCenter(t *testing.T) {
	f := newAdminFixture(t)

	if err := f.svc.UpdateCenter(context.Background(), f.center, CenterUpdateInput{
		NameEn: "Nutq Center",
		Phone:  "0910000000",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	var reloaded types.Center
	if err := f.db.First(&reloaded, "id = ?", f.center.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.NameEn != "Nutq Center" || reloaded.Phone != "0910000000" {
		t.Fatalf("fields not updated: %+v", reloaded)
	}
	if reloaded.Name != "مركز نطق" {
		t.Fatalf("unset field overwritten: %q", reloaded.Name)
	}
}
