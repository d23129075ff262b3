package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type linkGraphFixture struct {
	db             *gorm.DB
	svc            LinkGraphService
	parentRepo     repos.ParentRepo
	specialistRepo repos.SpecialistRepo
}

func newLinkGraphFixture(t *testing.T) *linkGraphFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	parentRepo := repos.NewParentRepo(db, log)
	specialistRepo := repos.NewSpecialistRepo(db, log)
	centerRepo := repos.NewCenterRepo(db, log)
	childRepo := repos.NewChildRepo(db, log)
	svc := NewLinkGraphService(db, log, parentRepo, specialistRepo, centerRepo, childRepo)
	return &linkGraphFixture{db: db, svc: svc, parentRepo: parentRepo, specialistRepo: specialistRepo}
}

func (f *linkGraphFixture) seedParent(t *testing.T, email string) *types.Parent {
	t.Helper()
	p := &types.Parent{Name: "Parent " + email, Email: email, Password: "x", Role: types.RoleParent, StaffID: "PT-" + email}
	if err := f.db.Create(p).Error; err != nil {
		t.Fatalf("seed parent: %v", err)
	}
	return p
}

func (f *linkGraphFixture) seedSpecialist(t *testing.T, email string, centerID *uuid.UUID) *types.Specialist {
	t.Helper()
	s := &types.Specialist{Name: "Specialist " + email, Email: email, Password: "x", Role: types.RoleSpecialist, StaffID: "SP-" + email, CenterID: centerID}
	if err := f.db.Create(s).Error; err != nil {
		t.Fatalf("seed specialist: %v", err)
	}
	return s
}

func (f *linkGraphFixture) seedChild(t *testing.T, parentID uuid.UUID, assigned *uuid.UUID, displayID string) *types.Child {
	t.Helper()
	c := &types.Child{Name: "Child " + displayID, Age: 4, Gender: "male", ParentID: parentID, AssignedSpecialistID: assigned, ChildID: displayID, Active: true}
	if err := f.db.Create(c).Error; err != nil {
		t.Fatalf("seed child: %v", err)
	}
	return c
}

func TestLinkGraph_LinkUnlinkBidirectional(t *testing.T) {
	f := newLinkGraphFixture(t)
	ctx := context.Background()
	specialist := f.seedSpecialist(t, "s1@example.com", nil)
	parent := f.seedParent(t, "p1@example.com")

	if err := f.svc.LinkParentToSpecialist(ctx, specialist.ID, parent.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	linked, err := f.specialistRepo.HasLinkedParent(ctx, nil, specialist.ID, parent.ID)
	if err != nil || !linked {
		t.Fatalf("link row missing after link: linked=%v err=%v", linked, err)
	}
	got, err := f.parentRepo.GetByID(ctx, nil, parent.ID)
	if err != nil {
		t.Fatalf("reload parent: %v", err)
	}
	if got.LinkedSpecialistID == nil || *got.LinkedSpecialistID != specialist.ID {
		t.Fatalf("parent back-pointer not set after link")
	}

	// Re-linking is idempotent.
	if err := f.svc.LinkParentToSpecialist(ctx, specialist.ID, parent.ID); err != nil {
		t.Fatalf("relink: %v", err)
	}

	if err := f.svc.UnlinkParentFromSpecialist(ctx, specialist.ID, parent.ID); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	linked, err = f.specialistRepo.HasLinkedParent(ctx, nil, specialist.ID, parent.ID)
	if err != nil || linked {
		t.Fatalf("link row still present after unlink: linked=%v err=%v", linked, err)
	}
	got, err = f.parentRepo.GetByID(ctx, nil, parent.ID)
	if err != nil {
		t.Fatalf("reload parent: %v", err)
	}
	if got.LinkedSpecialistID != nil {
		t.Fatalf("parent back-pointer not cleared after unlink")
	}
}

func TestLinkGraph_CanSpecialistActOnChild(t *testing.T) {
	f := newLinkGraphFixture(t)
	ctx := context.Background()

	specialist := f.seedSpecialist(t, "s1@example.com", nil)
	other := f.seedSpecialist(t, "s2@example.com", nil)
	linkedParent := f.seedParent(t, "linked@example.com")
	strangerParent := f.seedParent(t, "stranger@example.com")
	if err := f.svc.LinkParentToSpecialist(ctx, specialist.ID, linkedParent.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	assignedChild := f.seedChild(t, strangerParent.ID, &specialist.ID, "CH-0001")
	linkedChild := f.seedChild(t, linkedParent.ID, nil, "CH-0002")
	bothChild := f.seedChild(t, linkedParent.ID, &specialist.ID, "CH-0003")
	strangerChild := f.seedChild(t, strangerParent.ID, &other.ID, "CH-0004")

	tests := []struct {
		name  string
		child *types.Child
		want  bool
	}{
		{"assigned only", assignedChild, true},
		{"linked parent only", linkedChild, true},
		{"assigned and linked", bothChild, true},
		{"no relationship", strangerChild, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.CanSpecialistActOnChild(ctx, specialist.ID, tt.child)
			if err != nil {
				t.Fatalf("CanSpecialistActOnChild: %v", err)
			}
			if got != tt.want {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLinkGraph_CanParentActOnChild(t *testing.T) {
	f := newLinkGraphFixture(t)
	owner := f.seedParent(t, "owner@example.com")
	other := f.seedParent(t, "other@example.com")
	child := f.seedChild(t, owner.ID, nil, "CH-0001")

	if !f.svc.CanParentActOnChild(owner.ID, child) {
		t.Fatalf("owner must act on own child")
	}
	if f.svc.CanParentActOnChild(other.ID, child) {
		t.Fatalf("non-owner must not act on child")
	}
}

func TestLinkGraph_CenterOf(t *testing.T) {
	f := newLinkGraphFixture(t)
	ctx := context.Background()

	admin := &types.Admin{Name: "Manager", Email: "admin@example.com", Password: "x", Role: types.RoleAdmin, StaffID: "AD-0001"}
	if err := f.db.Create(admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	center := &types.Center{Name: "مركز نطق", AdminID: admin.ID, IsActive: true}
	if err := f.db.Create(center).Error; err != nil {
		t.Fatalf("seed center: %v", err)
	}
	admin.CenterID = &center.ID
	if err := f.db.Save(admin).Error; err != nil {
		t.Fatalf("save admin: %v", err)
	}

	got, err := f.svc.CenterOf(ctx, admin)
	if err != nil {
		t.Fatalf("CenterOf: %v", err)
	}
	if got.ID != center.ID {
		t.Fatalf("center: want %s, got %s", center.ID, got.ID)
	}

	// Superadmin without a center.
	noCenter := &types.Admin{Name: "Root", Email: "root@example.com", Password: "x", Role: types.RoleSuperadmin, StaffID: "AD-0002"}
	if err := f.db.Create(noCenter).Error; err != nil {
		t.Fatalf("seed superadmin: %v", err)
	}
	if _, err := f.svc.CenterOf(ctx, noCenter); !errors.Is(err, ErrNoCenterAccess) {
		t.Fatalf("want ErrNoCenterAccess for nil center, got %v", err)
	}

	// Admin pointing at a center whose back-reference names someone else.
	intruder := &types.Admin{Name: "Intruder", Email: "intruder@example.com", Password: "x", Role: types.RoleAdmin, StaffID: "AD-0003", CenterID: &center.ID}
	if err := f.db.Create(intruder).Error; err != nil {
		t.Fatalf("seed intruder: %v", err)
	}
	if _, err := f.svc.CenterOf(ctx, intruder); !errors.Is(err, ErrNoCenterAccess) {
		t.Fatalf("want ErrNoCenterAccess for mismatched back-reference, got %v", err)
	}
}

// Parents reachable through the link table and through the parent-side
// pointer must union without duplicates.
func TestLinkGraph_ParentsOfCenterUnion(t *testing.T) {
	f := newLinkGraphFixture(t)
	ctx := context.Background()

	admin := &types.Admin{Name: "Manager", Email: "admin@example.com", Password: "x", Role: types.RoleAdmin, StaffID: "AD-0001"}
	if err := f.db.Create(admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	center := &types.Center{Name: "Center", AdminID: admin.ID, IsActive: true}
	if err := f.db.Create(center).Error; err != nil {
		t.Fatalf("seed center: %v", err)
	}
	specialist := f.seedSpecialist(t, "s1@example.com", &center.ID)

	viaLink := f.seedParent(t, "vialink@example.com")
	viaPointer := f.seedParent(t, "viapointer@example.com")
	viaBoth := f.seedParent(t, "viaboth@example.com")
	f.seedParent(t, "unrelated@example.com")

	if err := f.specialistRepo.AddLinkedParent(ctx, nil, specialist.ID, viaLink.ID); err != nil {
		t.Fatalf("add link: %v", err)
	}
	if err := f.parentRepo.SetLinkedSpecialist(ctx, nil, viaPointer.ID, &specialist.ID); err != nil {
		t.Fatalf("set pointer: %v", err)
	}
	if err := f.svc.LinkParentToSpecialist(ctx, specialist.ID, viaBoth.ID); err != nil {
		t.Fatalf("link both: %v", err)
	}

	parents, err := f.svc.ParentsOfCenter(ctx, center.ID)
	if err != nil {
		t.Fatalf("ParentsOfCenter: %v", err)
	}
	if len(parents) != 3 {
		t.Fatalf("want 3 unique parents, got %d", len(parents))
	}
	seen := map[uuid.UUID]bool{}
	for _, p := range parents {
		if seen[p.ID] {
			t.Fatalf("duplicate parent %s in result", p.ID)
		}
		seen[p.ID] = true
	}
	for _, want := range []uuid.UUID{viaLink.ID, viaPointer.ID, viaBoth.ID} {
		if !seen[want] {
			t.Fatalf("parent %s missing from union", want)
		}
	}
}

func TestLinkGraph_AssignChildRequiresLinkedParent(t *testing.T) {
	f := newLinkGraphFixture(t)
	ctx := context.Background()
	specialist := f.seedSpecialist(t, "s1@example.com", nil)
	parent := f.seedParent(t, "p1@example.com")
	child := f.seedChild(t, parent.ID, nil, "CH-0001")

	err := f.svc.AssignChildToSpecialist(ctx, child.ID, specialist.ID)
	if apierr.Status(err) != 403 {
		t.Fatalf("want 403 before linking, got %v", err)
	}

	if err := f.svc.LinkParentToSpecialist(ctx, specialist.ID, parent.ID); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := f.svc.AssignChildToSpecialist(ctx, child.ID, specialist.ID); err != nil {
		t.Fatalf("assign after link: %v", err)
	}

	var reloaded types.Child
	if err := f.db.First(&reloaded, "id = ?", child.ID).Error; err != nil {
		t.Fatalf("reload child: %v", err)
	}
	if reloaded.AssignedSpecialistID == nil || *reloaded.AssignedSpecialistID != specialist.ID {
		t.Fatalf("assignment pointer not set")
	}

	if err := f.svc.UnassignChildFromSpecialist(ctx, child.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	var unassigned types.Child
	if err := f.db.First(&unassigned, "id = ?", child.ID).Error; err != nil {
		t.Fatalf("reload child: %v", err)
	}
	if unassigned.AssignedSpecialistID != nil {
		t.Fatalf("assignment pointer not cleared")
	}
}

func TestLinkGraph_SearchLinkableParentsExcludesLinked(t *testing.T) {
	f := newLinkGraphFixture(t)
	ctx := context.Background()
	specialist := f.seedSpecialist(t, "s1@example.com", nil)
	linked := f.seedParent(t, "ahmed.linked@example.com")
	free := f.seedParent(t, "ahmed.free@example.com")
	if err := f.svc.LinkParentToSpecialist(ctx, specialist.ID, linked.ID); err != nil {
		t.Fatalf("link: %v", err)
	}

	results, err := f.svc.SearchLinkableParents(ctx, specialist.ID, "ahmed")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("want 1 result, got %d", len(results))
	}
	if results[0].ID != free.ID {
		t.Fatalf("want unlinked parent %s, got %s", free.ID, results[0].ID)
	}
}
