package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/types"
)

func newResolverFixture(t *testing.T) (ActorResolver, *types.Parent, *types.Specialist, *types.Admin) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)

	parent := &types.Parent{Name: "Umm Ali", Email: "parent@example.com", Password: "x", Role: types.RoleParent, StaffID: "PT-0001"}
	specialist := &types.Specialist{Name: "Dr. Sara", Email: "sara@example.com", Password: "x", Role: types.RoleSpecialist, StaffID: "SP-0001"}
	admin := &types.Admin{Name: "Manager", Email: "admin@example.com", Password: "x", Role: types.RoleAdmin, StaffID: "AD-0001"}
	for _, rec := range []any{parent, specialist, admin} {
		if err := db.Create(rec).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	resolver := NewActorResolver(log,
		repos.NewParentRepo(db, log),
		repos.NewSpecialistRepo(db, log),
		repos.NewAdminRepo(db, log),
	)
	return resolver, parent, specialist, admin
}

func TestActorResolver_RoleDispatch(t *testing.T) {
	resolver, parent, specialist, admin := newResolverFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		id       uuid.UUID
		role     types.Role
		wantRole types.Role
	}{
		{"parent", parent.ID, types.RoleParent, types.RoleParent},
		{"specialist", specialist.ID, types.RoleSpecialist, types.RoleSpecialist},
		{"admin", admin.ID, types.RoleAdmin, types.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := resolver.Resolve(ctx, tt.id, tt.role)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if actor.ID != tt.id {
				t.Fatalf("id: want %s, got %s", tt.id, actor.ID)
			}
			if actor.Role != tt.wantRole {
				t.Fatalf("role: want %s, got %s", tt.wantRole, actor.Role)
			}
		})
	}
}

// A parent id presented under the specialist role must not resolve; the
// split stores are separate identity namespaces.
func TestActorResolver_WrongStoreDoesNotResolve(t *testing.T) {
	resolver, parent, _, _ := newResolverFixture(t)

	if _, err := resolver.Resolve(context.Background(), parent.ID, types.RoleSpecialist); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("want ErrActorNotFound, got %v", err)
	}
}

func TestActorResolver_LegacyFallbackScan(t *testing.T) {
	resolver, parent, specialist, admin := newResolverFixture(t)
	ctx := context.Background()

	for _, tt := range []struct {
		name string
		id   uuid.UUID
		want types.Role
	}{
		{"finds parent", parent.ID, types.RoleParent},
		{"finds specialist", specialist.ID, types.RoleSpecialist},
		{"finds admin", admin.ID, types.RoleAdmin},
	} {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := resolver.Resolve(ctx, tt.id, types.Role("user"))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if actor.Role != tt.want {
				t.Fatalf("role: want %s, got %s", tt.want, actor.Role)
			}
		})
	}

	if _, err := resolver.Resolve(ctx, uuid.New(), types.Role("user")); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("want ErrActorNotFound for unknown id, got %v", err)
	}
}

func TestActorResolver_DeletedActor(t *testing.T) {
	resolver, _, _, _ := newResolverFixture(t)

	if _, err := resolver.Resolve(context.Background(), uuid.New(), types.RoleParent); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("want ErrActorNotFound, got %v", err)
	}
}
