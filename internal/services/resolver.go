package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/types"
)

// ErrActorNotFound means the token verified but no actor record backs it
// (e.g. the account was deleted after issuance). Treated as an
// authentication failure, never a 404.
var ErrActorNotFound = errors.New("actor not found")

// Actor is the resolved identity attached to a request. Exactly one of
// Parent/Specialist/Admin is non-nil, matching Role.
type Actor struct {
	ID            uuid.UUID
	Role          types.Role
	Name          string
	Email         string
	EmailVerified bool

	Parent     *types.Parent
	Specialist *types.Specialist
	Admin      *types.Admin
}

type ActorResolver interface {
	Resolve(ctx context.Context, id uuid.UUID, role types.Role) (*Actor, error)
}

type actorResolver struct {
	log            *logger.Logger
	parentRepo     repos.ParentRepo
	specialistRepo repos.SpecialistRepo
	adminRepo      repos.AdminRepo
}

func NewActorResolver(log *logger.Logger, parentRepo repos.ParentRepo, specialistRepo repos.SpecialistRepo, adminRepo repos.AdminRepo) ActorResolver {
	return &actorResolver{
		log:            log.With("service", "ActorResolver"),
		parentRepo:     parentRepo,
		specialistRepo: specialistRepo,
		adminRepo:      adminRepo,
	}
}

func (ar *actorResolver) Resolve(ctx context.Context, id uuid.UUID, role types.Role) (*Actor, error) {
	switch role {
	case types.RoleParent:
		return ar.resolveParent(ctx, id)
	case types.RoleSpecialist:
		return ar.resolveSpecialist(ctx, id)
	case types.RoleAdmin, types.RoleSuperadmin:
		return ar.resolveAdmin(ctx, id)
	default:
		// Legacy tokens minted before roles were stamped per store: scan
		// parent, then specialist, then admin, first hit wins.
		ar.log.Debug("Unknown role in token, falling back to store scan", "role", role.String())
		if actor, err := ar.resolveParent(ctx, id); err == nil {
			return actor, nil
		} else if !errors.Is(err, ErrActorNotFound) {
			return nil, err
		}
		if actor, err := ar.resolveSpecialist(ctx, id); err == nil {
			return actor, nil
		} else if !errors.Is(err, ErrActorNotFound) {
			return nil, err
		}
		return ar.resolveAdmin(ctx, id)
	}
}

func (ar *actorResolver) resolveParent(ctx context.Context, id uuid.UUID) (*Actor, error) {
	parent, err := ar.parentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &Actor{
		ID:            parent.ID,
		Role:          types.RoleParent,
		Name:          parent.Name,
		Email:         parent.Email,
		EmailVerified: parent.EmailVerified,
		Parent:        parent,
	}, nil
}

func (ar *actorResolver) resolveSpecialist(ctx context.Context, id uuid.UUID) (*Actor, error) {
	specialist, err := ar.specialistRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &Actor{
		ID:            specialist.ID,
		Role:          types.RoleSpecialist,
		Name:          specialist.Name,
		Email:         specialist.Email,
		EmailVerified: specialist.EmailVerified,
		Specialist:    specialist,
	}, nil
}

func (ar *actorResolver) resolveAdmin(ctx context.Context, id uuid.UUID) (*Actor, error) {
	admin, err := ar.adminRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &Actor{
		ID:            admin.ID,
		Role:          admin.Role,
		Name:          admin.Name,
		Email:         admin.Email,
		EmailVerified: admin.EmailVerified,
		Admin:         admin,
	}, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrActorNotFound
	}
	return err
}
