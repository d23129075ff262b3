package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/types"
)

// ErrNoCenterAccess means the admin either has no center or the center's
// admin back-reference does not match. Both collapse to zero access.
var ErrNoCenterAccess = errors.New("no center access")

// LinkGraphService owns the relationship data connecting centers,
// specialists, parents and children, and the traversals that answer
// "can actor A act on resource R". Mutations keep the bidirectional
// invariants by performing both sides inside one transaction.
type LinkGraphService interface {
	CenterOf(ctx context.Context, admin *types.Admin) (*types.Center, error)
	SpecialistsInCenter(ctx context.Context, centerID uuid.UUID) ([]*types.Specialist, error)
	ParentsOfCenter(ctx context.Context, centerID uuid.UUID) ([]*types.Parent, error)
	ChildrenOfCenter(ctx context.Context, centerID uuid.UUID) ([]*types.Child, error)

	CanSpecialistActOnChild(ctx context.Context, specialistID uuid.UUID, child *types.Child) (bool, error)
	CanParentActOnChild(parentID uuid.UUID, child *types.Child) bool

	LinkParentToSpecialist(ctx context.Context, specialistID, parentID uuid.UUID) error
	UnlinkParentFromSpecialist(ctx context.Context, specialistID, parentID uuid.UUID) error
	AssignChildToSpecialist(ctx context.Context, childID, specialistID uuid.UUID) error
	UnassignChildFromSpecialist(ctx context.Context, childID uuid.UUID) error

	AttachSpecialistToCenter(ctx context.Context, tx *gorm.DB, specialistID, centerID uuid.UUID) error
	DetachSpecialistFromCenter(ctx context.Context, specialistID uuid.UUID) error

	SearchLinkableParents(ctx context.Context, specialistID uuid.UUID, query string) ([]*types.Parent, error)
	LinkedParentIDs(ctx context.Context, specialistID uuid.UUID) ([]uuid.UUID, error)
	LinkedParents(ctx context.Context, specialistID uuid.UUID) ([]*types.Parent, error)
	ReachableChildren(ctx context.Context, specialistID uuid.UUID) ([]*types.Child, error)
}

type linkGraphService struct {
	db             *gorm.DB
	log            *logger.Logger
	parentRepo     repos.ParentRepo
	specialistRepo repos.SpecialistRepo
	centerRepo     repos.CenterRepo
	childRepo      repos.ChildRepo
}

func NewLinkGraphService(
	db *gorm.DB,
	log *logger.Logger,
	parentRepo repos.ParentRepo,
	specialistRepo repos.SpecialistRepo,
	centerRepo repos.CenterRepo,
	childRepo repos.ChildRepo,
) LinkGraphService {
	return &linkGraphService{
		db:             db,
		log:            log.With("service", "LinkGraphService"),
		parentRepo:     parentRepo,
		specialistRepo: specialistRepo,
		centerRepo:     centerRepo,
		childRepo:      childRepo,
	}
}

// CenterOf resolves the center an admin administers. A missing center or a
// stale admin back-pointer both yield ErrNoCenterAccess; the caller turns
// that into a 403, never a 500.
func (lg *linkGraphService) CenterOf(ctx context.Context, admin *types.Admin) (*types.Center, error) {
	if admin == nil || admin.CenterID == nil {
		return nil, ErrNoCenterAccess
	}
	center, err := lg.centerRepo.GetByID(ctx, nil, *admin.CenterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCenterAccess
		}
		return nil, fmt.Errorf("load center: %w", err)
	}
	if center.AdminID != admin.ID {
		lg.log.Warn("Admin center pointer does not match center back-reference",
			"admin_id", admin.ID.String(), "center", center.ID.String())
		return nil, ErrNoCenterAccess
	}
	return center, nil
}

func (lg *linkGraphService) SpecialistsInCenter(ctx context.Context, centerID uuid.UUID) ([]*types.Specialist, error) {
	return lg.specialistRepo.GetByCenterID(ctx, nil, centerID)
}

// ParentsOfCenter unions two link sources: the specialist-side linkedParents
// sets and the parent-side linkedSpecialist pointers. Data may have been
// linked through either side and the two can drift, so both are consulted
// and the result deduplicated by id.
func (lg *linkGraphService) ParentsOfCenter(ctx context.Context, centerID uuid.UUID) ([]*types.Parent, error) {
	specialists, err := lg.SpecialistsInCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}
	specialistIDs := make([]uuid.UUID, 0, len(specialists))
	for _, s := range specialists {
		specialistIDs = append(specialistIDs, s.ID)
	}

	linkedIDs, err := lg.specialistRepo.LinkedParentIDsForSpecialists(ctx, nil, specialistIDs)
	if err != nil {
		return nil, err
	}
	fromLinks, err := lg.parentRepo.GetByIDs(ctx, nil, linkedIDs)
	if err != nil {
		return nil, err
	}
	fromPointers, err := lg.parentRepo.GetByLinkedSpecialistIDs(ctx, nil, specialistIDs)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(fromLinks)+len(fromPointers))
	parents := make([]*types.Parent, 0, len(fromLinks)+len(fromPointers))
	for _, p := range append(fromLinks, fromPointers...) {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		parents = append(parents, p)
	}
	return parents, nil
}

// ChildrenOfCenter: children assigned to a center specialist, unioned with
// children whose parent is linked to one.
func (lg *linkGraphService) ChildrenOfCenter(ctx context.Context, centerID uuid.UUID) ([]*types.Child, error) {
	specialists, err := lg.SpecialistsInCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}
	specialistIDs := make([]uuid.UUID, 0, len(specialists))
	for _, s := range specialists {
		specialistIDs = append(specialistIDs, s.ID)
	}
	parents, err := lg.ParentsOfCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}
	parentIDs := make([]uuid.UUID, 0, len(parents))
	for _, p := range parents {
		parentIDs = append(parentIDs, p.ID)
	}
	return lg.childRepo.GetReachable(ctx, nil, specialistIDs, parentIDs)
}

// CanSpecialistActOnChild is the canonical resource rule for
// specialist-owned resources: direct assignment OR the child's parent being
// in the specialist's linked set.
func (lg *linkGraphService) CanSpecialistActOnChild(ctx context.Context, specialistID uuid.UUID, child *types.Child) (bool, error) {
	if child == nil {
		return false, nil
	}
	if child.AssignedSpecialistID != nil && *child.AssignedSpecialistID == specialistID {
		return true, nil
	}
	return lg.specialistRepo.HasLinkedParent(ctx, nil, specialistID, child.ParentID)
}

// CanParentActOnChild: exact ownership only, no transitive reach.
func (lg *linkGraphService) CanParentActOnChild(parentID uuid.UUID, child *types.Child) bool {
	return child != nil && child.ParentID == parentID
}

// LinkParentToSpecialist adds the parent to the specialist's linked set and
// points the parent's linkedSpecialist back, both inside one transaction so
// the two sides never disagree. Re-linking is idempotent.
func (lg *linkGraphService) LinkParentToSpecialist(ctx context.Context, specialistID, parentID uuid.UUID) error {
	return lg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lg.specialistRepo.AddLinkedParent(ctx, tx, specialistID, parentID); err != nil {
			return fmt.Errorf("add linked parent: %w", err)
		}
		sid := specialistID
		if err := lg.parentRepo.SetLinkedSpecialist(ctx, tx, parentID, &sid); err != nil {
			return fmt.Errorf("set linked specialist: %w", err)
		}
		return nil
	})
}

func (lg *linkGraphService) UnlinkParentFromSpecialist(ctx context.Context, specialistID, parentID uuid.UUID) error {
	return lg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lg.specialistRepo.RemoveLinkedParent(ctx, tx, specialistID, parentID); err != nil {
			return fmt.Errorf("remove linked parent: %w", err)
		}
		if err := lg.parentRepo.SetLinkedSpecialist(ctx, tx, parentID, nil); err != nil {
			return fmt.Errorf("clear linked specialist: %w", err)
		}
		return nil
	})
}

// AssignChildToSpecialist sets the single-valued pointer on the child; there
// is no reverse-side list to maintain. The specialist must already be linked
// to the child's parent, assignment does not create reach on its own.
func (lg *linkGraphService) AssignChildToSpecialist(ctx context.Context, childID, specialistID uuid.UUID) error {
	child, err := lg.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound("child_not_found", errors.New("Child not found"))
		}
		return err
	}
	linked, err := lg.specialistRepo.HasLinkedParent(ctx, nil, specialistID, child.ParentID)
	if err != nil {
		return err
	}
	if !linked {
		return apierr.Forbidden("not_linked", errors.New("Parent of this child is not linked to you"))
	}
	sid := specialistID
	return lg.childRepo.SetAssignedSpecialist(ctx, nil, childID, &sid)
}

func (lg *linkGraphService) UnassignChildFromSpecialist(ctx context.Context, childID uuid.UUID) error {
	return lg.childRepo.SetAssignedSpecialist(ctx, nil, childID, nil)
}

// AttachSpecialistToCenter keeps the specialist's center pointer and the
// center's membership in agreement. Membership is derived from the pointer
// (center_id column), so the single write is the whole operation;
// it participates in the caller's transaction when one is passed.
func (lg *linkGraphService) AttachSpecialistToCenter(ctx context.Context, tx *gorm.DB, specialistID, centerID uuid.UUID) error {
	cid := centerID
	return lg.specialistRepo.SetCenter(ctx, tx, specialistID, &cid)
}

func (lg *linkGraphService) DetachSpecialistFromCenter(ctx context.Context, specialistID uuid.UUID) error {
	return lg.specialistRepo.SetCenter(ctx, nil, specialistID, nil)
}

// SearchLinkableParents excludes parents already linked to the specialist;
// matching is case-insensitive substring on name or email.
func (lg *linkGraphService) SearchLinkableParents(ctx context.Context, specialistID uuid.UUID, query string) ([]*types.Parent, error) {
	linked, err := lg.specialistRepo.LinkedParentIDs(ctx, nil, specialistID)
	if err != nil {
		return nil, err
	}
	return lg.parentRepo.Search(ctx, nil, query, linked, 20)
}

func (lg *linkGraphService) LinkedParentIDs(ctx context.Context, specialistID uuid.UUID) ([]uuid.UUID, error) {
	return lg.specialistRepo.LinkedParentIDs(ctx, nil, specialistID)
}

func (lg *linkGraphService) LinkedParents(ctx context.Context, specialistID uuid.UUID) ([]*types.Parent, error) {
	ids, err := lg.specialistRepo.LinkedParentIDs(ctx, nil, specialistID)
	if err != nil {
		return nil, err
	}
	return lg.parentRepo.GetByIDs(ctx, nil, ids)
}

// ReachableChildren is the specialist's working set: children assigned
// directly, unioned with children of linked parents.
func (lg *linkGraphService) ReachableChildren(ctx context.Context, specialistID uuid.UUID) ([]*types.Child, error) {
	parentIDs, err := lg.specialistRepo.LinkedParentIDs(ctx, nil, specialistID)
	if err != nil {
		return nil, err
	}
	return lg.childRepo.GetReachable(ctx, nil, []uuid.UUID{specialistID}, parentIDs)
}
