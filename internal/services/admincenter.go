package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/normalization"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/types"
)

const recentSpecialistsLimit = 5

type CenterUpdateInput struct {
	Name        string
	NameEn      string
	Address     string
	Phone       string
	Email       string
	Description string
}

type CreateSpecialistInput struct {
	Name           string
	Email          string
	Password       string
	Phone          string
	Specialization string
	LicenseNumber  string
}

type SpecialistUpdateInput struct {
	Name           string
	Phone          string
	Specialization string
	LicenseNumber  string
	Bio            string
}

// SpecialistOverview is a specialist row decorated with reach counts for
// center dashboards.
type SpecialistOverview struct {
	Specialist        *types.Specialist `json:"specialist"`
	LinkedParentCount int               `json:"linkedParentCount"`
	AssignedChildren  int64             `json:"assignedChildren"`
}

type SpecialistDetail struct {
	Specialist    *types.Specialist `json:"specialist"`
	LinkedParents []*types.Parent   `json:"linkedParents"`
	Children      []*types.Child    `json:"children"`
}

type CenterStats struct {
	Specialists       int64               `json:"specialists"`
	Parents           int                 `json:"parents"`
	Children          int                 `json:"children"`
	RecentSpecialists []*types.Specialist `json:"recentSpecialists"`
}

type AdminCenterService interface {
	UpdateCenter(ctx context.Context, center *types.Center, in CenterUpdateInput) error
	CreateSpecialist(ctx context.Context, center *types.Center, in CreateSpecialistInput) (*types.Specialist, error)
	ListSpecialists(ctx context.Context, center *types.Center) ([]SpecialistOverview, error)
	GetSpecialist(ctx context.Context, center *types.Center, specialistID uuid.UUID) (*SpecialistDetail, error)
	UpdateSpecialist(ctx context.Context, center *types.Center, specialistID uuid.UUID, in SpecialistUpdateInput) (*types.Specialist, error)
	DeleteSpecialist(ctx context.Context, center *types.Center, specialistID uuid.UUID) error
	LinkParent(ctx context.Context, center *types.Center, specialistID, parentID uuid.UUID) error
	UnlinkParent(ctx context.Context, center *types.Center, specialistID, parentID uuid.UUID) error
	AssignChild(ctx context.Context, center *types.Center, specialistID, childID uuid.UUID) error
	UnassignChild(ctx context.Context, center *types.Center, specialistID, childID uuid.UUID) error
	SearchLinkableParents(ctx context.Context, center *types.Center, specialistID uuid.UUID, query string) ([]*types.Parent, error)
	Stats(ctx context.Context, center *types.Center) (*CenterStats, error)
	Parents(ctx context.Context, center *types.Center) ([]*types.Parent, error)
	Children(ctx context.Context, center *types.Center) ([]*types.Child, error)
}

type adminCenterService struct {
	db             *gorm.DB
	log            *logger.Logger
	parentRepo     repos.ParentRepo
	specialistRepo repos.SpecialistRepo
	adminRepo      repos.AdminRepo
	centerRepo     repos.CenterRepo
	childRepo      repos.ChildRepo
	counterRepo    repos.CounterRepo
	linkGraph      LinkGraphService
}

func NewAdminCenterService(
	db *gorm.DB,
	log *logger.Logger,
	parentRepo repos.ParentRepo,
	specialistRepo repos.SpecialistRepo,
	adminRepo repos.AdminRepo,
	centerRepo repos.CenterRepo,
	childRepo repos.ChildRepo,
	counterRepo repos.CounterRepo,
	linkGraph LinkGraphService,
) AdminCenterService {
	return &adminCenterService{
		db:             db,
		log:            log.With("service", "AdminCenterService"),
		parentRepo:     parentRepo,
		specialistRepo: specialistRepo,
		adminRepo:      adminRepo,
		centerRepo:     centerRepo,
		childRepo:      childRepo,
		counterRepo:    counterRepo,
		linkGraph:      linkGraph,
	}
}

func (acs *adminCenterService) UpdateCenter(ctx context.Context, center *types.Center, in CenterUpdateInput) error {
	if name := normalization.ParseInputString(in.Name); name != "" {
		center.Name = name
	}
	if nameEn := normalization.ParseInputString(in.NameEn); nameEn != "" {
		center.NameEn = nameEn
	}
	if addr := normalization.ParseInputString(in.Address); addr != "" {
		center.Address = addr
	}
	if phone := normalization.ParseInputString(in.Phone); phone != "" {
		center.Phone = phone
	}
	if email := normalization.NormalizeEmail(in.Email); email != "" {
		center.Email = email
	}
	if desc := normalization.ParseInputString(in.Description); desc != "" {
		center.Description = desc
	}
	return acs.centerRepo.Save(ctx, nil, center)
}

// CreateSpecialist provisions a center-managed specialist account. Unlike
// self-registration the email is pre-verified, since the admin vouches for
// the address.
func (acs *adminCenterService) CreateSpecialist(ctx context.Context, center *types.Center, in CreateSpecialistInput) (*types.Specialist, error) {
	in.Name = normalization.ParseInputString(in.Name)
	in.Email = normalization.NormalizeEmail(in.Email)

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apierr.BadRequest("missing_fields", errors.New("يرجى إدخال الاسم والبريد الإلكتروني وكلمة المرور"))
	}
	if len(in.Password) < 6 {
		return nil, apierr.BadRequest("weak_password", errors.New("كلمة المرور يجب أن تكون 6 أحرف على الأقل"))
	}

	for _, exists := range []func(context.Context, *gorm.DB, string) (bool, error){
		acs.parentRepo.EmailExists,
		acs.specialistRepo.EmailExists,
		acs.adminRepo.EmailExists,
	} {
		taken, err := exists(ctx, nil, in.Email)
		if err != nil {
			return nil, fmt.Errorf("check email namespace: %w", err)
		}
		if taken {
			return nil, apierr.BadRequest("email_taken", errors.New("البريد الإلكتروني مستخدم بالفعل"))
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var specialist *types.Specialist
	err = acs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		staffID, sErr := nextDisplayID(ctx, tx, acs.counterRepo, types.CounterSpecialistStaff, "SP-", acs.specialistRepo.MaxStaffSeq)
		if sErr != nil {
			return sErr
		}
		specialist = &types.Specialist{
			Name:           in.Name,
			Email:          in.Email,
			Password:       string(hashed),
			Role:           types.RoleSpecialist,
			Phone:          in.Phone,
			Specialization: in.Specialization,
			LicenseNumber:  in.LicenseNumber,
			StaffID:        staffID,
			EmailVerified:  true,
		}
		if _, cErr := acs.specialistRepo.Create(ctx, tx, specialist); cErr != nil {
			return fmt.Errorf("create specialist: %w", cErr)
		}
		return acs.linkGraph.AttachSpecialistToCenter(ctx, tx, specialist.ID, center.ID)
	})
	if err != nil {
		return nil, err
	}
	acs.log.Info("Specialist provisioned", "specialist_id", specialist.ID.String(), "center_id", center.ID.String())
	specialist.CenterID = &center.ID
	return specialist, nil
}

func (acs *adminCenterService) ListSpecialists(ctx context.Context, center *types.Center) ([]SpecialistOverview, error) {
	specialists, err := acs.linkGraph.SpecialistsInCenter(ctx, center.ID)
	if err != nil {
		return nil, err
	}
	overviews := make([]SpecialistOverview, 0, len(specialists))
	for _, specialist := range specialists {
		parentIDs, pErr := acs.specialistRepo.LinkedParentIDs(ctx, nil, specialist.ID)
		if pErr != nil {
			return nil, pErr
		}
		assigned, cErr := acs.childRepo.CountByAssignedSpecialists(ctx, nil, []uuid.UUID{specialist.ID})
		if cErr != nil {
			return nil, cErr
		}
		overviews = append(overviews, SpecialistOverview{
			Specialist:        specialist,
			LinkedParentCount: len(parentIDs),
			AssignedChildren:  assigned,
		})
	}
	return overviews, nil
}

func (acs *adminCenterService) GetSpecialist(ctx context.Context, center *types.Center, specialistID uuid.UUID) (*SpecialistDetail, error) {
	specialist, err := acs.specialistInCenter(ctx, center, specialistID)
	if err != nil {
		return nil, err
	}
	parentIDs, err := acs.specialistRepo.LinkedParentIDs(ctx, nil, specialist.ID)
	if err != nil {
		return nil, err
	}
	parents, err := acs.parentRepo.GetByIDs(ctx, nil, parentIDs)
	if err != nil {
		return nil, err
	}
	children, err := acs.childRepo.GetReachable(ctx, nil, []uuid.UUID{specialist.ID}, parentIDs)
	if err != nil {
		return nil, err
	}
	return &SpecialistDetail{Specialist: specialist, LinkedParents: parents, Children: children}, nil
}

func (acs *adminCenterService) UpdateSpecialist(ctx context.Context, center *types.Center, specialistID uuid.UUID, in SpecialistUpdateInput) (*types.Specialist, error) {
	specialist, err := acs.specialistInCenter(ctx, center, specialistID)
	if err != nil {
		return nil, err
	}
	if name := normalization.ParseInputString(in.Name); name != "" {
		specialist.Name = name
	}
	if phone := normalization.ParseInputString(in.Phone); phone != "" {
		specialist.Phone = phone
	}
	if spec := normalization.ParseInputString(in.Specialization); spec != "" {
		specialist.Specialization = spec
	}
	if lic := normalization.ParseInputString(in.LicenseNumber); lic != "" {
		specialist.LicenseNumber = lic
	}
	if bio := normalization.ParseInputString(in.Bio); bio != "" {
		specialist.Bio = bio
	}
	if err := acs.specialistRepo.Save(ctx, nil, specialist); err != nil {
		return nil, err
	}
	return specialist, nil
}

// DeleteSpecialist removes the account and scrubs every edge that pointed at
// it, all in one transaction, so no child or parent is left referencing a
// specialist that no longer exists.
func (acs *adminCenterService) DeleteSpecialist(ctx context.Context, center *types.Center, specialistID uuid.UUID) error {
	specialist, err := acs.specialistInCenter(ctx, center, specialistID)
	if err != nil {
		return err
	}
	err = acs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cErr := acs.childRepo.ClearAssignedSpecialist(ctx, tx, specialist.ID); cErr != nil {
			return fmt.Errorf("clear assigned children: %w", cErr)
		}
		if pErr := acs.parentRepo.ClearLinkedSpecialist(ctx, tx, specialist.ID); pErr != nil {
			return fmt.Errorf("clear linked parents: %w", pErr)
		}
		if lErr := acs.specialistRepo.RemoveAllLinks(ctx, tx, specialist.ID); lErr != nil {
			return fmt.Errorf("remove link rows: %w", lErr)
		}
		if dErr := acs.specialistRepo.Delete(ctx, tx, specialist.ID); dErr != nil {
			return fmt.Errorf("delete specialist: %w", dErr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	acs.log.Info("Specialist removed", "specialist_id", specialist.ID.String(), "center_id", center.ID.String())
	return nil
}

// LinkParent connects a parent to one of the center's specialists on the
// admin's behalf. Scope is checked on the specialist only; parents are not
// partitioned by center.
func (acs *adminCenterService) LinkParent(ctx context.Context, center *types.Center, specialistID, parentID uuid.UUID) error {
	specialist, err := acs.specialistInCenter(ctx, center, specialistID)
	if err != nil {
		return err
	}
	return acs.linkGraph.LinkParentToSpecialist(ctx, specialist.ID, parentID)
}

func (acs *adminCenterService) UnlinkParent(ctx context.Context, center *types.Center, specialistID, parentID uuid.UUID) error {
	specialist, err := acs.specialistInCenter(ctx, center, specialistID)
	if err != nil {
		return err
	}
	return acs.linkGraph.UnlinkParentFromSpecialist(ctx, specialist.ID, parentID)
}

// AssignChild keeps the same precondition as the specialist-initiated flow:
// the child's parent must already be linked to the specialist.
func (acs *adminCenterService) AssignChild(ctx context.Context, center *types.Center, specialistID, childID uuid.UUID) error {
	specialist, err := acs.specialistInCenter(ctx, center, specialistID)
	if err != nil {
		return err
	}
	return acs.linkGraph.AssignChildToSpecialist(ctx, childID, specialist.ID)
}

func (acs *adminCenterService) UnassignChild(ctx context.Context, center *types.Center, specialistID, childID uuid.UUID) error {
	if _, err := acs.specialistInCenter(ctx, center, specialistID); err != nil {
		return err
	}
	return acs.linkGraph.UnassignChildFromSpecialist(ctx, childID)
}

func (acs *adminCenterService) SearchLinkableParents(ctx context.Context, center *types.Center, specialistID uuid.UUID, query string) ([]*types.Parent, error) {
	specialist, err := acs.specialistInCenter(ctx, center, specialistID)
	if err != nil {
		return nil, err
	}
	return acs.linkGraph.SearchLinkableParents(ctx, specialist.ID, query)
}

func (acs *adminCenterService) Stats(ctx context.Context, center *types.Center) (*CenterStats, error) {
	specialistCount, err := acs.specialistRepo.CountByCenterID(ctx, nil, center.ID)
	if err != nil {
		return nil, err
	}
	parents, err := acs.linkGraph.ParentsOfCenter(ctx, center.ID)
	if err != nil {
		return nil, err
	}
	children, err := acs.linkGraph.ChildrenOfCenter(ctx, center.ID)
	if err != nil {
		return nil, err
	}
	recent, err := acs.specialistRepo.RecentByCenterID(ctx, nil, center.ID, recentSpecialistsLimit)
	if err != nil {
		return nil, err
	}
	return &CenterStats{
		Specialists:       specialistCount,
		Parents:           len(parents),
		Children:          len(children),
		RecentSpecialists: recent,
	}, nil
}

func (acs *adminCenterService) Parents(ctx context.Context, center *types.Center) ([]*types.Parent, error) {
	return acs.linkGraph.ParentsOfCenter(ctx, center.ID)
}

func (acs *adminCenterService) Children(ctx context.Context, center *types.Center) ([]*types.Child, error) {
	return acs.linkGraph.ChildrenOfCenter(ctx, center.ID)
}

func (acs *adminCenterService) specialistInCenter(ctx context.Context, center *types.Center, specialistID uuid.UUID) (*types.Specialist, error) {
	specialist, err := acs.specialistRepo.GetByID(ctx, nil, specialistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("specialist_not_found", errors.New("الأخصائي غير موجود"))
		}
		return nil, err
	}
	if specialist.CenterID == nil || *specialist.CenterID != center.ID {
		return nil, apierr.NotFound("specialist_not_found", errors.New("الأخصائي غير موجود"))
	}
	return specialist, nil
}
