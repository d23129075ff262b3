package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/normalization"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/types"
)

const (
	minChildAge = 4
	maxChildAge = 5
)

type CreateChildInput struct {
	Name              string
	Age               int
	Gender            string
	BirthDate         *string
	DailyPlayDuration *int
	AvatarID          string
}

type ChildService interface {
	Create(ctx context.Context, parent *types.Parent, in CreateChildInput) (*types.Child, error)
	Get(ctx context.Context, actor *Actor, childID uuid.UUID) (*types.Child, error)
	ListMine(ctx context.Context, parent *types.Parent) ([]*types.Child, error)
}

type childService struct {
	db          *gorm.DB
	log         *logger.Logger
	childRepo   repos.ChildRepo
	counterRepo repos.CounterRepo
	linkGraph   LinkGraphService
}

func NewChildService(db *gorm.DB, log *logger.Logger, childRepo repos.ChildRepo, counterRepo repos.CounterRepo, linkGraph LinkGraphService) ChildService {
	return &childService{
		db:          db,
		log:         log.With("service", "ChildService"),
		childRepo:   childRepo,
		counterRepo: counterRepo,
		linkGraph:   linkGraph,
	}
}

func (cs *childService) Create(ctx context.Context, parent *types.Parent, in CreateChildInput) (*types.Child, error) {
	in.Name = normalization.ParseInputString(in.Name)
	in.Gender = normalization.ParseInputString(in.Gender)

	if in.Name == "" {
		return nil, apierr.BadRequest("missing_name", errors.New("Child name is required"))
	}
	if in.Age < minChildAge || in.Age > maxChildAge {
		return nil, apierr.BadRequest("invalid_age", fmt.Errorf("age must be between %d and %d", minChildAge, maxChildAge))
	}
	if in.Gender != "male" && in.Gender != "female" {
		return nil, apierr.BadRequest("invalid_gender", errors.New("gender must be male or female"))
	}

	var birthDate *time.Time
	if in.BirthDate != nil && *in.BirthDate != "" {
		parsed, pErr := time.Parse("2006-01-02", *in.BirthDate)
		if pErr != nil {
			return nil, apierr.BadRequest("invalid_birth_date", errors.New("birthDate must be YYYY-MM-DD"))
		}
		birthDate = &parsed
	}

	avatarID := in.AvatarID
	if avatarID == "" {
		if in.Gender == "female" {
			avatarID = "avatar_02"
		} else {
			avatarID = "avatar_01"
		}
	}

	var child *types.Child
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		displayID, err := nextDisplayID(ctx, tx, cs.counterRepo, types.CounterChildID, "CH-", cs.childRepo.MaxChildSeq)
		if err != nil {
			return err
		}
		child = &types.Child{
			Name:              in.Name,
			Age:               in.Age,
			BirthDate:         birthDate,
			Gender:            in.Gender,
			ParentID:          parent.ID,
			DailyPlayDuration: in.DailyPlayDuration,
			ChildID:           displayID,
			AvatarID:          avatarID,
			Active:            true,
		}
		if _, err := cs.childRepo.Create(ctx, tx, child); err != nil {
			return fmt.Errorf("create child: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cs.log.Info("Child profile created", "child_uid", child.ChildID, "parent_id", parent.ID.String())
	return child, nil
}

func (cs *childService) Get(ctx context.Context, actor *Actor, childID uuid.UUID) (*types.Child, error) {
	child, err := cs.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("child_not_found", errors.New("Child not found"))
		}
		return nil, err
	}
	allowed, err := cs.canActOn(ctx, actor, child)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apierr.Forbidden("not_authorized", errors.New("Not authorized to access this child"))
	}
	return child, nil
}

func (cs *childService) ListMine(ctx context.Context, parent *types.Parent) ([]*types.Child, error) {
	return cs.childRepo.GetByParentID(ctx, nil, parent.ID)
}

func (cs *childService) canActOn(ctx context.Context, actor *Actor, child *types.Child) (bool, error) {
	switch {
	case actor.Parent != nil:
		return cs.linkGraph.CanParentActOnChild(actor.Parent.ID, child), nil
	case actor.Specialist != nil:
		return cs.linkGraph.CanSpecialistActOnChild(ctx, actor.Specialist.ID, child)
	case actor.Admin != nil:
		center, err := cs.linkGraph.CenterOf(ctx, actor.Admin)
		if err != nil {
			if errors.Is(err, ErrNoCenterAccess) {
				return false, nil
			}
			return false, err
		}
		reachable, err := cs.linkGraph.ChildrenOfCenter(ctx, center.ID)
		if err != nil {
			return false, err
		}
		for _, c := range reachable {
			if c.ID == child.ID {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}
