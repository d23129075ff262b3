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

type PlanInput struct {
	Letters        []types.LetterItem
	Words          []types.WordItem
	SessionName    string
	TargetDuration *int
	BreakDuration  *int
	MaxAttempts    *int
	StartDate      *time.Time
	EndDate        *time.Time
	AllowedDays    []int
}

type ContentInput struct {
	Letters []types.LetterItem
	Words   []types.WordItem
}

type ExerciseService interface {
	CreatePlan(ctx context.Context, actor *Actor, childID uuid.UUID, in PlanInput) (*types.Exercise, error)
	UpdatePlan(ctx context.Context, actor *Actor, exerciseID uuid.UUID, in PlanInput) (*types.Exercise, error)
	Deactivate(ctx context.Context, actor *Actor, exerciseID uuid.UUID) error
	ListByChild(ctx context.Context, actor *Actor, childID uuid.UUID, includeInactive bool) ([]*types.Exercise, error)
	ContentForChild(ctx context.Context, actor *Actor, childID uuid.UUID) (*types.Exercise, error)
	UpsertContent(ctx context.Context, actor *Actor, childID uuid.UUID, in ContentInput) (*types.Exercise, error)
}

type exerciseService struct {
	db           *gorm.DB
	log          *logger.Logger
	exerciseRepo repos.ExerciseRepo
	childRepo    repos.ChildRepo
	linkGraph    LinkGraphService
}

func NewExerciseService(db *gorm.DB, log *logger.Logger, exerciseRepo repos.ExerciseRepo, childRepo repos.ChildRepo, linkGraph LinkGraphService) ExerciseService {
	return &exerciseService{
		db:           db,
		log:          log.With("service", "ExerciseService"),
		exerciseRepo: exerciseRepo,
		childRepo:    childRepo,
		linkGraph:    linkGraph,
	}
}

// CreatePlan writes a new active plan for the child. Rotation is atomic:
// deactivating the old plans, picking the next session index and inserting
// the new plan happen in one transaction, so the child never ends up with
// two active plans or none.
func (es *exerciseService) CreatePlan(ctx context.Context, actor *Actor, childID uuid.UUID, in PlanInput) (*types.Exercise, error) {
	if len(in.Letters) == 0 && len(in.Words) == 0 {
		return nil, apierr.BadRequest("empty_plan", errors.New("plan must contain at least one letter or word"))
	}
	if in.TargetDuration == nil || in.BreakDuration == nil || in.MaxAttempts == nil {
		return nil, apierr.BadRequest("missing_fields", errors.New("targetDuration, breakDuration and maxAttempts are required"))
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, apierr.BadRequest("invalid_dates", errors.New("endDate must not precede startDate"))
	}
	for _, day := range in.AllowedDays {
		if day < 0 || day > 6 {
			return nil, apierr.BadRequest("invalid_days", errors.New("allowedDays entries must be between 0 and 6"))
		}
	}

	child, err := es.authorizedChild(ctx, actor, childID)
	if err != nil {
		return nil, err
	}

	var exercise *types.Exercise
	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := es.exerciseRepo.DeactivatePlans(ctx, tx, child.ID); dErr != nil {
			return fmt.Errorf("deactivate previous plans: %w", dErr)
		}
		maxIndex, mErr := es.exerciseRepo.MaxSessionIndex(ctx, tx, child.ID)
		if mErr != nil {
			return fmt.Errorf("read session index: %w", mErr)
		}
		sessionIndex := maxIndex + 1
		sessionName := normalization.ParseInputString(in.SessionName)
		if sessionName == "" {
			sessionName = fmt.Sprintf("Session %d", sessionIndex)
		}
		exercise = &types.Exercise{
			ChildID:        child.ID,
			Kind:           types.ExerciseKindPlan,
			SpecialistID:   es.planOwner(actor),
			Letters:        in.Letters,
			Words:          in.Words,
			SessionIndex:   sessionIndex,
			SessionName:    sessionName,
			TargetDuration: in.TargetDuration,
			BreakDuration:  in.BreakDuration,
			MaxAttempts:    in.MaxAttempts,
			StartDate:      in.StartDate,
			EndDate:        in.EndDate,
			AllowedDays:    in.AllowedDays,
			Active:         true,
		}
		if _, cErr := es.exerciseRepo.Create(ctx, tx, exercise); cErr != nil {
			return fmt.Errorf("create plan: %w", cErr)
		}

		// The child profile mirrors the active plan's targets.
		child.TargetLetters = letterStrings(in.Letters)
		child.TargetWords = wordStrings(in.Words)
		child.DifficultyLevel = dominantDifficulty(in.Letters, in.Words)
		if sErr := es.childRepo.Save(ctx, tx, child); sErr != nil {
			return fmt.Errorf("update child targets: %w", sErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	es.log.Info("Plan created", "child_uid", child.ChildID, "session_index", exercise.SessionIndex)
	return exercise, nil
}

func (es *exerciseService) UpdatePlan(ctx context.Context, actor *Actor, exerciseID uuid.UUID, in PlanInput) (*types.Exercise, error) {
	exercise, err := es.authorizedExercise(ctx, actor, exerciseID)
	if err != nil {
		return nil, err
	}
	if exercise.Kind != types.ExerciseKindPlan {
		return nil, apierr.BadRequest("not_a_plan", errors.New("only plan exercises can be updated here"))
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, apierr.BadRequest("invalid_dates", errors.New("endDate must not precede startDate"))
	}

	if len(in.Letters) > 0 {
		exercise.Letters = in.Letters
	}
	if len(in.Words) > 0 {
		exercise.Words = in.Words
	}
	if name := normalization.ParseInputString(in.SessionName); name != "" {
		exercise.SessionName = name
	}
	if in.TargetDuration != nil {
		exercise.TargetDuration = in.TargetDuration
	}
	if in.BreakDuration != nil {
		exercise.BreakDuration = in.BreakDuration
	}
	if in.MaxAttempts != nil {
		exercise.MaxAttempts = in.MaxAttempts
	}
	if in.StartDate != nil {
		exercise.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		exercise.EndDate = in.EndDate
	}
	if in.AllowedDays != nil {
		exercise.AllowedDays = in.AllowedDays
	}

	// Plans written before ownership was recorded carry no specialist;
	// adopt them on first touch.
	if exercise.SpecialistID == nil && actor.Specialist != nil {
		id := actor.Specialist.ID
		exercise.SpecialistID = &id
	}

	if err := es.exerciseRepo.Save(ctx, nil, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

func (es *exerciseService) Deactivate(ctx context.Context, actor *Actor, exerciseID uuid.UUID) error {
	exercise, err := es.authorizedExercise(ctx, actor, exerciseID)
	if err != nil {
		return err
	}
	exercise.Active = false
	return es.exerciseRepo.Save(ctx, nil, exercise)
}

func (es *exerciseService) ListByChild(ctx context.Context, actor *Actor, childID uuid.UUID, includeInactive bool) ([]*types.Exercise, error) {
	if _, err := es.authorizedChild(ctx, actor, childID); err != nil {
		return nil, err
	}
	return es.exerciseRepo.ListByChild(ctx, nil, childID, includeInactive)
}

// ContentForChild returns the child's content document, or nil when none
// exists yet and the caller should fall back to the built-in defaults.
func (es *exerciseService) ContentForChild(ctx context.Context, actor *Actor, childID uuid.UUID) (*types.Exercise, error) {
	if _, err := es.authorizedChild(ctx, actor, childID); err != nil {
		return nil, err
	}
	return es.exerciseRepo.GetContentByChild(ctx, nil, childID)
}

// UpsertContent keeps at most one content document per child. The unique
// partial index on exercises(child_id) backs this up at the database level.
func (es *exerciseService) UpsertContent(ctx context.Context, actor *Actor, childID uuid.UUID, in ContentInput) (*types.Exercise, error) {
	if len(in.Letters) == 0 && len(in.Words) == 0 {
		return nil, apierr.BadRequest("empty_content", errors.New("content must contain at least one letter or word"))
	}
	child, err := es.authorizedChild(ctx, actor, childID)
	if err != nil {
		return nil, err
	}

	var content *types.Exercise
	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gErr := es.exerciseRepo.GetContentByChild(ctx, tx, child.ID)
		if gErr != nil {
			return gErr
		}
		if existing != nil {
			existing.Letters = in.Letters
			existing.Words = in.Words
			if existing.SpecialistID == nil && actor.Specialist != nil {
				id := actor.Specialist.ID
				existing.SpecialistID = &id
			}
			content = existing
			return es.exerciseRepo.Save(ctx, tx, existing)
		}
		content = &types.Exercise{
			ChildID:      child.ID,
			Kind:         types.ExerciseKindContent,
			SpecialistID: es.planOwner(actor),
			Letters:      in.Letters,
			Words:        in.Words,
			Active:       true,
		}
		_, cErr := es.exerciseRepo.Create(ctx, tx, content)
		return cErr
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (es *exerciseService) authorizedChild(ctx context.Context, actor *Actor, childID uuid.UUID) (*types.Child, error) {
	child, err := es.childRepo.GetByID(ctx, nil, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("child_not_found", errors.New("Child not found"))
		}
		return nil, err
	}
	switch {
	case actor.Admin != nil:
		// Admin reach stops at the center boundary: the child must be
		// reachable through one of the center's specialists.
		center, cErr := es.linkGraph.CenterOf(ctx, actor.Admin)
		if cErr != nil {
			if errors.Is(cErr, ErrNoCenterAccess) {
				return nil, apierr.Forbidden("not_authorized", errors.New("Not authorized to manage exercises for this child"))
			}
			return nil, cErr
		}
		reachable, rErr := es.linkGraph.ChildrenOfCenter(ctx, center.ID)
		if rErr != nil {
			return nil, rErr
		}
		for _, c := range reachable {
			if c.ID == child.ID {
				return child, nil
			}
		}
		return nil, apierr.Forbidden("not_authorized", errors.New("Not authorized to manage exercises for this child"))
	case actor.Specialist != nil:
		allowed, aErr := es.linkGraph.CanSpecialistActOnChild(ctx, actor.Specialist.ID, child)
		if aErr != nil {
			return nil, aErr
		}
		if !allowed {
			return nil, apierr.Forbidden("not_authorized", errors.New("Not authorized to manage exercises for this child"))
		}
		return child, nil
	case actor.Parent != nil:
		if !es.linkGraph.CanParentActOnChild(actor.Parent.ID, child) {
			return nil, apierr.Forbidden("not_authorized", errors.New("Not authorized to manage exercises for this child"))
		}
		return child, nil
	default:
		return nil, apierr.Forbidden("not_authorized", errors.New("Not authorized to manage exercises for this child"))
	}
}

func (es *exerciseService) authorizedExercise(ctx context.Context, actor *Actor, exerciseID uuid.UUID) (*types.Exercise, error) {
	exercise, err := es.exerciseRepo.GetByID(ctx, nil, exerciseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("exercise_not_found", errors.New("Exercise not found"))
		}
		return nil, err
	}
	// The authoring specialist keeps access to their own plans even if the
	// parent link or child assignment is later removed.
	if exercise.SpecialistID != nil && actor.Specialist != nil && *exercise.SpecialistID == actor.Specialist.ID {
		return exercise, nil
	}
	if _, err := es.authorizedChild(ctx, actor, exercise.ChildID); err != nil {
		return nil, err
	}
	return exercise, nil
}

func (es *exerciseService) planOwner(actor *Actor) *uuid.UUID {
	if actor.Specialist != nil {
		id := actor.Specialist.ID
		return &id
	}
	return nil
}

func letterStrings(letters []types.LetterItem) []string {
	out := make([]string, 0, len(letters))
	for _, l := range letters {
		out = append(out, l.Letter)
	}
	return out
}

func wordStrings(words []types.WordItem) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w.Word)
	}
	return out
}

// dominantDifficulty picks the most frequent difficulty label among the
// plan's items, defaulting to "easy" when nothing is tagged.
func dominantDifficulty(letters []types.LetterItem, words []types.WordItem) string {
	counts := map[string]int{}
	for _, l := range letters {
		if l.Difficulty != "" {
			counts[l.Difficulty]++
		}
	}
	for _, w := range words {
		if w.Difficulty != "" {
			counts[w.Difficulty]++
		}
	}
	best, bestCount := "easy", 0
	for _, level := range []string{"easy", "medium", "hard"} {
		if counts[level] > bestCount {
			best, bestCount = level, counts[level]
		}
	}
	return best
}
