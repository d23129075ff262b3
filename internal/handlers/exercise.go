package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/middleware"
	"github.com/nutqapp/nutq-backend/internal/services"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type ExerciseHandler struct {
	exerciseService services.ExerciseService
}

func NewExerciseHandler(exerciseService services.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

type planRequest struct {
	ChildID        string             `json:"childId"`
	Letters        []types.LetterItem `json:"letters"`
	Words          []types.WordItem   `json:"words"`
	SessionName    string             `json:"sessionName"`
	TargetDuration *int               `json:"targetDuration"`
	BreakDuration  *int               `json:"breakDuration"`
	MaxAttempts    *int               `json:"maxAttempts"`
	StartDate      *time.Time         `json:"startDate"`
	EndDate        *time.Time         `json:"endDate"`
	AllowedDays    []int              `json:"allowedDays"`
}

func (pr planRequest) toInput() services.PlanInput {
	return services.PlanInput{
		Letters:        pr.Letters,
		Words:          pr.Words,
		SessionName:    pr.SessionName,
		TargetDuration: pr.TargetDuration,
		BreakDuration:  pr.BreakDuration,
		MaxAttempts:    pr.MaxAttempts,
		StartDate:      pr.StartDate,
		EndDate:        pr.EndDate,
		AllowedDays:    pr.AllowedDays,
	}
}

func (eh *ExerciseHandler) CreatePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	childID, err := uuid.Parse(req.ChildID)
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid child id")))
		return
	}
	actor := middleware.ActorFrom(c)
	plan, err := eh.exerciseService.CreatePlan(c.Request.Context(), actor, childID, req.toInput())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, gin.H{"exercise": plan})
}

func (eh *ExerciseHandler) UpdatePlan(c *gin.Context) {
	exerciseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid exercise id")))
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	actor := middleware.ActorFrom(c)
	plan, err := eh.exerciseService.UpdatePlan(c.Request.Context(), actor, exerciseID, req.toInput())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"exercise": plan})
}

func (eh *ExerciseHandler) Deactivate(c *gin.Context) {
	exerciseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid exercise id")))
		return
	}
	actor := middleware.ActorFrom(c)
	if err := eh.exerciseService.Deactivate(c.Request.Context(), actor, exerciseID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Exercise deactivated"})
}

func (eh *ExerciseHandler) ListByChild(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid child id")))
		return
	}
	includeInactive := c.Query("includeInactive") == "true"
	actor := middleware.ActorFrom(c)
	exercises, err := eh.exerciseService.ListByChild(c.Request.Context(), actor, childID, includeInactive)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"count": len(exercises), "exercises": exercises})
}

// Content returns the child's content document, falling back to the built-in
// letters and words when no specialist has customized it yet.
func (eh *ExerciseHandler) Content(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid child id")))
		return
	}
	actor := middleware.ActorFrom(c)
	content, err := eh.exerciseService.ContentForChild(c.Request.Context(), actor, childID)
	if err != nil {
		RespondError(c, err)
		return
	}
	if content == nil {
		RespondOK(c, http.StatusOK, gin.H{
			"isDefault": true,
			"letters":   defaultLetters,
			"words":     defaultWords,
		})
		return
	}
	RespondOK(c, http.StatusOK, gin.H{
		"isDefault": false,
		"letters":   content.Letters,
		"words":     content.Words,
	})
}

func (eh *ExerciseHandler) UpsertContent(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid child id")))
		return
	}
	var req struct {
		Letters []types.LetterItem `json:"letters"`
		Words   []types.WordItem   `json:"words"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	actor := middleware.ActorFrom(c)
	content, err := eh.exerciseService.UpsertContent(c.Request.Context(), actor, childID, services.ContentInput{
		Letters: req.Letters,
		Words:   req.Words,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"exercise": content})
}

// DefaultLetters serves the built-in Arabic alphabet. Public route.
func (eh *ExerciseHandler) DefaultLetters(c *gin.Context) {
	RespondOK(c, http.StatusOK, gin.H{"letters": defaultLetters})
}

// DefaultWords serves the built-in Libyan dialect vocabulary. Public route.
func (eh *ExerciseHandler) DefaultWords(c *gin.Context) {
	RespondOK(c, http.StatusOK, gin.H{"words": defaultWords})
}
