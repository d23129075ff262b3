package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/middleware"
	"github.com/nutqapp/nutq-backend/internal/services"
)

type ChildHandler struct {
	childService services.ChildService
}

func NewChildHandler(childService services.ChildService) *ChildHandler {
	return &ChildHandler{childService: childService}
}

func (ch *ChildHandler) Create(c *gin.Context) {
	var req struct {
		Name              string  `json:"name"`
		Age               int     `json:"age"`
		Gender            string  `json:"gender"`
		BirthDate         *string `json:"birthDate"`
		DailyPlayDuration *int    `json:"dailyPlayDuration"`
		AvatarID          string  `json:"avatarId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	actor := middleware.ActorFrom(c)
	if actor.Parent == nil {
		RespondError(c, apierr.Forbidden("not_a_parent", errors.New("Only parents can create child profiles")))
		return
	}
	child, err := ch.childService.Create(c.Request.Context(), actor.Parent, services.CreateChildInput{
		Name:              req.Name,
		Age:               req.Age,
		Gender:            req.Gender,
		BirthDate:         req.BirthDate,
		DailyPlayDuration: req.DailyPlayDuration,
		AvatarID:          req.AvatarID,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, gin.H{"child": child})
}

func (ch *ChildHandler) ListMine(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Parent == nil {
		RespondError(c, apierr.Forbidden("not_a_parent", errors.New("Only parents can list their children")))
		return
	}
	children, err := ch.childService.ListMine(c.Request.Context(), actor.Parent)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"count": len(children), "children": children})
}

func (ch *ChildHandler) Get(c *gin.Context) {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid child id")))
		return
	}
	actor := middleware.ActorFrom(c)
	child, err := ch.childService.Get(c.Request.Context(), actor, childID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"child": child})
}
