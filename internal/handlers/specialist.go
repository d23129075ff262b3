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

type SpecialistHandler struct {
	linkGraph services.LinkGraphService
}

func NewSpecialistHandler(linkGraph services.LinkGraphService) *SpecialistHandler {
	return &SpecialistHandler{linkGraph: linkGraph}
}

func (sh *SpecialistHandler) SearchParents(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Specialist == nil {
		RespondError(c, apierr.Forbidden("not_a_specialist", errors.New("Only specialists can search for parents")))
		return
	}
	query := c.Query("q")
	if query == "" {
		RespondError(c, apierr.BadRequest("missing_query", errors.New("search query is required")))
		return
	}
	parents, err := sh.linkGraph.SearchLinkableParents(c.Request.Context(), actor.Specialist.ID, query)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"count": len(parents), "parents": parents})
}

func (sh *SpecialistHandler) LinkParent(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Specialist == nil {
		RespondError(c, apierr.Forbidden("not_a_specialist", errors.New("Only specialists can link parents")))
		return
	}
	var req struct {
		ParentID string `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	parentID, err := uuid.Parse(req.ParentID)
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid parent id")))
		return
	}
	if err := sh.linkGraph.LinkParentToSpecialist(c.Request.Context(), actor.Specialist.ID, parentID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Parent linked successfully"})
}

func (sh *SpecialistHandler) UnlinkParent(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Specialist == nil {
		RespondError(c, apierr.Forbidden("not_a_specialist", errors.New("Only specialists can unlink parents")))
		return
	}
	parentID, err := uuid.Parse(c.Param("parentId"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid parent id")))
		return
	}
	if err := sh.linkGraph.UnlinkParentFromSpecialist(c.Request.Context(), actor.Specialist.ID, parentID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Parent unlinked successfully"})
}

func (sh *SpecialistHandler) MyParents(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Specialist == nil {
		RespondError(c, apierr.Forbidden("not_a_specialist", errors.New("Only specialists can list linked parents")))
		return
	}
	parents, err := sh.linkGraph.LinkedParents(c.Request.Context(), actor.Specialist.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"count": len(parents), "parents": parents})
}

func (sh *SpecialistHandler) MyChildren(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Specialist == nil {
		RespondError(c, apierr.Forbidden("not_a_specialist", errors.New("Only specialists can list reachable children")))
		return
	}
	children, err := sh.linkGraph.ReachableChildren(c.Request.Context(), actor.Specialist.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"count": len(children), "children": children})
}

func (sh *SpecialistHandler) AssignChild(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Specialist == nil {
		RespondError(c, apierr.Forbidden("not_a_specialist", errors.New("Only specialists can assign children")))
		return
	}
	var req struct {
		ChildID string `json:"childId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	childID, err := uuid.Parse(req.ChildID)
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid child id")))
		return
	}
	if err := sh.linkGraph.AssignChildToSpecialist(c.Request.Context(), childID, actor.Specialist.ID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Child assigned successfully"})
}

func (sh *SpecialistHandler) UnassignChild(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.Specialist == nil {
		RespondError(c, apierr.Forbidden("not_a_specialist", errors.New("Only specialists can unassign children")))
		return
	}
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid child id")))
		return
	}
	if err := sh.linkGraph.UnassignChildFromSpecialist(c.Request.Context(), childID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "Child unassigned successfully"})
}
