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

type AdminHandler struct {
	adminCenterService services.AdminCenterService
}

func NewAdminHandler(adminCenterService services.AdminCenterService) *AdminHandler {
	return &AdminHandler{adminCenterService: adminCenterService}
}

func (ah *AdminHandler) GetCenter(c *gin.Context) {
	center := middleware.CenterFrom(c)
	RespondOK(c, http.StatusOK, gin.H{"center": center})
}

func (ah *AdminHandler) UpdateCenter(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		NameEn      string `json:"nameEn"`
		Address     string `json:"address"`
		Phone       string `json:"phone"`
		Email       string `json:"email"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	center := middleware.CenterFrom(c)
	if err := ah.adminCenterService.UpdateCenter(c.Request.Context(), center, services.CenterUpdateInput{
		Name:        req.Name,
		NameEn:      req.NameEn,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		Description: req.Description,
	}); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"center": center})
}

func (ah *AdminHandler) CreateSpecialist(c *gin.Context) {
	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		Phone          string `json:"phone"`
		Specialization string `json:"specialization"`
		LicenseNumber  string `json:"licenseNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	center := middleware.CenterFrom(c)
	specialist, err := ah.adminCenterService.CreateSpecialist(c.Request.Context(), center, services.CreateSpecialistInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		LicenseNumber:  req.LicenseNumber,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusCreated, gin.H{"specialist": specialist, "message": "تم إنشاء حساب الأخصائي بنجاح"})
}

func (ah *AdminHandler) ListSpecialists(c *gin.Context) {
	center := middleware.CenterFrom(c)
	specialists, err := ah.adminCenterService.ListSpecialists(c.Request.Context(), center)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"count": len(specialists), "specialists": specialists})
}

func (ah *AdminHandler) GetSpecialist(c *gin.Context) {
	specialistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid specialist id")))
		return
	}
	center := middleware.CenterFrom(c)
	detail, err := ah.adminCenterService.GetSpecialist(c.Request.Context(), center, specialistID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{
		"specialist":    detail.Specialist,
		"linkedParents": detail.LinkedParents,
		"children":      detail.Children,
	})
}

func (ah *AdminHandler) UpdateSpecialist(c *gin.Context) {
	specialistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid specialist id")))
		return
	}
	var req struct {
		Name           string `json:"name"`
		Phone          string `json:"phone"`
		Specialization string `json:"specialization"`
		LicenseNumber  string `json:"licenseNumber"`
		Bio            string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.BadRequest("invalid_body", errors.New("invalid request body")))
		return
	}
	center := middleware.CenterFrom(c)
	specialist, err := ah.adminCenterService.UpdateSpecialist(c.Request.Context(), center, specialistID, services.SpecialistUpdateInput{
		Name:           req.Name,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		LicenseNumber:  req.LicenseNumber,
		Bio:            req.Bio,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"specialist": specialist})
}

func (ah *AdminHandler) DeleteSpecialist(c *gin.Context) {
	specialistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid specialist id")))
		return
	}
	center := middleware.CenterFrom(c)
	if err := ah.adminCenterService.DeleteSpecialist(c.Request.Context(), center, specialistID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "تم حذف الأخصائي بنجاح"})
}

func (ah *AdminHandler) LinkParent(c *gin.Context) {
	specialistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid specialist id")))
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
	center := middleware.CenterFrom(c)
	if err := ah.adminCenterService.LinkParent(c.Request.Context(), center, specialistID, parentID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "تم ربط ولي الأمر بالأخصائي بنجاح"})
}

func (ah *AdminHandler) UnlinkParent(c *gin.Context) {
	specialistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid specialist id")))
		return
	}
	parentID, err := uuid.Parse(c.Param("parentId"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid parent id")))
		return
	}
	center := middleware.CenterFrom(c)
	if err := ah.adminCenterService.UnlinkParent(c.Request.Context(), center, specialistID, parentID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "تم إلغاء ربط ولي الأمر بنجاح"})
}

func (ah *AdminHandler) AssignChild(c *gin.Context) {
	specialistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid specialist id")))
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
	center := middleware.CenterFrom(c)
	if err := ah.adminCenterService.AssignChild(c.Request.Context(), center, specialistID, childID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "تم إسناد الطفل للأخصائي بنجاح"})
}

func (ah *AdminHandler) UnassignChild(c *gin.Context) {
	specialistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid specialist id")))
		return
	}
	childID, err := uuid.Parse(c.Param("childId"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid child id")))
		return
	}
	center := middleware.CenterFrom(c)
	if err := ah.adminCenterService.UnassignChild(c.Request.Context(), center, specialistID, childID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"message": "تم إلغاء إسناد الطفل بنجاح"})
}

func (ah *AdminHandler) SearchParents(c *gin.Context) {
	specialistID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.BadRequest("invalid_id", errors.New("invalid specialist id")))
		return
	}
	query := c.Query("q")
	if query == "" {
		RespondError(c, apierr.BadRequest("missing_query", errors.New("search query is required")))
		return
	}
	center := middleware.CenterFrom(c)
	parents, err := ah.adminCenterService.SearchLinkableParents(c.Request.Context(), center, specialistID, query)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"count": len(parents), "parents": parents})
}

func (ah *AdminHandler) Stats(c *gin.Context) {
	center := middleware.CenterFrom(c)
	stats, err := ah.adminCenterService.Stats(c.Request.Context(), center)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"stats": stats})
}

func (ah *AdminHandler) Parents(c *gin.Context) {
	center := middleware.CenterFrom(c)
	parents, err := ah.adminCenterService.Parents(c.Request.Context(), center)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"count": len(parents), "parents": parents})
}

func (ah *AdminHandler) Children(c *gin.Context) {
	center := middleware.CenterFrom(c)
	children, err := ah.adminCenterService.Children(c.Request.Context(), center)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, http.StatusOK, gin.H{"count": len(children), "children": children})
}
