package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nutqapp/nutq-backend/internal/handlers"
	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/middleware"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/services"
	"github.com/nutqapp/nutq-backend/internal/types"
)

type routerFixture struct {
	db     *gorm.DB
	engine *gin.Engine
	tokens services.TokenService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Parent{}, &types.Specialist{}, &types.SpecialistParentLink{},
		&types.Admin{}, &types.Center{}, &types.Child{}, &types.Exercise{}, &types.Counter{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	parentRepo := repos.NewParentRepo(db, log)
	specialistRepo := repos.NewSpecialistRepo(db, log)
	adminRepo := repos.NewAdminRepo(db, log)
	centerRepo := repos.NewCenterRepo(db, log)
	childRepo := repos.NewChildRepo(db, log)
	exerciseRepo := repos.NewExerciseRepo(db, log)
	counterRepo := repos.NewCounterRepo(db, log)

	tokens := services.NewTokenService(log, "router-test-secret", time.Hour)
	mailer := services.NewLogMailer(log)
	resolver := services.NewActorResolver(log, parentRepo, specialistRepo, adminRepo)
	linkGraph := services.NewLinkGraphService(db, log, parentRepo, specialistRepo, centerRepo, childRepo)
	authService := services.NewAuthService(db, log, parentRepo, specialistRepo, adminRepo, centerRepo, counterRepo, tokens, mailer)
	childService := services.NewChildService(db, log, childRepo, counterRepo, linkGraph)
	exerciseService := services.NewExerciseService(db, log, exerciseRepo, childRepo, linkGraph)
	adminCenterService := services.NewAdminCenterService(db, log, parentRepo, specialistRepo, adminRepo, centerRepo, childRepo, counterRepo, linkGraph)

	engine := NewRouter(RouterConfig{
		AllowOrigins:      []string{"*"},
		AuthMiddleware:    middleware.NewAuthMiddleware(log, tokens, resolver, linkGraph),
		AuthHandler:       handlers.NewAuthHandler(authService),
		ChildHandler:      handlers.NewChildHandler(childService),
		ExerciseHandler:   handlers.NewExerciseHandler(exerciseService),
		SpecialistHandler: handlers.NewSpecialistHandler(linkGraph),
		AdminHandler:      handlers.NewAdminHandler(adminCenterService),
	})
	return &routerFixture{db: db, engine: engine, tokens: tokens}
}

func (f *routerFixture) post(t *testing.T, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_PlanAuthoringGates(t *testing.T) {
	f := newRouterFixture(t)

	specialist := &types.Specialist{Name: "Dr. Sara", Email: "sara@example.com", Password: "x", Role: types.RoleSpecialist, StaffID: "SP-0001", EmailVerified: true}
	unverified := &types.Specialist{Name: "Dr. Omar", Email: "omar@example.com", Password: "x", Role: types.RoleSpecialist, StaffID: "SP-0002"}
	admin := &types.Admin{Name: "Manager", Email: "admin@example.com", Password: "x", Role: types.RoleAdmin, StaffID: "AD-0001"}
	parent := &types.Parent{Name: "Umm Ali", Email: "parent@example.com", Password: "x", Role: types.RoleParent, StaffID: "PT-0001"}
	for _, rec := range []any{specialist, unverified, admin, parent} {
		if err := f.db.Create(rec).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	child := &types.Child{Name: "Ali", Age: 4, Gender: "male", ParentID: parent.ID, ChildID: "CH-0001", Active: true}
	if err := f.db.Create(child).Error; err != nil {
		t.Fatalf("seed child: %v", err)
	}
	if err := f.db.Create(&types.SpecialistParentLink{SpecialistID: specialist.ID, ParentID: parent.ID}).Error; err != nil {
		t.Fatalf("seed link: %v", err)
	}
	body := `{"childId":"` + child.ID.String() + `","letters":[{"letter":"ب","difficulty":"easy"}],"targetDuration":10,"breakDuration":2,"maxAttempts":3}`

	verifiedToken, err := f.tokens.Issue(specialist.ID, types.RoleSpecialist)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if w := f.post(t, "/api/exercises", verifiedToken, body); w.Code != http.StatusCreated {
		t.Fatalf("verified linked specialist: want 201, got %d: %s", w.Code, w.Body.String())
	}

	unverifiedToken, err := f.tokens.Issue(unverified.ID, types.RoleSpecialist)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if w := f.post(t, "/api/exercises", unverifiedToken, body); w.Code != http.StatusForbidden {
		t.Fatalf("unverified specialist: want 403, got %d", w.Code)
	}

	adminToken, err := f.tokens.Issue(admin.ID, types.RoleAdmin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if w := f.post(t, "/api/exercises", adminToken, body); w.Code != http.StatusForbidden {
		t.Fatalf("admin authoring: want 403, got %d", w.Code)
	}

	parentToken, err := f.tokens.Issue(parent.ID, types.RoleParent)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if w := f.post(t, "/api/exercises", parentToken, body); w.Code != http.StatusForbidden {
		t.Fatalf("parent authoring: want 403, got %d", w.Code)
	}
}
