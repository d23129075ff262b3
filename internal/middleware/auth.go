package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/services"
	"github.com/nutqapp/nutq-backend/internal/types"
)

const (
	actorKey  = "actor"
	centerKey = "center"
)

type AuthMiddleware struct {
	log       *logger.Logger
	tokens    services.TokenService
	resolver  services.ActorResolver
	linkGraph services.LinkGraphService
}

func NewAuthMiddleware(log *logger.Logger, tokens services.TokenService, resolver services.ActorResolver, linkGraph services.LinkGraphService) *AuthMiddleware {
	return &AuthMiddleware{
		log:       log.With("middleware", "auth"),
		tokens:    tokens,
		resolver:  resolver,
		linkGraph: linkGraph,
	}
}

// RequireAuth extracts the bearer token, verifies it and resolves the actor
// behind it. Every failure mode gets the same generic message.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		actorID, role, err := am.tokens.Verify(tokenString)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		actor, err := am.resolver.Resolve(c.Request.Context(), actorID, role)
		if err != nil {
			am.log.Debug("Actor resolution failed", "actor_id", actorID.String(), "error", err)
			abortUnauthorized(c)
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// Authorize gates the route to the given roles. RequireAuth must run first.
func (am *AuthMiddleware) Authorize(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			abortUnauthorized(c)
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "User role '" + actor.Role.String() + "' is not authorized to access this route",
		})
	}
}

func (am *AuthMiddleware) RequireVerifiedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			abortUnauthorized(c)
			return
		}
		if !actor.EmailVerified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Please verify your email address to access this resource",
			})
			return
		}
		c.Next()
	}
}

// RequireCenterAccess resolves the admin's center and stashes it on the
// context. Superadmins without a center and admins pointing at a center they
// do not own are both rejected.
func (am *AuthMiddleware) RequireCenterAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil || actor.Admin == nil {
			abortUnauthorized(c)
			return
		}
		if actor.Admin.CenterID == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "لا يوجد مركز مرتبط بحسابك",
			})
			return
		}
		center, err := am.linkGraph.CenterOf(c.Request.Context(), actor.Admin)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "غير مصرح للوصول إلى هذا المركز",
			})
			return
		}
		c.Set(centerKey, center)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Not authorized to access this route",
	})
}

// ActorFrom returns the authenticated actor, or nil when RequireAuth has not
// run on this request.
func ActorFrom(c *gin.Context) *services.Actor {
	value, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, ok := value.(*services.Actor)
	if !ok {
		return nil
	}
	return actor
}

// CenterFrom returns the center resolved by RequireCenterAccess, or nil.
func CenterFrom(c *gin.Context) *types.Center {
	value, ok := c.Get(centerKey)
	if !ok {
		return nil
	}
	center, ok := value.(*types.Center)
	if !ok {
		return nil
	}
	return center
}
