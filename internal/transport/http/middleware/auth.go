package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hyeonbit/complex-admin/internal/core/domain"
	"github.com/hyeonbit/complex-admin/internal/usecase"
)

const (
	// ActorKey is the context key holding the resolved domain.Actor.
	ActorKey = "actor"
	// demoRoleHeader overrides the resolved role outside production.
	demoRoleHeader = "X-Demo-Role"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the Authorization header and resolves the actor's
// role. Outside production the X-Demo-Role header stands in for a token, or
// switches the role of an authenticated actor, for UI walkthroughs;
// production ignores it.
func RequireAuth(access *usecase.AccessService, allowDemoRole bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if allowDemoRole {
				if role, ok := domain.ParseRole(c.GetHeader(demoRoleHeader)); ok {
					setActor(c, domain.Actor{
						UserID: "demo-" + strings.ToLower(string(role)),
						Role:   role,
					})
					c.Next()
					return
				}
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		actor, err := access.Authenticate(c.Request.Context(), token)
		if err != nil {
			if err == usecase.ErrUnauthenticated {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid access token"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		if allowDemoRole {
			if raw := c.GetHeader(demoRoleHeader); raw != "" {
				if role, ok := domain.ParseRole(raw); ok {
					actor.Role = role
				}
			}
		}

		setActor(c, actor)
		c.Next()
	}
}

func setActor(c *gin.Context, actor domain.Actor) {
	c.Set(ActorKey, actor)
	c.Set(UserIDKey, actor.UserID)

	if reqCtx := GetRequestContext(c); reqCtx != nil {
		reqCtx.UserID = actor.UserID
	}
}

// RequireRole allows only the listed roles past this point.
func RequireRole(roles ...domain.RoleKey) gin.HandlerFunc {
	allowed := make(map[domain.RoleKey]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if !allowed[actor.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Next()
	}
}

// RequireAdmin allows SUPER, MAIN, and SUB past this point.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(domain.RoleSuper, domain.RoleMain, domain.RoleSub)
}

// GetActor retrieves the resolved actor from context.
func GetActor(c *gin.Context) (domain.Actor, bool) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return domain.Actor{}, false
	}
	actor, ok := value.(domain.Actor)
	return actor, ok
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok {
		return id, true
	}

	return "", false
}
