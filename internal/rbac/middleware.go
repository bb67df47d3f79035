package rbac

import (
	"net/http"

	"eventops-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAction resolves the caller's AccessContext and enforces one action.
// The event scope is taken from the :event_id path param, falling back to the
// event_id query param; when neither is present the check runs without an
// event scope (so only the account-role layer can allow).
//
// Denial is a normal outcome: 401 when no subject, 403 when the engine denies,
// 500 only when a role store fails.
func RequireAction(res *Resolver, eng *Engine, action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := auth.SubjectID(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		eventID := c.Param("event_id")
		if eventID == "" {
			eventID = c.Query("event_id")
		}

		ac, err := res.Resolve(c.Request.Context(), subject, eventID)
		if err != nil {
			// Store failures and timeouts fail closed.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authorization unavailable"})
			return
		}

		if !eng.Allows(action, ac) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
