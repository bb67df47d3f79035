package httpapi

import (
	"errors"
	"net/http"
	"time"

	"eventops-platform/internal/admin"
	"eventops-platform/internal/audit"
	"eventops-platform/internal/auth"
	"eventops-platform/internal/grant"
	"eventops-platform/internal/rbac"
	"eventops-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth   *auth.Manager
	Grants *grant.Service
	Admin  *admin.Service
	Audit  *audit.Service
}

// --- Auth ---

type loginRequest struct {
	SubjectID string `json:"subject_id"`
	Email     string `json:"email"`
}

// Login issues a JWT token pair.
//
// NOTE: Dev convenience only; credential validation against the identity
// provider happens upstream in production deployments.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.SubjectID == "" || req.Email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "subject_id, email required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.SubjectID, req.Email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func (h Handlers) Me(c *gin.Context) {
	sub, err := auth.SubjectID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	email, _ := auth.Email(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"subject_id": sub, "email": email})
}

// --- Upload grants ---

// IssueUploadGrant is the grant issuance endpoint: the client asks for a
// single-use upload slot and gets back the sole permissible destination.
func (h Handlers) IssueUploadGrant(c *gin.Context) {
	if h.Grants == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "grants not configured"})
		return
	}
	subject, err := auth.SubjectID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req grant.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	// The route parameter is authoritative: it is what the permission
	// check upstream resolved against.
	if p := c.Param("event_id"); p != "" {
		req.EventID = p
	}

	issued, err := h.Grants.Issue(c.Request.Context(), subject, req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		case errors.Is(err, grant.ErrInvalidRequest):
			// Surface the specific violated constraint.
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.FromGin(c).Error("grant issuance failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "grant issuance failed"})
		}
		return
	}

	if h.Audit != nil {
		_ = h.Audit.LogGrant(c.Request.Context(), audit.EventTypeGrantIssued, subject, req.EventID, issued.GrantID, "upload grant issued")
	}

	c.JSON(http.StatusOK, gin.H{
		"grant_id":               issued.GrantID,
		"target_path":            issued.TargetPath,
		"expires_at_epoch_millis": issued.ExpiresAt.UnixMilli(),
	})
}

// --- Admin: roles & approvals ---

type setAccountRoleRequest struct {
	SubjectID string `json:"subject_id"`
	Role      string `json:"role"`
}

func (h Handlers) SetAccountRole(c *gin.Context) {
	if h.Admin == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "admin not configured"})
		return
	}
	actor, err := auth.SubjectID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	var req setAccountRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	role, ok := rbac.ParseAccountRole(req.Role)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	if err := h.Admin.SetAccountRole(c.Request.Context(), actor, req.SubjectID, role); err != nil {
		abortAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type setEventRoleRequest struct {
	SubjectID string `json:"subject_id"`
	Role      string `json:"role"`
	SubRole   string `json:"sub_role,omitempty"`
}

func (h Handlers) SetEventRole(c *gin.Context) {
	if h.Admin == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "admin not configured"})
		return
	}
	actor, err := auth.SubjectID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	eventID := c.Param("event_id")
	var req setEventRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Admin.SetEventRole(c.Request.Context(), actor, req.SubjectID, eventID, rbac.EventRole(req.Role), rbac.EventSubRole(req.SubRole)); err != nil {
		abortAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type decideApprovalRequest struct {
	SubjectID string `json:"subject_id"`
	Approved  bool   `json:"approved"`
}

func (h Handlers) DecideApproval(c *gin.Context) {
	if h.Admin == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "admin not configured"})
		return
	}
	actor, err := auth.SubjectID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	eventID := c.Param("event_id")
	var req decideApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Admin.DecideApproval(c.Request.Context(), actor, req.SubjectID, eventID, req.Approved); err != nil {
		abortAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func abortAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, admin.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, admin.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid argument"})
	default:
		logger.FromGin(c).Error("admin mutation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "mutation failed"})
	}
}
