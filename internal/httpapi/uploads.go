package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"eventops-platform/internal/audit"
	"eventops-platform/internal/auth"
	"eventops-platform/internal/grant"
	"eventops-platform/internal/storage"
	"eventops-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Presigner mints time-limited read URLs for stored media.
type Presigner interface {
	PresignedGet(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

const mediaURLExpiry = 15 * time.Minute

// UploadHandlers serves the fulfillment side of the grant protocol: the
// client PUTs the bytes to the path its grant named, exactly once. It also
// mints read URLs for media that has already landed.
type UploadHandlers struct {
	Store *storage.EnforcedStore
	Media Presigner
	Audit *audit.Service
}

// Fulfill streams the request body into object storage after the grant
// check. The target path comes from the `path` query parameter and must
// match a live grant owned by the caller.
func (h UploadHandlers) Fulfill(c *gin.Context) {
	if h.Store == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "storage not configured"})
		return
	}
	subject, err := auth.SubjectID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	path := c.Query("path")
	if path == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "path required"})
		return
	}
	contentType := c.ContentType()

	g, err := h.Store.Put(c.Request.Context(), subject, path, contentType, c.Request.Body, c.Request.ContentLength)
	if err != nil {
		h.logDenied(c, subject, path, err)
		switch {
		case errors.Is(err, grant.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no grant for path"})
		case errors.Is(err, grant.ErrOwnerMismatch):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, grant.ErrExpired):
			c.AbortWithStatusJSON(http.StatusGone, gin.H{"error": "grant expired"})
		case errors.Is(err, grant.ErrAlreadyFulfilled):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "grant already fulfilled"})
		case errors.Is(err, grant.ErrContentTypeMismatch):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "content type does not match grant"})
		default:
			logger.FromGin(c).Error("upload failed", "path", path, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		}
		return
	}

	if h.Audit != nil {
		_ = h.Audit.LogGrant(c.Request.Context(), audit.EventTypeGrantFulfilled, subject, g.EventID, g.ID, "upload grant fulfilled")
	}
	c.JSON(http.StatusOK, gin.H{"status": "stored", "path": g.TargetPath})
}

// MediaURL returns a presigned read URL for an object under the event named
// in the route. The permission check for viewing the event's incidents runs
// upstream; here we only pin the requested path inside that event's prefix.
func (h UploadHandlers) MediaURL(c *gin.Context) {
	if h.Media == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "storage not configured"})
		return
	}
	eventID := c.Param("event_id")
	path := c.Query("path")
	if path == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "path required"})
		return
	}
	if !strings.HasPrefix(path, "events/"+eventID+"/") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "path outside event"})
		return
	}

	u, err := h.Media.PresignedGet(c.Request.Context(), path, mediaURLExpiry)
	if err != nil {
		logger.FromGin(c).Error("presign failed", "path", path, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "presign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": u, "expires_in_seconds": int(mediaURLExpiry.Seconds())})
}

func (h UploadHandlers) logDenied(c *gin.Context, subject, path string, err error) {
	if h.Audit == nil {
		return
	}
	// Denials are part of the grant's story too; best effort, never blocks.
	switch {
	case errors.Is(err, grant.ErrExpired), errors.Is(err, grant.ErrAlreadyFulfilled),
		errors.Is(err, grant.ErrOwnerMismatch), errors.Is(err, grant.ErrContentTypeMismatch):
		_ = h.Audit.LogGrant(c.Request.Context(), audit.EventTypeGrantDenied, subject, "", "", "upload denied for "+path)
	}
}
