package main

import (
	"eventops-platform/internal/httpapi"
	"eventops-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	authMW   gin.HandlerFunc
	resolver *rbac.Resolver
	engine   *rbac.Engine
	handlers httpapi.Handlers
	uploads  httpapi.UploadHandlers
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// AUTH routes (token issuance).
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", deps.handlers.Login)
	}

	// Everything below requires a verified access token.
	v1.Use(deps.authMW)

	v1.GET("/me", deps.handlers.Me)

	// UPLOAD routes. Issuance is action-gated per event; fulfillment is
	// gated by the grant itself, not by a role check.
	v1.POST("/events/:event_id/uploads/grants",
		rbac.RequireAction(deps.resolver, deps.engine, rbac.ActionUploadsCreate),
		deps.handlers.IssueUploadGrant)
	v1.PUT("/uploads", deps.uploads.Fulfill)

	// Read side: presigned URLs for stored incident media.
	v1.GET("/events/:event_id/media-url",
		rbac.RequireAction(deps.resolver, deps.engine, rbac.ActionIncidentsView),
		deps.uploads.MediaURL)

	// ADMIN routes: role directory and per-event approvals.
	adm := v1.Group("/admin")
	{
		adm.POST("/roles", deps.handlers.SetAccountRole)
		adm.POST("/events/:event_id/roles", deps.handlers.SetEventRole)
		adm.POST("/events/:event_id/approvals", deps.handlers.DecideApproval)
	}
}
