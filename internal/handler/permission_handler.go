package handler

import (
	"net/http"

	"rptas/internal/middleware"
	"rptas/internal/model"
	"rptas/internal/service"
	"rptas/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	permissionService service.PermissionService
}

func NewPermissionHandler(permissionService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

func (h *PermissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/api/my-permissions")
	me.Use(middleware.RequireAuth())
	{
		me.GET("", h.GetMyPermissions)
	}

	admin := router.Group("/api/admin/permissions")
	admin.Use(middleware.RequireAuth(), middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("", h.ListOverrides)
		admin.PUT("/:role", h.SetOverride)
		admin.DELETE("/:role", h.ResetOverrides)
	}
}

// GetMyPermissions returns the calling principal's role and feature map.
// @Summary      Get the caller's resolved permissions
// @Tags         permissions
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.PermissionSet}
// @Router       /api/my-permissions [get]
func (h *PermissionHandler) GetMyPermissions(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	set, err := h.permissionService.Resolve(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(set))
}

// ListOverrides returns every persisted per-role feature override.
func (h *PermissionHandler) ListOverrides(c *gin.Context) {
	overrides, err := h.permissionService.ListOverrides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(overrides))
}

type setOverrideRequest struct {
	Feature string `json:"feature" binding:"required"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// SetOverride replaces one default feature flag for one role.
func (h *PermissionHandler) SetOverride(c *gin.Context) {
	var req setOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error("feature and enabled are required"))
		return
	}

	if err := h.permissionService.SetOverride(c.Request.Context(), c.Param("role"), req.Feature, *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{
		"role":    c.Param("role"),
		"feature": req.Feature,
		"enabled": *req.Enabled,
	}))
}

// ResetOverrides drops every override of one role, restoring its defaults.
func (h *PermissionHandler) ResetOverrides(c *gin.Context) {
	if err := h.permissionService.ResetOverrides(c.Request.Context(), c.Param("role")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"role": c.Param("role")}))
}
