// internal/handlers/admin.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/libreshelf/library-backend/internal/i18n"
	"github.com/libreshelf/library-backend/internal/models"
	"github.com/libreshelf/library-backend/internal/services"
	"github.com/libreshelf/library-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GET /admin/users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AdminUserFilter{
		PaginationParams: params,
	}

	if userType := c.Query("user_type"); userType != "" {
		ut := models.UserType(userType)
		filter.UserType = &ut
	}
	if status := c.Query("status"); status != "" {
		us := models.UserStatus(status)
		filter.Status = &us
	}

	users, total, err := h.adminService.GetUsers(filter)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(users, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /admin/users
func (h *AdminHandler) CreateStaffUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateStaffUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := h.adminService.CreateStaffUser(adminID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminActionSuccess),
		"user":    user,
	})
}

// PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req struct {
		Status models.UserStatus `json:"status" binding:"required"`
		Reason string            `json:"reason,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.adminService.UpdateUserStatus(userID, req.Status, adminID, req.Reason); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "user")
			return
		}
		if strings.Contains(err.Error(), "cannot modify") {
			utils.ForbiddenResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminActionSuccess),
	})
}

// GET /admin/notifications
func (h *AdminHandler) GetNotifications(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.adminService.GetNotifications(params, unreadOnly)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(notifications, total, params)
	utils.PaginatedResponse(c, result)
}

// PUT /admin/notifications/:id/read
func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid notification ID", nil)
		return
	}

	if err := h.adminService.MarkNotificationRead(notificationID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "notification")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminActionSuccess),
	})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	resourceType := c.Query("resource_type")

	logs, total, err := h.adminService.GetAuditLogs(params, resourceType)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(logs, total, params)
	utils.PaginatedResponse(c, result)
}
