// internal/handlers/order.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/libreshelf/library-backend/internal/i18n"
	"github.com/libreshelf/library-backend/internal/models"
	"github.com/libreshelf/library-backend/internal/services"
	"github.com/libreshelf/library-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	order, err := h.orderService.CreateOrder(userID, &req)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCreated),
		"order":   order,
	})
}

// GET /orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	orders, total, err := h.orderService.GetUserOrders(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	order, err := h.orderService.GetOrder(orderID, userID, isPrivileged(c))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order": order,
	})
}

// POST /orders/:id/advance
func (h *OrderHandler) AdvanceOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	order, err := h.orderService.AdvanceOrder(orderID, userID, isPrivileged(c))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderAdvanced),
		"order":   order,
	})
}

// DELETE /orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	if err := h.orderService.DeleteOrder(orderID, userID, isPrivileged(c)); err != nil {
		h.respondOrderError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderDeleted),
	})
}

// GET /admin/orders
func (h *OrderHandler) SearchOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.OrderSearchParams{
		PaginationParams: params,
	}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			searchParams.UserID = &userID
		}
	}
	if bookIDStr := c.Query("book_id"); bookIDStr != "" {
		if bookID, err := uuid.Parse(bookIDStr); err == nil {
			searchParams.BookID = &bookID
		}
	}
	if status := c.Query("status"); status != "" {
		orderStatus := models.OrderStatus(status)
		searchParams.Status = &orderStatus
	}
	if orderType := c.Query("order_type"); orderType != "" {
		circulationType := models.CirculationType(orderType)
		searchParams.OrderType = &circulationType
	}

	orders, total, err := h.orderService.SearchOrders(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(orders, total, params)
	utils.PaginatedResponse(c, result)
}

// respondOrderError maps circulation errors to HTTP statuses.
func (h *OrderHandler) respondOrderError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		utils.NotFoundResponse(c, "order")
	case errors.Is(err, models.ErrBookNotFound):
		utils.NotFoundResponse(c, "book")
	case errors.Is(err, models.ErrNoCopyAvailable):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOrderNoCopyAvailable))
	case errors.Is(err, models.ErrCommitConflict):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOrderConflict))
	case errors.Is(err, models.ErrNotPaperEnabled):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyBookNoPaperType), nil)
	case errors.Is(err, models.ErrUnsupportedOrderType):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyOrderUnsupportedType), nil)
	case errors.Is(err, models.ErrInvalidTransition):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyOrderInvalidStatus), nil)
	case errors.Is(err, models.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, models.ErrCopyAlreadyAvailable):
		utils.InternalErrorResponse(c, err.Error())
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}

// Context helpers shared by the handler package.

func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}

	return userID, true
}

func isPrivileged(c *gin.Context) bool {
	userType, exists := utils.GetUserTypeFromContext(c)
	if !exists {
		return false
	}
	return models.UserType(userType).IsPrivileged()
}
