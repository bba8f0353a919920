// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/libreshelf/library-backend/internal/models"
	"github.com/libreshelf/library-backend/internal/utils"
)

type AdminService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type AdminUserFilter struct {
	utils.PaginationParams
	UserType      *models.UserType   `json:"user_type,omitempty"`
	Status        *models.UserStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time         `json:"created_after,omitempty"`
	CreatedBefore *time.Time         `json:"created_before,omitempty"`
}

type CreateStaffUserRequest struct {
	Username string          `json:"username" validate:"required,username"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,strong_password"`
	UserType models.UserType `json:"user_type" validate:"required"`
}

func NewAdminService(db *gorm.DB, notificationService *NotificationService) *AdminService {
	return &AdminService{
		db:                  db,
		notificationService: notificationService,
	}
}

// User Management
func (s *AdminService) GetUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	// Apply filters
	if filter.UserType != nil {
		query = query.Where("user_type = ?", *filter.UserType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", searchTerm, searchTerm)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	// Apply sorting and pagination
	allowedSortFields := []string{"created_at", "updated_at", "username", "email", "user_type", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	// Execute query
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

// CreateStaffUser creates a librarian or admin account. Reader accounts come
// through self registration instead.
func (s *AdminService) CreateStaffUser(adminID uuid.UUID, req *CreateStaffUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.UserType != models.UserTypeLibrarian && req.UserType != models.UserTypeAdmin {
		return nil, errors.New("staff accounts must be librarian or admin")
	}

	var existingUser models.User
	if err := s.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existingUser).Error; err == nil {
		return nil, errors.New("user with this email or username already exists")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		UserType: req.UserType,
		Status:   models.UserStatusActive,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	go s.createAuditLog(adminID, "CREATE_STAFF_USER", "user", &user.ID, nil,
		map[string]interface{}{"username": user.Username, "user_type": user.UserType})

	return user, nil
}

func (s *AdminService) UpdateUserStatus(userID uuid.UUID, status models.UserStatus, adminID uuid.UUID, reason string) error {
	// Find user
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Prevent admins from modifying other admins
	if user.UserType == models.UserTypeAdmin && user.ID != adminID {
		return errors.New("cannot modify admin user status")
	}

	oldStatus := user.Status
	user.Status = status

	if err := s.db.Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	// Create audit log
	go s.createAuditLog(adminID, "UPDATE_USER_STATUS", "user", &userID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": status, "reason": reason})

	// Send notification to user
	go s.sendUserStatusNotification(&user, oldStatus, reason)

	return nil
}

// Notifications
func (s *AdminService) GetNotifications(params utils.PaginationParams, unreadOnly bool) ([]models.AdminNotification, int64, error) {
	query := s.db.Model(&models.AdminNotification{})

	if unreadOnly {
		query = query.Where("status = ?", "unread")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	allowedSortFields := []string{"created_at", "priority", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var notifications []models.AdminNotification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

func (s *AdminService) MarkNotificationRead(notificationID uuid.UUID) error {
	var notification models.AdminNotification
	if err := s.db.First(&notification, "id = ?", notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("notification not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	notification.Status = "read"
	notification.ReadAt = &now

	if err := s.db.Save(&notification).Error; err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

// Audit Trail
func (s *AdminService) GetAuditLogs(params utils.PaginationParams, resourceType string) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User")

	if resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}

	if params.Search != "" {
		query = query.Where("action ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	allowedSortFields := []string{"created_at", "action", "resource_type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, total, nil
}

// Helper methods
func (s *AdminService) createAuditLog(userID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues map[string]interface{}) {
	auditLog := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    models.JSONB(oldValues),
		NewValues:    models.JSONB(newValues),
	}

	s.db.Create(auditLog)
}

func (s *AdminService) sendUserStatusNotification(user *models.User, oldStatus models.UserStatus, reason string) {
	if s.notificationService != nil {
		s.notificationService.SendUserStatusChangeNotification(user, oldStatus, reason)
	}
}
