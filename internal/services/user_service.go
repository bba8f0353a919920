// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/libreshelf/library-backend/internal/models"
	"github.com/libreshelf/library-backend/internal/utils"
)

type UserService struct {
	db             *gorm.DB
	storageService *StorageService
}

type UpdateUserProfileRequest struct {
	Username    string                 `json:"username,omitempty" validate:"omitempty,username"`
	ProfileData map[string]interface{} `json:"profile_data,omitempty"`
}

func NewUserService(db *gorm.DB, storageService *StorageService) *UserService {
	return &UserService{
		db:             db,
		storageService: storageService,
	}
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetPublicProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Select("id, username, user_type, profile_data, created_at").
		First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateUserProfileRequest) (*models.User, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Find user
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// Check username uniqueness if updating
	if req.Username != "" && req.Username != user.Username {
		var existingUser models.User
		if err := s.db.Where("username = ? AND id != ?", req.Username, userID).First(&existingUser).Error; err == nil {
			return nil, errors.New("username already taken")
		}
	}

	// Update fields
	if req.Username != "" {
		user.Username = req.Username
	}

	if req.ProfileData != nil {
		if user.ProfileData == nil {
			user.ProfileData = make(models.JSONB)
		}
		// Merge with existing profile data
		for key, value := range req.ProfileData {
			user.ProfileData[key] = value
		}
	}

	// Save changes
	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

func (s *UserService) SetAvatar(userID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if s.storageService == nil {
		return nil, errors.New("storage service not configured")
	}

	if err := s.storageService.ValidateImage(file); err != nil {
		return nil, err
	}

	options := s.storageService.GetDefaultUploadOptions(CategoryAvatar)
	result, err := s.storageService.UploadFile(file, header, options)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if user.ProfileData == nil {
		user.ProfileData = make(models.JSONB)
	}
	user.ProfileData["avatar_url"] = result.URL

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to save avatar url: %w", err)
	}

	return &user, nil
}

// DeleteAccount removes a reader account. It is blocked while the user still
// has open orders, since those hold circulation state that would otherwise
// become unreachable.
func (s *UserService) DeleteAccount(userID uuid.UUID, password string) error {
	// Find user
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	// Verify password
	if err := user.CheckPassword(password); err != nil {
		return errors.New("invalid password")
	}

	// Check for open orders
	var orderCount int64
	if err := s.db.Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&orderCount).Error; err != nil {
		return fmt.Errorf("failed to check orders: %w", err)
	}

	if orderCount > 0 {
		return errors.New("cannot delete account with open orders")
	}

	// Soft delete user
	if err := s.db.Delete(&user).Error; err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return nil
}
