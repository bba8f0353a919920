// internal/services/genre_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/libreshelf/library-backend/internal/models"
	"github.com/libreshelf/library-backend/internal/utils"
)

type GenreService struct {
	db *gorm.DB
}

type CreateGenreRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty"`
}

type UpdateGenreRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description string `json:"description,omitempty"`
}

func NewGenreService(db *gorm.DB) *GenreService {
	return &GenreService{db: db}
}

func (s *GenreService) CreateGenre(req *CreateGenreRequest) (*models.Genre, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	genre := &models.Genre{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.db.Create(genre).Error; err != nil {
		return nil, fmt.Errorf("failed to create genre: %w", err)
	}

	return genre, nil
}

func (s *GenreService) GetGenre(id uuid.UUID) (*models.Genre, error) {
	var genre models.Genre
	if err := s.db.First(&genre, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrGenreNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &genre, nil
}

func (s *GenreService) ListGenres() ([]models.Genre, error) {
	var genres []models.Genre
	if err := s.db.Order("name ASC").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}

	return genres, nil
}

func (s *GenreService) UpdateGenre(id uuid.UUID, req *UpdateGenreRequest) (*models.Genre, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var genre models.Genre
	if err := s.db.First(&genre, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrGenreNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(&genre).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update genre: %w", err)
		}
	}

	return &genre, nil
}

// DeleteGenre refuses to remove a genre that still has books assigned.
func (s *GenreService) DeleteGenre(id uuid.UUID) error {
	var genre models.Genre
	if err := s.db.First(&genre, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrGenreNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	var bookCount int64
	if err := s.db.Model(&models.Book{}).Where("genre_id = ?", id).Count(&bookCount).Error; err != nil {
		return fmt.Errorf("failed to check genre usage: %w", err)
	}

	if bookCount > 0 {
		return models.ErrGenreInUse
	}

	if err := s.db.Delete(&genre).Error; err != nil {
		return fmt.Errorf("failed to delete genre: %w", err)
	}

	return nil
}
