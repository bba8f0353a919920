// internal/services/book_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/libreshelf/library-backend/internal/models"
	"github.com/libreshelf/library-backend/internal/utils"
)

type BookService struct {
	db             *gorm.DB
	storageService *StorageService
}

type CreateBookRequest struct {
	Title           string    `json:"title" validate:"required,min=1,max=255"`
	Author          string    `json:"author" validate:"required,min=1,max=255"`
	Publisher       string    `json:"publisher,omitempty" validate:"omitempty,max=255"`
	PublicationYear int       `json:"publication_year,omitempty" validate:"omitempty,min=0"`
	Description     string    `json:"description,omitempty"`
	GenreID         uuid.UUID `json:"genre_id" validate:"required"`
	AvailableTypes  []string  `json:"available_types" validate:"required,min=1"`
	InitialCopies   int       `json:"initial_copies" validate:"min=0"`
}

type UpdateBookRequest struct {
	Title           string     `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Author          string     `json:"author,omitempty" validate:"omitempty,min=1,max=255"`
	Publisher       string     `json:"publisher,omitempty" validate:"omitempty,max=255"`
	PublicationYear int        `json:"publication_year,omitempty" validate:"omitempty,min=0"`
	Description     string     `json:"description,omitempty"`
	GenreID         *uuid.UUID `json:"genre_id,omitempty"`
}

type BookSearchParams struct {
	utils.PaginationParams
	GenreID       *uuid.UUID `json:"genre_id,omitempty"`
	Author        string     `json:"author,omitempty"`
	Type          string     `json:"type,omitempty"`
	AvailableOnly bool       `json:"available_only,omitempty"`
}

func NewBookService(db *gorm.DB, storageService *StorageService) *BookService {
	return &BookService{
		db:             db,
		storageService: storageService,
	}
}

// CreateBook registers a book and fans out its paper copies. InitialCopies is
// fixed here for the lifetime of the book; copies are numbered 1..N and never
// added or renumbered afterwards.
func (s *BookService) CreateBook(req *CreateBookRequest) (*models.Book, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	paperEnabled := false
	for _, t := range req.AvailableTypes {
		ct := models.CirculationType(t)
		if !ct.IsValid() {
			return nil, models.ErrUnsupportedOrderType
		}
		if ct == models.CirculationTypePaper {
			paperEnabled = true
		}
	}

	if paperEnabled && req.InitialCopies < 1 {
		return nil, errors.New("paper circulation requires at least one copy")
	}

	initialCopies := req.InitialCopies
	if !paperEnabled {
		// Copies only exist for paper circulation.
		initialCopies = 0
	}

	var book *models.Book
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Verify genre exists
		var genre models.Genre
		if err := tx.First(&genre, "id = ?", req.GenreID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrGenreNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		book = &models.Book{
			Title:           req.Title,
			Author:          req.Author,
			Publisher:       req.Publisher,
			PublicationYear: req.PublicationYear,
			Description:     req.Description,
			GenreID:         req.GenreID,
			AvailableTypes:  pq.StringArray(req.AvailableTypes),
			InitialCopies:   initialCopies,
			AvailableCopies: initialCopies,
		}

		if err := tx.Create(book).Error; err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}

		for n := 1; n <= initialCopies; n++ {
			copy := &models.BookCopy{
				BookID:      book.ID,
				CopyNumber:  n,
				IsAvailable: true,
			}
			if err := tx.Create(copy).Error; err != nil {
				return fmt.Errorf("failed to create copy %d: %w", n, err)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	// Load relationships
	if err := s.db.Preload("Genre").Preload("Copies", func(db *gorm.DB) *gorm.DB {
		return db.Order("copy_number ASC")
	}).First(book, book.ID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to reload book relationships")
	}

	return book, nil
}

func (s *BookService) GetBook(id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := s.db.Preload("Genre").Preload("Copies", func(db *gorm.DB) *gorm.DB {
		return db.Order("copy_number ASC")
	}).First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrBookNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &book, nil
}

func (s *BookService) SearchBooks(params BookSearchParams) ([]models.Book, int64, error) {
	query := s.db.Model(&models.Book{}).Preload("Genre")

	if params.GenreID != nil {
		query = query.Where("genre_id = ?", *params.GenreID)
	}

	if params.Author != "" {
		query = query.Where("LOWER(author) LIKE ?", "%"+strings.ToLower(params.Author)+"%")
	}

	if params.Type != "" {
		query = query.Where("? = ANY(available_types)", params.Type)
	}

	if params.AvailableOnly {
		query = query.Where("available_copies > 0")
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	allowedSortFields := []string{"created_at", "title", "author", "publication_year", "available_copies"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var books []models.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch books: %w", err)
	}

	return books, total, nil
}

// UpdateBook changes descriptive metadata only. Circulation state, the type
// list and the copy count are fixed after creation.
func (s *BookService) UpdateBook(id uuid.UUID, req *UpdateBookRequest) (*models.Book, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var book models.Book
	if err := s.db.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrBookNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Author != "" {
		updates["author"] = req.Author
	}
	if req.Publisher != "" {
		updates["publisher"] = req.Publisher
	}
	if req.PublicationYear > 0 {
		updates["publication_year"] = req.PublicationYear
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.GenreID != nil {
		var genre models.Genre
		if err := s.db.First(&genre, "id = ?", *req.GenreID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.ErrGenreNotFound
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		updates["genre_id"] = *req.GenreID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&book).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update book: %w", err)
		}
	}

	if err := s.db.Preload("Genre").Preload("Copies", func(db *gorm.DB) *gorm.DB {
		return db.Order("copy_number ASC")
	}).First(&book, id).Error; err != nil {
		logrus.WithError(err).Warn("Failed to reload book relationships")
	}

	return &book, nil
}

// DeleteBook removes a book from the catalog. It is rejected while any copy
// is reserved or with a reader, so no order can end up pointing at a book
// that no longer exists.
func (s *BookService) DeleteBook(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&book, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrBookNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if book.HasOutstandingCopies() {
			return models.ErrBookCheckedOut
		}

		if err := tx.Where("book_id = ?", id).Delete(&models.BookCopy{}).Error; err != nil {
			return fmt.Errorf("failed to delete copies: %w", err)
		}

		if err := tx.Delete(&book).Error; err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}

		return nil
	})
}

// SetCover uploads a cover image and stores its URL on the book.
func (s *BookService) SetCover(id uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.Book, error) {
	var book models.Book
	if err := s.db.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrBookNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if s.storageService == nil {
		return nil, errors.New("storage service not configured")
	}

	if err := s.storageService.ValidateImage(file); err != nil {
		return nil, err
	}

	options := s.storageService.GetDefaultUploadOptions(CategoryCover)
	result, err := s.storageService.UploadFile(file, header, options)
	if err != nil {
		return nil, fmt.Errorf("failed to upload cover: %w", err)
	}

	if err := s.db.Model(&book).Updates(map[string]interface{}{
		"cover_url":  result.URL,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to save cover url: %w", err)
	}

	book.CoverURL = result.URL
	return &book, nil
}
