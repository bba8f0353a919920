// internal/handlers/book.go
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

type BookHandler struct {
	bookService *services.BookService
}

func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// GET /books
func (h *BookHandler) GetBooks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.BookSearchParams{
		PaginationParams: params,
	}

	if genreIDStr := c.Query("genre_id"); genreIDStr != "" {
		if genreID, err := uuid.Parse(genreIDStr); err == nil {
			searchParams.GenreID = &genreID
		}
	}
	if author := c.Query("author"); author != "" {
		searchParams.Author = author
	}
	if circulationType := c.Query("type"); circulationType != "" {
		searchParams.Type = circulationType
	}
	if c.Query("available") == "true" {
		searchParams.AvailableOnly = true
	}

	books, total, err := h.bookService.SearchBooks(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(books, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /books/:id
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid book ID", nil)
		return
	}

	book, err := h.bookService.GetBook(id)
	if err != nil {
		if errors.Is(err, models.ErrBookNotFound) {
			utils.NotFoundResponse(c, "book")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"book": book,
	})
}

// POST /books
func (h *BookHandler) CreateBook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	book, err := h.bookService.CreateBook(&req)
	if err != nil {
		if errors.Is(err, models.ErrGenreNotFound) {
			utils.NotFoundResponse(c, "genre")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookCreated),
		"book":    book,
	})
}

// PUT /books/:id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid book ID", nil)
		return
	}

	var req services.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	book, err := h.bookService.UpdateBook(id, &req)
	if err != nil {
		if errors.Is(err, models.ErrBookNotFound) {
			utils.NotFoundResponse(c, "book")
			return
		}
		if errors.Is(err, models.ErrGenreNotFound) {
			utils.NotFoundResponse(c, "genre")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookUpdated),
		"book":    book,
	})
}

// DELETE /books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid book ID", nil)
		return
	}

	if err := h.bookService.DeleteBook(id); err != nil {
		if errors.Is(err, models.ErrBookNotFound) {
			utils.NotFoundResponse(c, "book")
			return
		}
		if errors.Is(err, models.ErrBookCheckedOut) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyBookCheckedOut))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookDeleted),
	})
}

// POST /books/:id/cover
func (h *BookHandler) UploadCover(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid book ID", nil)
		return
	}

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	defer file.Close()

	book, err := h.bookService.SetCover(id, file, fileHeader)
	if err != nil {
		if errors.Is(err, models.ErrBookNotFound) {
			utils.NotFoundResponse(c, "book")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBookCoverSet),
		"book":    book,
	})
}
