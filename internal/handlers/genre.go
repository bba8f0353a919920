// internal/handlers/genre.go
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

type GenreHandler struct {
	genreService *services.GenreService
}

func NewGenreHandler(genreService *services.GenreService) *GenreHandler {
	return &GenreHandler{
		genreService: genreService,
	}
}

// GET /genres
func (h *GenreHandler) GetGenres(c *gin.Context) {
	genres, err := h.genreService.ListGenres()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"genres": genres,
	})
}

// GET /genres/:id
func (h *GenreHandler) GetGenre(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid genre ID", nil)
		return
	}

	genre, err := h.genreService.GetGenre(id)
	if err != nil {
		if errors.Is(err, models.ErrGenreNotFound) {
			utils.NotFoundResponse(c, "genre")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"genre": genre,
	})
}

// POST /genres
func (h *GenreHandler) CreateGenre(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	genre, err := h.genreService.CreateGenre(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyGenreCreated),
		"genre":   genre,
	})
}

// PUT /genres/:id
func (h *GenreHandler) UpdateGenre(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid genre ID", nil)
		return
	}

	var req services.UpdateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	genre, err := h.genreService.UpdateGenre(id, &req)
	if err != nil {
		if errors.Is(err, models.ErrGenreNotFound) {
			utils.NotFoundResponse(c, "genre")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyGenreUpdated),
		"genre":   genre,
	})
}

// DELETE /genres/:id
func (h *GenreHandler) DeleteGenre(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid genre ID", nil)
		return
	}

	if err := h.genreService.DeleteGenre(id); err != nil {
		if errors.Is(err, models.ErrGenreNotFound) {
			utils.NotFoundResponse(c, "genre")
			return
		}
		if errors.Is(err, models.ErrGenreInUse) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyGenreInUse))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyGenreDeleted),
	})
}
