package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bittutor/bittutor-api/internal/service"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/response"
)

// CategoryHandler exposes category endpoints.
type CategoryHandler struct {
	categories *service.CategoryService
	catalog    *service.CatalogService
}

// NewCategoryHandler constructs CategoryHandler.
func NewCategoryHandler(categories *service.CategoryService, catalog *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{categories: categories, catalog: catalog}
}

// Create godoc
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body service.CreateCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	category, err := h.categories.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// List godoc
// @Summary List all categories
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Get godoc
// @Summary Get a category
// @Tags Categories
// @Produce json
// @Param name path string true "Category name"
// @Success 200 {object} response.Envelope
// @Router /categories/{name} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categories.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Delete godoc
// @Summary Delete a category
// @Tags Categories
// @Param name path string true "Category name"
// @Success 204
// @Router /categories/{name} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Image godoc
// @Summary Get a category image
// @Tags Categories
// @Produce octet-stream
// @Param name path string true "Category name"
// @Success 200
// @Router /categories/{name}/image [get]
func (h *CategoryHandler) Image(c *gin.Context) {
	data, err := h.categories.Image(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// PutImage godoc
// @Summary Replace a category image
// @Tags Categories
// @Accept octet-stream
// @Success 204
// @Router /categories/{name}/image [put]
func (h *CategoryHandler) PutImage(c *gin.Context) {
	data, ext, err := imageUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.categories.ReplaceImage(c.Request.Context(), c.Param("name"), ext, data); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Offer godoc
// @Summary Courses in a category the viewer may join, best rated first
// @Tags Categories
// @Produce json
// @Param name path string true "Category name"
// @Success 200 {object} response.Envelope
// @Router /categories/{name}/offer [get]
func (h *CategoryHandler) Offer(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	offers, err := h.catalog.Offer(c.Request.Context(), userID, c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offers, nil)
}
