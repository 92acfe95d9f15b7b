package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bittutor/bittutor-api/internal/service"
	appErrors "github.com/bittutor/bittutor-api/pkg/errors"
	"github.com/bittutor/bittutor-api/pkg/response"
)

// UserHandler exposes user account endpoints.
type UserHandler struct {
	users   *service.UserService
	catalog *service.CatalogService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *service.UserService, catalog *service.CatalogService) *UserHandler {
	return &UserHandler{users: users, catalog: catalog}
}

// Register godoc
// @Summary Register a new user
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.RegisterUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Get godoc
// @Summary Get a user profile
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Update godoc
// @Summary Update own profile
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.UpdateUserRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /users/me [put]
func (h *UserHandler) Update(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.Update(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

type changePasswordRequest struct {
	Current string `json:"current" validate:"required"`
	Next    string `json:"next" validate:"required,min=6"`
}

// ChangePassword godoc
// @Summary Change own password
// @Tags Users
// @Accept json
// @Success 204
// @Router /users/me/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), userID, req.Current, req.Next); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete own account and taught courses
// @Tags Users
// @Success 204
// @Router /users/me [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Image godoc
// @Summary Get a user's profile image
// @Tags Users
// @Produce octet-stream
// @Param id path int true "User ID"
// @Success 200
// @Router /users/{id}/image [get]
func (h *UserHandler) Image(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.users.ProfileImage(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// PutImage godoc
// @Summary Replace own profile image
// @Tags Users
// @Accept octet-stream
// @Success 204
// @Router /users/me/image [put]
func (h *UserHandler) PutImage(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	data, ext, err := imageUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.users.ReplaceProfileImage(c.Request.Context(), userID, ext, data); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// WishList godoc
// @Summary Get own wishlist, best rated first
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/me/wishlist [get]
func (h *UserHandler) WishList(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	offers, err := h.catalog.WishList(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offers, nil)
}
