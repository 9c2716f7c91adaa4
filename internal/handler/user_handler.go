package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"quill/internal/auth"
	"quill/internal/service"
)

// UserHandler handles profile endpoints for the authenticated user.
type UserHandler struct {
	userService service.UserService
	postService service.PostService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, postService service.PostService) *UserHandler {
	return &UserHandler{userService: userService, postService: postService}
}

// UpdateProfileRequest represents a profile update request; omitted fields
// stay unchanged.
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"omitempty,max=255"`
	Email string `json:"email" validate:"omitempty,email"`
}

// Me godoc
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me [get]
func (h *UserHandler) Me(c echo.Context) error {
	identity := auth.CurrentUser(c)
	profile, err := h.userService.GetProfile(c.Request().Context(), identity.UserID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity := auth.CurrentUser(c)
	user, err := h.userService.UpdateProfile(c.Request().Context(), identity, identity.UserID, req.Name, req.Email)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteMe godoc
// @Summary Delete own account and all owned posts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	identity := auth.CurrentUser(c)
	if err := h.userService.DeleteAccount(c.Request().Context(), identity, identity.UserID); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "account deleted",
	})
}

// MyPosts godoc
// @Summary List own posts, drafts included
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Post
// @Failure 401 {object} errors.ErrorResponse
// @Router /me/posts [get]
func (h *UserHandler) MyPosts(c echo.Context) error {
	posts, err := h.postService.ListByAuthor(c.Request().Context(), auth.CurrentUser(c))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, posts)
}
