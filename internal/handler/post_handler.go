package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"quill/internal/auth"
	"quill/internal/service"
)

// PostHandler handles post CRUD and publish endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents a post creation request.
type CreatePostRequest struct {
	Title     string `json:"title" validate:"required,max=255"`
	Content   string `json:"content" validate:"required"`
	Published bool   `json:"published"`
}

// UpdatePostRequest represents a post update request; omitted fields stay
// unchanged.
type UpdatePostRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=255"`
	Content *string `json:"content"`
}

// PostListResponse represents a page of published posts.
type PostListResponse struct {
	Posts   interface{} `json:"posts"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post payload"
// @Success 201 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postService.Create(c.Request().Context(), auth.CurrentUser(c), req.Title, req.Content, req.Published)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// Get godoc
// @Summary Get a post by id
// @Description Published posts are public; drafts are visible to their author only.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.postService.Get(c.Request().Context(), auth.CurrentUser(c), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// List godoc
// @Summary List published posts
// @Tags posts
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} PostListResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	posts, total, err := h.postService.ListPublished(c.Request().Context(), page, perPage)
	if err != nil {
		return domainError(err)
	}

	// Echo back the same clamping the service applied.
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > service.MaxPageSize {
		perPage = service.DefaultPageSize
	}
	return c.JSON(http.StatusOK, PostListResponse{
		Posts:   posts,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// Update godoc
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Fields to change"
// @Success 200 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postService.Update(c.Request().Context(), auth.CurrentUser(c), id, service.PostUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// Publish godoc
// @Summary Publish a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} model.Post
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/publish [post]
func (h *PostHandler) Publish(c echo.Context) error {
	return h.setPublished(c, true)
}

// Unpublish godoc
// @Summary Revert a post to draft
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} model.Post
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/unpublish [post]
func (h *PostHandler) Unpublish(c echo.Context) error {
	return h.setPublished(c, false)
}

func (h *PostHandler) setPublished(c echo.Context, published bool) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.postService.SetPublished(c.Request().Context(), auth.CurrentUser(c), id, published)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	if err := h.postService.Delete(c.Request().Context(), auth.CurrentUser(c), id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "post deleted",
	})
}

func postID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	return uint(id), nil
}
