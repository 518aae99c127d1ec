package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/middleware"
	"github.com/roamly/roamly-backend/internal/service"
)

// BlogHandler handles blog post endpoints
type BlogHandler struct {
	service service.BlogService
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(service service.BlogService) *BlogHandler {
	return &BlogHandler{service: service}
}

// ListPublished handles GET /api/v1/blogs
// @Summary      List published blog posts
// @Tags         blogs
// @Produce      json
// @Success      200 {object} common.APIResponse
// @Router       /blogs [get]
func (h *BlogHandler) ListPublished(c *gin.Context) {
	p := bindPagination(c)
	blogs, total, err := h.service.ListPublished(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Blog posts fetched", blogs, listMeta(p, total))
}

// GetBlog handles GET /api/v1/blogs/:id
// @Summary      Get a blog post by ID
// @Tags         blogs
// @Produce      json
// @Param        id path string true "blog post ID"
// @Success      200 {object} common.APIResponse
// @Router       /blogs/{id} [get]
func (h *BlogHandler) GetBlog(c *gin.Context) {
	blog, err := h.service.GetBlog(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Blog post fetched", blog, nil)
}

// CreateBlog handles POST /api/v1/host/blogs
// @Summary      Create a blog post (host only, counted against the plan quota)
// @Tags         blogs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body domain.CreateBlogRequest true "blog payload"
// @Success      201 {object} common.APIResponse
// @Router       /host/blogs [post]
func (h *BlogHandler) CreateBlog(c *gin.Context) {
	var req domain.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	blog, err := h.service.CreateBlog(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusCreated, "Blog post created", blog, nil)
}

// ListMyBlogs handles GET /api/v1/host/blogs
// @Summary      List the authenticated host's blog posts
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /host/blogs [get]
func (h *BlogHandler) ListMyBlogs(c *gin.Context) {
	p := bindPagination(c)
	blogs, total, err := h.service.ListMyBlogs(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Blog posts fetched", blogs, listMeta(p, total))
}

// UpdateBlog handles PUT /api/v1/host/blogs/:id
// @Summary      Update a blog post (owner only)
// @Tags         blogs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "blog post ID"
// @Param        request body domain.UpdateBlogRequest true "fields to update"
// @Success      200 {object} common.APIResponse
// @Router       /host/blogs/{id} [put]
func (h *BlogHandler) UpdateBlog(c *gin.Context) {
	var req domain.UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	blog, err := h.service.UpdateBlog(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Blog post updated", blog, nil)
}

// DeleteBlog handles DELETE /api/v1/host/blogs/:id
// @Summary      Delete a blog post (owner or admin)
// @Tags         blogs
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "blog post ID"
// @Success      200 {object} common.APIResponse
// @Router       /host/blogs/{id} [delete]
func (h *BlogHandler) DeleteBlog(c *gin.Context) {
	err := h.service.DeleteBlog(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Blog post deleted", nil, nil)
}
