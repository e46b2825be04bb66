package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/progress"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

type CategoryHandler struct {
	svc *services.CategoryService
}

func NewCategoryHandler(svc *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

type categoryRequest struct {
	Title string `json:"title" binding:"required"`
}

type categoryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Title:     c.Title,
		Color:     progress.CategoryColor(c.Title),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.List)
		categories.POST("", h.Create)
		categories.GET("/:id", h.Get)
		categories.PUT("/:id", h.Update)
		categories.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary   List categories
// @Tags      categories
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  categoryResponse
// @Router    /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]categoryResponse, 0, len(list))
	for _, cat := range list {
		resp = append(resp, newCategoryResponse(cat))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary   Create a category
// @Tags      categories
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      categoryRequest  true  "Category"
// @Success   201   {object}  categoryResponse
// @Failure   409   {object}  map[string]string
// @Router    /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.svc.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCategoryResponse(cat))
}

func (h *CategoryHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	cat, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCategoryResponse(cat))
}

func (h *CategoryHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.svc.Update(c.Request.Context(), services.UpdateCategoryInput{
		ID:     c.Param("id"),
		UserID: userID,
		Title:  req.Title,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newCategoryResponse(cat))
}

// Delete godoc
// @Summary      Delete a category
// @Description  Rejected with 409 while the category has goals, unless cascade=true.
// @Tags         categories
// @Security     BearerAuth
// @Param        id       path   string  true   "Category ID"
// @Param        cascade  query  bool    false  "Also delete its goals"
// @Success      204
// @Failure      409  {object}  map[string]string
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	cascade := false
	if raw := c.Query("cascade"); raw != "" {
		var err error
		if cascade, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cascade must be a boolean"})
			return
		}
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID, cascade); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
