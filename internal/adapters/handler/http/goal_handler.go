package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

type GoalHandler struct {
	svc *services.GoalService
}

func NewGoalHandler(svc *services.GoalService) *GoalHandler {
	return &GoalHandler{svc: svc}
}

type createGoalRequest struct {
	Title       string `json:"title" binding:"required"`
	CategoryID  string `json:"category_id" binding:"required"`
	Frequency   string `json:"frequency" binding:"required"`
	TargetValue int    `json:"target_value"`
}

type updateGoalRequest struct {
	Title       string `json:"title"`
	CategoryID  string `json:"category_id"`
	Frequency   string `json:"frequency"`
	TargetValue int    `json:"target_value"`
	Active      *bool  `json:"is_active"`
}

func (h *GoalHandler) RegisterRoutes(router *gin.RouterGroup) {
	goals := router.Group("/goals")
	{
		goals.GET("", h.List)
		goals.POST("", h.Create)
		goals.GET("/category/:id", h.ListByCategory)
		goals.GET("/:id", h.Get)
		goals.PUT("/:id", h.Update)
		goals.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary   List goals
// @Tags      goals
// @Produce   json
// @Security  BearerAuth
// @Param     include_inactive  query  bool  false  "Include deactivated goals"
// @Success   200  {array}  domain.Goal
// @Router    /goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	includeInactive := false
	if raw := c.Query("include_inactive"); raw != "" {
		var err error
		if includeInactive, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "include_inactive must be a boolean"})
			return
		}
	}

	goals, err := h.svc.List(c.Request.Context(), userID, includeInactive)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, goals)
}

func (h *GoalHandler) ListByCategory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	goals, err := h.svc.ListByCategory(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, goals)
}

func (h *GoalHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	goal, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Create godoc
// @Summary   Create a goal
// @Tags      goals
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      createGoalRequest  true  "Goal"
// @Success   201   {object}  domain.Goal
// @Failure   400   {object}  map[string]string
// @Router    /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.svc.Create(c.Request.Context(), services.CreateGoalInput{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Frequency:   req.Frequency,
		TargetValue: req.TargetValue,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// Update applies a partial update; zero-valued fields keep their stored value.
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal, err := h.svc.Update(c.Request.Context(), services.UpdateGoalInput{
		ID:          c.Param("id"),
		UserID:      userID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Frequency:   req.Frequency,
		TargetValue: req.TargetValue,
		Active:      req.Active,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
