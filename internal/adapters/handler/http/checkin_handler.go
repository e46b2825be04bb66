package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

type CheckInHandler struct {
	svc *services.CheckInService
}

func NewCheckInHandler(svc *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{svc: svc}
}

type createCheckInRequest struct {
	GoalID string `json:"goal_id" binding:"required"`
	Date   string `json:"date"`
	Value  int    `json:"value"`
	Note   string `json:"note"`
}

func (h *CheckInHandler) RegisterRoutes(router *gin.RouterGroup) {
	checkins := router.Group("/checkins")
	{
		checkins.POST("", h.Create)
		checkins.GET("/today", h.Today)
		checkins.GET("/date/:date", h.ByDate)
		checkins.GET("/goal/:id", h.ByGoal)
		checkins.GET("/:id", h.Get)
		checkins.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Record a check-in
// @Description  Always appends. Date defaults to today in the app timezone, value to 1.
// @Tags         checkins
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCheckInRequest  true  "Check-in"
// @Success      201   {object}  domain.CheckIn
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /checkins [post]
func (h *CheckInHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkin, err := h.svc.Create(c.Request.Context(), services.CreateCheckInInput{
		GoalID: req.GoalID,
		UserID: userID,
		Date:   req.Date,
		Value:  req.Value,
		Note:   req.Note,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkin)
}

func (h *CheckInHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	checkin, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkin)
}

// ByGoal godoc
// @Summary   Check-ins of a goal, newest first
// @Tags      checkins
// @Produce   json
// @Security  BearerAuth
// @Param     id          path   string  true   "Goal ID"
// @Param     start_date  query  string  false  "YYYY-MM-DD"
// @Param     end_date    query  string  false  "YYYY-MM-DD"
// @Success   200  {array}  domain.CheckIn
// @Router    /checkins/goal/{id} [get]
func (h *CheckInHandler) ByGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByGoal(c.Request.Context(), c.Param("id"), userID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CheckInHandler) Today(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListToday(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CheckInHandler) ByDate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByDate(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CheckInHandler) Delete(c *gin.Context) {
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
