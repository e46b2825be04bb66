package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/progress"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

type ProgressHandler struct {
	svc *services.ProgressService
}

func NewProgressHandler(svc *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

type summaryResponse struct {
	progress.Summary
	DisplayPercentage *int `json:"display_percentage,omitempty"`
	Completed         bool `json:"completed"`
}

func newSummaryResponse(s progress.Summary) summaryResponse {
	resp := summaryResponse{Summary: s, Completed: s.Completed()}
	if s.Percentage != nil {
		display := s.DisplayPercentage()
		resp.DisplayPercentage = &display
	}
	return resp
}

type calendarResponse struct {
	Year     int              `json:"year"`
	Calendar map[string]int   `json:"calendar"`
	MaxCount int              `json:"max_count"`
	Total    int              `json:"total"`
	Months   []progress.Month `json:"months,omitempty"`
}

func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	p := router.Group("/progress")
	{
		p.GET("/by-frequency", h.ByFrequency)
		p.GET("/goal/:id", h.Goal)
		p.GET("/calendar", h.CurrentCalendar)
		p.GET("/calendar/:year", h.Calendar)
		p.GET("/day/:date", h.Day)
		p.GET("/year/:year", h.Year)
		p.GET("/legend", h.Legend)
	}
}

// ByFrequency godoc
// @Summary      Progress of active goals grouped by frequency
// @Description  Buckets are keyed by frequency. Goals with corrupt data are listed under "skipped".
// @Tags         progress
// @Produce      json
// @Security     BearerAuth
// @Param        frequency  query  string  false  "daily, weekly, monthly, yearly or custom"
// @Param        date       query  string  false  "Reference date, YYYY-MM-DD"
// @Success      200  {object}  map[string]interface{}
// @Router       /progress/by-frequency [get]
func (h *ProgressHandler) ByFrequency(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	grouped, err := h.svc.ByFrequency(c.Request.Context(), services.ByFrequencyInput{
		UserID:    userID,
		Date:      c.Query("date"),
		Frequency: c.Query("frequency"),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	resp := gin.H{}
	for _, group := range grouped.Ordered() {
		summaries := make([]summaryResponse, 0, len(group.Goals))
		for _, s := range group.Goals {
			summaries = append(summaries, newSummaryResponse(s))
		}
		resp[string(group.Frequency)] = summaries
	}
	if len(grouped.Skipped) > 0 {
		resp["skipped"] = grouped.Skipped
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProgressHandler) Goal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.svc.GoalProgress(c.Request.Context(), c.Param("id"), userID, c.Query("date"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSummaryResponse(summary))
}

func (h *ProgressHandler) CurrentCalendar(c *gin.Context) {
	h.writeCalendar(c, h.svc.CurrentYear())
}

// Calendar godoc
// @Summary   Year heatmap
// @Tags      progress
// @Produce   json
// @Security  BearerAuth
// @Param     year    path   int   true   "Year"
// @Param     layout  query  bool  false  "Include the month grid"
// @Success   200  {object}  calendarResponse
// @Router    /progress/calendar/{year} [get]
func (h *ProgressHandler) Calendar(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	h.writeCalendar(c, year)
}

func (h *ProgressHandler) writeCalendar(c *gin.Context, year int) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	withLayout := false
	if raw := c.Query("layout"); raw != "" {
		var err error
		if withLayout, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "layout must be a boolean"})
			return
		}
	}

	cal, err := h.svc.Calendar(c.Request.Context(), userID, year)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := calendarResponse{
		Year:     cal.Year,
		Calendar: cal.Calendar,
		MaxCount: cal.MaxCount,
		Total:    cal.Total(),
	}
	if withLayout {
		resp.Months = cal.Layout()
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProgressHandler) Day(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	detail, err := h.svc.DayDetail(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *ProgressHandler) Year(c *gin.Context) {
	year, ok := yearParam(c)
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	overview, err := h.svc.YearOverview(c.Request.Context(), userID, year)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "goals": overview})
}

func (h *ProgressHandler) Legend(c *gin.Context) {
	c.JSON(http.StatusOK, progress.Legend())
}

func yearParam(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		handleError(c, domain.ErrInvalidYear)
		return 0, false
	}
	return year, true
}
