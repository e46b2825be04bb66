package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/events"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

// testAPI is the full router over the in-memory backend.
type testAPI struct {
	t        *testing.T
	router   *gin.Engine
	calendar *cache.MemoryCalendarCache
}

func newTestAPI(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)

	users := repository.NewInMemoryUserRepository()
	categories := repository.NewInMemoryCategoryRepository()
	checkins := repository.NewInMemoryCheckInRepository()
	goals := repository.NewInMemoryGoalRepository(checkins)
	calendar := cache.NewMemoryCalendarCache()
	loc := time.UTC

	tokenService := services.NewTokenService("api-test-secret-0123456789abcdef", "kanso-test", time.Hour, users)
	goalService := services.NewGoalService(goals, categories, checkins, calendar, nil)
	categoryService := services.NewCategoryService(categories, goalService)
	authService := services.NewAuthService(users, categoryService)
	checkinService := services.NewCheckInService(checkins, goals, calendar, nil, events.NopPublisher{}, loc)
	progressService := services.NewProgressService(goals, checkins, calendar, loc)

	router := NewRouter(RouterDependencies{
		AuthHandler:     NewAuthHandler(authService, tokenService),
		CategoryHandler: NewCategoryHandler(categoryService),
		GoalHandler:     NewGoalHandler(goalService),
		CheckInHandler:  NewCheckInHandler(checkinService),
		ProgressHandler: NewProgressHandler(progressService),
		TokenService:    tokenService,
		StartTime:       time.Now(),
	})

	return &testAPI{t: t, router: router, calendar: calendar}
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// register creates an account and returns its token.
func (a *testAPI) register(email string) string {
	a.t.Helper()
	username := strings.SplitN(email, "@", 2)[0]
	w := a.do(http.MethodPost, "/auth/register", "", gin.H{"email": email, "username": username, "password": "Password123"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authResponse](a.t, w).Token
}

func (a *testAPI) categoryID(token, title string) string {
	a.t.Helper()
	w := a.do(http.MethodGet, "/categories", token, nil)
	require.Equal(a.t, http.StatusOK, w.Code)
	for _, c := range decode[[]categoryResponse](a.t, w) {
		if c.Title == title {
			return c.ID
		}
	}
	a.t.Fatalf("category %q not found", title)
	return ""
}

func (a *testAPI) createGoal(token string, body gin.H) domain.Goal {
	a.t.Helper()
	w := a.do(http.MethodPost, "/goals", token, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Goal](a.t, w)
}

func (a *testAPI) checkIn(token, goalID, date string, value int) domain.CheckIn {
	a.t.Helper()
	w := a.do(http.MethodPost, "/checkins", token, gin.H{"goal_id": goalID, "date": date, "value": value})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.CheckIn](a.t, w)
}

func TestAPI_AuthFlow(t *testing.T) {
	api := newTestAPI(t)

	token := api.register("flow@kanso.app")

	t.Run("Me returns the session user", func(t *testing.T) {
		w := api.do(http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "flow@kanso.app", decode[userResponse](t, w).Email)
	})

	t.Run("Login issues a working token", func(t *testing.T) {
		w := api.do(http.MethodPost, "/auth/login", "", gin.H{"email": "flow@kanso.app", "password": "Password123"})
		require.Equal(t, http.StatusOK, w.Code)

		again := decode[authResponse](t, w).Token
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/categories", again, nil).Code)
	})

	t.Run("Login by username", func(t *testing.T) {
		w := api.do(http.MethodPost, "/auth/login", "", gin.H{"username": "FLOW", "password": "Password123"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "flow", decode[authResponse](t, w).User.Username)
	})

	t.Run("Duplicate username conflicts", func(t *testing.T) {
		w := api.do(http.MethodPost, "/auth/signup", "", gin.H{"email": "another@kanso.app", "username": "flow", "password": "Password123"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Logout", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, api.do(http.MethodPost, "/auth/logout", token, nil).Code)
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/auth/logout", "", nil).Code)
	})

	t.Run("Protected routes need a token", func(t *testing.T) {
		for _, path := range []string{"/auth/me", "/categories", "/goals", "/checkins/today", "/progress/calendar"} {
			w := api.do(http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/goals", "garbage", nil).Code)
	})

	t.Run("Health reports the memory backend", func(t *testing.T) {
		w := api.do(http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[map[string]string](t, w)
		assert.Equal(t, "memory", body["database"])
		assert.Equal(t, "disabled", body["redis"])
	})
}

func TestAPI_Categories(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("cats@kanso.app")

	t.Run("Registration seeds the default categories with colours", func(t *testing.T) {
		w := api.do(http.MethodGet, "/categories", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := decode[[]categoryResponse](t, w)
		require.Len(t, list, len(domain.DefaultCategories))
		for _, c := range list {
			if c.Title == "Fitness" {
				assert.Equal(t, "red", c.Color)
			}
		}
	})

	t.Run("Duplicate title conflicts", func(t *testing.T) {
		w := api.do(http.MethodPost, "/categories", token, gin.H{"title": "fitness"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Empty title is rejected", func(t *testing.T) {
		w := api.do(http.MethodPost, "/categories", token, gin.H{"title": "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rename", func(t *testing.T) {
		w := api.do(http.MethodPost, "/categories", token, gin.H{"title": "Hobbies"})
		require.Equal(t, http.StatusCreated, w.Code)
		created := decode[categoryResponse](t, w)

		w = api.do(http.MethodPut, "/categories/"+created.ID, token, gin.H{"title": "Crafts"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Crafts", decode[categoryResponse](t, w).Title)
	})

	t.Run("Delete is blocked while goals exist unless cascading", func(t *testing.T) {
		catID := api.categoryID(token, "Financial")
		goal := api.createGoal(token, gin.H{"title": "Save", "category_id": catID, "frequency": "monthly", "target_value": 4})
		checkin := api.checkIn(token, goal.ID, "2024-03-11", 1)

		w := api.do(http.MethodDelete, "/categories/"+catID, token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = api.do(http.MethodDelete, "/categories/"+catID+"?cascade=maybe", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = api.do(http.MethodDelete, "/categories/"+catID+"?cascade=true", token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/goals/"+goal.ID, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/checkins/"+checkin.ID, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/categories/"+catID, token, nil).Code)
	})

	t.Run("Other users get 403", func(t *testing.T) {
		other := api.register("other@kanso.app")
		catID := api.categoryID(token, "Community")

		assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/categories/"+catID, other, nil).Code)
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/categories/"+catID, other, nil).Code)
	})
}

func TestAPI_Goals(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("goals@kanso.app")
	catID := api.categoryID(token, "Fitness")

	goal := api.createGoal(token, gin.H{"title": "Run", "category_id": catID, "frequency": "weekly", "target_value": 3})
	assert.Equal(t, domain.FrequencyWeekly, goal.Frequency)
	assert.True(t, goal.Active)

	t.Run("Validation", func(t *testing.T) {
		cases := []gin.H{
			{"title": "X", "category_id": catID, "frequency": "hourly"},
			{"title": "X", "category_id": catID, "frequency": "daily", "target_value": -1},
			{"title": "", "category_id": catID, "frequency": "daily"},
		}
		for _, body := range cases {
			assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/goals", token, body).Code, body)
		}

		w := api.do(http.MethodPost, "/goals", token, gin.H{"title": "X", "category_id": "missing", "frequency": "daily"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Partial update and deactivation", func(t *testing.T) {
		w := api.do(http.MethodPut, "/goals/"+goal.ID, token, gin.H{"target_value": 5, "is_active": false})
		require.Equal(t, http.StatusOK, w.Code)

		updated := decode[domain.Goal](t, w)
		assert.Equal(t, "Run", updated.Title)
		assert.Equal(t, 5, updated.TargetValue)
		assert.False(t, updated.Active)

		active := decode[[]domain.Goal](t, api.do(http.MethodGet, "/goals", token, nil))
		assert.Empty(t, active)

		all := decode[[]domain.Goal](t, api.do(http.MethodGet, "/goals?include_inactive=true", token, nil))
		assert.Len(t, all, 1)

		byCat := decode[[]domain.Goal](t, api.do(http.MethodGet, "/goals/category/"+catID, token, nil))
		assert.Len(t, byCat, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/goals/"+goal.ID, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/goals/"+goal.ID, token, nil).Code)
	})
}

func TestAPI_CheckIns(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("checkins@kanso.app")
	catID := api.categoryID(token, "Self-Care")
	goal := api.createGoal(token, gin.H{"title": "Meditate", "category_id": catID, "frequency": "daily"})

	t.Run("Defaults: today and value 1", func(t *testing.T) {
		w := api.do(http.MethodPost, "/checkins", token, gin.H{"goal_id": goal.ID})
		require.Equal(t, http.StatusCreated, w.Code)

		created := decode[domain.CheckIn](t, w)
		assert.Equal(t, domain.Today(time.UTC), created.Date)
		assert.Equal(t, 1, created.Value)

		today := decode[[]domain.CheckIn](t, api.do(http.MethodGet, "/checkins/today", token, nil))
		require.Len(t, today, 1)
		assert.Equal(t, created.ID, today[0].ID)
	})

	t.Run("Invalid input", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/checkins", token, gin.H{"goal_id": goal.ID, "date": "11/03/2024"}).Code)
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/checkins", token, gin.H{"goal_id": goal.ID, "value": -2}).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodPost, "/checkins", token, gin.H{"goal_id": "nope"}).Code)
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/checkins/date/yesterday", token, nil).Code)
	})

	t.Run("Same-day check-ins accumulate and list by goal newest first", func(t *testing.T) {
		first := api.checkIn(token, goal.ID, "2024-03-11", 1)
		second := api.checkIn(token, goal.ID, "2024-03-11", 2)
		api.checkIn(token, goal.ID, "2024-03-01", 1)

		w := api.do(http.MethodGet, fmt.Sprintf("/checkins/goal/%s?start_date=2024-03-10&end_date=2024-03-12", goal.ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]domain.CheckIn](t, w)
		require.Len(t, list, 2)
		assert.ElementsMatch(t, []string{first.ID, second.ID}, []string{list[0].ID, list[1].ID})

		byDate := decode[[]domain.CheckIn](t, api.do(http.MethodGet, "/checkins/date/2024-03-11", token, nil))
		assert.Len(t, byDate, 2)
	})

	t.Run("Delete is owner-only", func(t *testing.T) {
		c := api.checkIn(token, goal.ID, "2024-04-01", 1)
		other := api.register("thief@kanso.app")

		assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/checkins/"+c.ID, other, nil).Code)
		assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/checkins/"+c.ID, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/checkins/"+c.ID, token, nil).Code)
	})
}

func TestAPI_Progress(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("progress@kanso.app")
	catID := api.categoryID(token, "Fitness")

	weekly := api.createGoal(token, gin.H{"title": "Gym", "category_id": catID, "frequency": "weekly", "target_value": 3})
	custom := api.createGoal(token, gin.H{"title": "Pushups", "category_id": catID, "frequency": "custom"})

	for _, d := range []string{"2024-03-11", "2024-03-13", "2024-03-15"} {
		api.checkIn(token, weekly.ID, d, 1)
	}
	api.checkIn(token, custom.ID, "2024-02-29", 2)
	api.checkIn(token, custom.ID, "2024-02-29", 3)
	api.checkIn(token, custom.ID, "2024-01-01", 1)

	t.Run("By frequency", func(t *testing.T) {
		w := api.do(http.MethodGet, "/progress/by-frequency?date=2024-03-13", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode[map[string][]map[string]interface{}](t, w)
		require.Len(t, body["weekly"], 1)
		assert.EqualValues(t, 3, body["weekly"][0]["current_value"])
		assert.EqualValues(t, 100, body["weekly"][0]["percentage"])
		assert.Equal(t, "this week", body["weekly"][0]["period_label"])
		assert.Equal(t, "2024-03-10", body["weekly"][0]["period_start"])
		assert.Equal(t, true, body["weekly"][0]["completed"])

		require.Len(t, body["custom"], 1)
		assert.EqualValues(t, 6, body["custom"][0]["current_value"])
		assert.NotContains(t, body["custom"][0], "percentage")
		assert.NotContains(t, body, "daily")
	})

	t.Run("By frequency with a filter", func(t *testing.T) {
		body := decode[map[string]interface{}](t, api.do(http.MethodGet, "/progress/by-frequency?frequency=custom&date=2024-03-13", token, nil))
		assert.Contains(t, body, "custom")
		assert.NotContains(t, body, "weekly")

		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/progress/by-frequency?frequency=hourly", token, nil).Code)
	})

	t.Run("Single goal", func(t *testing.T) {
		w := api.do(http.MethodGet, "/progress/goal/"+weekly.ID+"?date=2024-03-20", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[map[string]interface{}](t, w)
		assert.EqualValues(t, 0, body["current_value"])
		assert.EqualValues(t, 0, body["percentage"])
	})

	t.Run("Calendar", func(t *testing.T) {
		w := api.do(http.MethodGet, "/progress/calendar/2024", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		cal := decode[calendarResponse](t, w)
		assert.Equal(t, 5, cal.Calendar["2024-02-29"])
		assert.Equal(t, 1, cal.Calendar["2024-01-01"])
		assert.Equal(t, 5, cal.MaxCount)
		assert.Equal(t, 9, cal.Total)
		assert.Empty(t, cal.Months)

		cached, ok := api.calendar.Get(context.Background(), mustUserID(t, api, token), 2024)
		require.True(t, ok, "a served calendar is memoized")
		assert.Equal(t, cal.Calendar, cached)
	})

	t.Run("Calendar layout", func(t *testing.T) {
		cal := decode[calendarResponse](t, api.do(http.MethodGet, "/progress/calendar/2024?layout=true", token, nil))
		require.Len(t, cal.Months, 12)

		cells := 0
		for _, m := range cal.Months {
			cells += len(m.Days)
		}
		assert.Equal(t, 366, cells)
		assert.Equal(t, 4, cal.Months[1].LeadingBlanks)
	})

	t.Run("A new check-in invalidates the memoized calendar", func(t *testing.T) {
		api.checkIn(token, weekly.ID, "2024-02-29", 1)

		cal := decode[calendarResponse](t, api.do(http.MethodGet, "/progress/calendar/2024", token, nil))
		assert.Equal(t, 6, cal.Calendar["2024-02-29"])
	})

	t.Run("Bad years", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/progress/calendar/twenty", token, nil).Code)
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/progress/calendar/0", token, nil).Code)
		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/progress/calendar/2024?layout=yes-please", token, nil).Code)
	})

	t.Run("Day detail", func(t *testing.T) {
		w := api.do(http.MethodGet, "/progress/day/2024-02-29", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode[map[string]interface{}](t, w)
		assert.EqualValues(t, 3, body["total_checkins"])
		entries := body["checkins"].([]interface{})
		require.Len(t, entries, 3)
		assert.Equal(t, "Pushups", entries[0].(map[string]interface{})["goal_title"])

		assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/progress/day/2024-02-30", token, nil).Code)
	})

	t.Run("Year overview", func(t *testing.T) {
		w := api.do(http.MethodGet, "/progress/year/2024", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decode[map[string]interface{}](t, w)
		assert.EqualValues(t, 2024, body["year"])
		assert.Len(t, body["goals"], 2)
	})

	t.Run("Legend", func(t *testing.T) {
		w := api.do(http.MethodGet, "/progress/legend", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]map[string]interface{}](t, w), 5)
	})

	t.Run("Another user's goal is forbidden", func(t *testing.T) {
		other := api.register("peeker@kanso.app")
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/progress/goal/"+weekly.ID, other, nil).Code)

		cal := decode[calendarResponse](t, api.do(http.MethodGet, "/progress/calendar/2024", other, nil))
		assert.Empty(t, cal.Calendar)
	})
}

func mustUserID(t *testing.T, api *testAPI, token string) string {
	t.Helper()
	w := api.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return decode[userResponse](t, w).ID
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidDate), http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{domain.ErrGoalNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: 2 goals", domain.ErrCategoryInUse), http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
