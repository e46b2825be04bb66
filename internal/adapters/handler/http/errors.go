package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-progress/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

var badRequestErrors = []error{
	domain.ErrInvalidUserID,
	domain.ErrInvalidEmail,
	domain.ErrInvalidUsername,
	domain.ErrPasswordTooShort,
	domain.ErrCategoryTitleEmpty,
	domain.ErrCategoryTitleTooLong,
	domain.ErrGoalTitleEmpty,
	domain.ErrGoalTitleTooLong,
	domain.ErrGoalNoCategory,
	domain.ErrInvalidFrequency,
	domain.ErrInvalidTarget,
	domain.ErrInvalidCheckIn,
	domain.ErrInvalidDate,
	domain.ErrInvalidValue,
	domain.ErrNoteTooLong,
	domain.ErrInvalidYear,
}

var notFoundErrors = []error{
	domain.ErrUserNotFound,
	domain.ErrCategoryNotFound,
	domain.ErrGoalNotFound,
	domain.ErrCheckInNotFound,
}

var conflictErrors = []error{
	domain.ErrEmailAlreadyExists,
	domain.ErrUsernameTaken,
	domain.ErrCategoryExists,
	domain.ErrCategoryInUse,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the error response. Internal errors are logged and
// hidden behind a generic message.
func handleError(c *gin.Context, err error) {
	status := statusFor(err)

	switch status {
	case http.StatusInternalServerError:
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.FullPath(), err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
	case http.StatusForbidden:
		c.JSON(status, gin.H{"error": "forbidden"})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// currentUser reads the id set by the auth middleware.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return "", false
	}
	return userID, true
}
