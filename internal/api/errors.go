package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"alcyxob/program-builder/internal/builder"
	"alcyxob/program-builder/internal/program"
	"alcyxob/program-builder/internal/repository"
	"alcyxob/program-builder/internal/service"

	"github.com/gin-gonic/gin"
)

// statusFor maps service and repository errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, program.ErrValidation),
		errors.Is(err, builder.ErrUnknownStep),
		errors.Is(err, builder.ErrEmptySelection),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrMissingCredentials),
		errors.Is(err, service.ErrNotPatientRole):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrProgramNotFound),
		errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPatientNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrVersionConflict),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrNotReadyToAssign),
		errors.Is(err, builder.ErrWrongStep),
		errors.Is(err, builder.ErrStepLocked):
		return http.StatusConflict
	case errors.Is(err, service.ErrExportUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError records err on the context for RequestLogger and writes the
// mapped status. Internal failures get a generic message.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		abortWithError(c, code, "An unexpected error occurred")
		return
	}
	abortWithError(c, code, err.Error())
}

// expectedVersion reads the optimistic-concurrency token from If-Match or the
// version query parameter. Absent means 0, which skips the check.
func expectedVersion(c *gin.Context) (int64, bool) {
	raw := strings.Trim(c.GetHeader("If-Match"), `"`)
	if raw == "" {
		raw = c.Query("version")
	}
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		abortWithError(c, http.StatusBadRequest, "version must be a non-negative integer")
		return 0, false
	}
	return v, true
}
