package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/logger"
)

// errorMapping ties a sentinel to its HTTP rendering
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Order matters: the first matching sentinel wins
var errorMappings = []errorMapping{
	{apperrors.ErrIllegalTransition, http.StatusConflict, dto.ErrorCodeIllegalTransition, "Action not allowed in the current status"},
	{apperrors.ErrInvalidTarget, http.StatusUnprocessableEntity, dto.ErrorCodeInvalidTarget, "Invalid redirection target"},
	{apperrors.ErrDeleteNotAllowed, http.StatusConflict, dto.ErrorCodeDeleteNotAllowed, "Application cannot be deleted once an interview is scheduled"},
	{apperrors.ErrApplicationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Application not found"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrEBProfileNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "EB profile not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Resource was modified concurrently"},
	{apperrors.ErrApplicationExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "An application for this track already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "Too many requests"},
}

// ErrorStatus resolves the HTTP status and error detail for err
func ErrorStatus(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		message := m.message
		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Message != "" {
			message = ce.Message
		}

		detail := dto.NewErrorDetail(m.code, message)
		if details := apperrors.DetailsOf(err); len(details) > 0 {
			detail = detail.WithDetails(details)
			if len(details) == 1 && m.code == dto.ErrorCodeValidationFailed {
				for field := range details {
					detail = detail.WithField(field)
				}
			}
		}
		if m.code == dto.ErrorCodeConflict {
			detail.Severity = dto.ErrorSeverityWarning
		}
		return m.status, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled error")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}
