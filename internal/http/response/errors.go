package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/premsagarmanikyala/mantrix-ai/internal/pkg/errors"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/apierr"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

// Classify maps a service error to an *apierr.Error. Unknown errors become a 500 carrying fallbackCode.
func Classify(err error, fallbackCode string) *apierr.Error {
	if ae, ok := apierr.From(err); ok {
		return ae
	}
	switch {
	case errors.Is(err, apperr.ErrInsufficientSources):
		return apierr.BadRequest("insufficient_sources", err)
	case errors.Is(err, apperr.ErrTooManySources):
		return apierr.BadRequest("too_many_sources", err)
	case errors.Is(err, apperr.ErrInvalidScheduleParameter):
		return apierr.BadRequest("invalid_schedule_parameter", err)
	case errors.Is(err, apperr.ErrInvalidScheduleMode):
		return apierr.BadRequest("invalid_schedule_mode", err)
	case errors.Is(err, apperr.ErrInvalidArgument):
		return apierr.BadRequest("invalid_request", err)
	case errors.Is(err, apperr.ErrNotFound):
		return apierr.NotFound("not_found", err)
	case errors.Is(err, apperr.ErrUnauthorized):
		return apierr.New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperr.ErrAlreadyExists):
		return apierr.New(http.StatusConflict, "already_exists", err)
	default:
		return apierr.Internal(fallbackCode, err)
	}
}

// RespondServiceError writes the classified error. Server errors are logged and their cause is not echoed.
func RespondServiceError(c *gin.Context, log *logger.Logger, fallbackCode string, err error) {
	ae := Classify(err, fallbackCode)
	if ae.Status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", "path", c.FullPath(), "code", ae.Code, "error", err)
		}
		RespondError(c, ae.Status, ae.Code, errors.New("internal server error"))
		return
	}
	RespondError(c, ae.Status, ae.Code, err)
}
