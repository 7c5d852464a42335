package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/jobhunt/internal/apperr"
)

// RespondWithError inspects err: if it is an *apperr.Error the status and
// structured body are derived automatically; otherwise a generic 500 is sent.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	internal := apperr.Internal(err)
	c.JSON(http.StatusInternalServerError, internal.ToResponse())
}

// RespondOK sends a 200 response with the payload as the bare body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
