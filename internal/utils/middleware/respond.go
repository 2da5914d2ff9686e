package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/ariachat/server/internal/utils/errors"
)

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.StatusCode, err.ToResponse())
}
