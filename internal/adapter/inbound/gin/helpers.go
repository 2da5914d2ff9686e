package gin

import (
	"strconv"

	"github.com/ariachat/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/ariachat/server/internal/utils/errors"
)

// requireAccountID returns the authenticated account or writes 401.
func requireAccountID(c *gin.Context) (uuid.UUID, bool) {
	id := middleware.GetAccountID(c)
	if id == uuid.Nil {
		appErr := apperrors.Unauthorized("")
		c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
		return uuid.Nil, false
	}
	return id, true
}

// pathAccountID parses the :id route parameter.
func pathAccountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		appErr := apperrors.BadRequest("INVALID_ID", "invalid account id")
		c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil {
		return v
	}
	return def
}

// flattenHeaders keeps the first value of each header.
func flattenHeaders(c *gin.Context) map[string]string {
	out := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
