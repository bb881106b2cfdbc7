package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/activation_api/internal/utils"
)

// intParam parses a positive integer path parameter, writing a 400 and
// returning false when it is malformed.
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

func optionalQuery(c *gin.Context, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}

func queryInt(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// bindError reports a request binding failure as a validation error.
func bindError(c *gin.Context, err error) {
	utils.HandleError(c, utils.Validationf("invalid request: %v", err))
}
