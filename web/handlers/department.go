package handlers

import (
	"net/http"

	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/web/common"
	"github.com/gin-gonic/gin"
)

// ListDepartments returns all departments.
func ListDepartments(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		departments, err := core.ListDepartments(dm.DB(c.Request.Context()))
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load departments"))
			return
		}

		c.JSON(http.StatusOK, common.NewSearchResponse(departments, int64(len(departments))))
	}
}
