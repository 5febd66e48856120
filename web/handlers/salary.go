package handlers

import (
	"fmt"
	"log"
	"net/http"

	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/utils"
	"faceclock.com/faceclock/web/common"
	"github.com/gin-gonic/gin"
)

type generateSalariesRequest struct {
	Year  int `json:"year" binding:"required,gte=2000,lte=2100"`
	Month int `json:"month" binding:"required,gte=1,lte=12"`
}

// GenerateSalaries recalculates the month's salary for every active
// employee. Rerunning for the same period overwrites the previous rows.
func GenerateSalaries(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req generateSalariesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		db := dm.DB(c.Request.Context())
		employees, err := core.ListEmployees(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load employees"))
			return
		}
		active := utils.Filter(employees, func(emp core.Employee) bool { return emp.Active })

		generated := 0
		for i := range active {
			if _, err := core.GenerateSalary(db, &active[i], req.Year, req.Month); err != nil {
				log.Printf("[ERROR] generate salary for %s: %v", active[i].Code, err)
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to generate salaries"))
				return
			}
			generated++
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"year":      req.Year,
			"month":     req.Month,
			"generated": generated,
		}))
	}
}

// ListSalaries returns the persisted salary rows for a period.
func ListSalaries(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, ok := bindPeriod(c)
		if !ok {
			return
		}

		salaries, err := core.SalariesForPeriod(dm.DB(c.Request.Context()), year, month)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load salaries"))
			return
		}

		c.JSON(http.StatusOK, common.NewSearchResponse(salaries, int64(len(salaries))))
	}
}

// SalaryReport streams the period's payroll as an xlsx workbook.
func SalaryReport(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, month, ok := bindPeriod(c)
		if !ok {
			return
		}

		salaries, err := core.SalariesForPeriod(dm.DB(c.Request.Context()), year, month)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load salaries"))
			return
		}

		headers := []interface{}{
			"Employee ID", "Name", "Department",
			"Days Present", "Working Hours", "Overtime Hours",
			"Base Pay", "Hours Pay", "Overtime Pay", "Total Salary",
		}
		rows := utils.Map(salaries, func(s core.Salary) []interface{} {
			code, name, department := "", "", ""
			if s.Employee != nil {
				code = s.Employee.Code
				name = s.Employee.FullName()
				if s.Employee.Department != nil {
					department = s.Employee.Department.Name
				}
			}
			return []interface{}{
				code, name, department,
				s.TotalDays, s.TotalWorkingHours, s.OvertimeHours,
				s.BasePay, s.RegularHoursPay, s.OvertimePay, s.TotalSalary,
			}
		})

		filename := fmt.Sprintf("salaries-%04d-%02d.xlsx", year, month)
		writeWorkbook(c, "Salaries", filename, headers, rows)
	}
}

func bindPeriod(c *gin.Context) (int, int, bool) {
	var query struct {
		Year  int `form:"year" binding:"required,gte=2000,lte=2100"`
		Month int `form:"month" binding:"required,gte=1,lte=12"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
		return 0, 0, false
	}
	return query.Year, query.Month, true
}
