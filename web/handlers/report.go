package handlers

import (
	"fmt"
	"net/http"
	"time"

	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/utils"
	"faceclock.com/faceclock/web/common"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(c *gin.Context, sheet string, filename string, headers []interface{}, rows [][]interface{}) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheet)

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to build report"))
		return
	}
	for i := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to build report"))
			return
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to build report"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// EmployeeReport exports the employee register as an xlsx workbook.
func EmployeeReport(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		employees, err := core.ListEmployees(dm.DB(c.Request.Context()))
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load employees"))
			return
		}

		headers := []interface{}{
			"Employee ID", "Name", "Email", "Phone", "Position", "Department",
			"Joining Date", "Active", "Face Registered",
		}
		rows := utils.Map(employees, func(emp core.Employee) []interface{} {
			department := ""
			if emp.Department != nil {
				department = emp.Department.Name
			}
			joining := ""
			if emp.JoiningDate != nil {
				joining = emp.JoiningDate.Format("2006-01-02")
			}
			return []interface{}{
				emp.Code, emp.FullName(), emp.Email, emp.PhoneNumber,
				emp.Position, department, joining, emp.Active,
				len(emp.FaceEncoding) > 0,
			}
		})

		writeWorkbook(c, "Employees", "employees.xlsx", headers, rows)
	}
}

// AttendanceReport exports every employee's records in a date range as
// an xlsx workbook.
func AttendanceReport(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query struct {
			From string `form:"from" binding:"required"`
			To   string `form:"to" binding:"required"`
		}
		if err := c.ShouldBindQuery(&query); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}
		for _, d := range []string{query.From, query.To} {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				c.JSON(http.StatusBadRequest, common.NewErrorResponse("dates must be yyyy-MM-dd"))
				return
			}
		}

		records, err := core.AttendanceAllBetween(dm.DB(c.Request.Context()), query.From, query.To)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load attendance"))
			return
		}

		headers := []interface{}{
			"Date", "Employee ID", "Name", "Department", "Status",
			"Check In", "Check Out", "Working Hours", "Confidence",
		}
		rows := utils.Map(records, func(rec core.Attendance) []interface{} {
			code, name, department := "", "", ""
			if rec.Employee != nil {
				code = rec.Employee.Code
				name = rec.Employee.FullName()
				if rec.Employee.Department != nil {
					department = rec.Employee.Department.Name
				}
			}
			checkIn, checkOut := "", ""
			if rec.CheckIn != nil {
				checkIn = rec.CheckIn.Format("15:04")
			}
			if rec.CheckOut != nil {
				checkOut = rec.CheckOut.Format("15:04")
			}
			confidence := ""
			if rec.FaceConfidence != nil {
				confidence = fmt.Sprintf("%.2f%%", *rec.FaceConfidence)
			}
			return []interface{}{
				rec.Date, code, name, department, string(rec.Status),
				checkIn, checkOut, rec.WorkingHours(), confidence,
			}
		})

		filename := fmt.Sprintf("attendance-%s-%s.xlsx", query.From, query.To)
		writeWorkbook(c, "Attendance", filename, headers, rows)
	}
}
