package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"faceclock.com/faceclock/attendance"
	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/recognition"
	"faceclock.com/faceclock/web/common"
	"faceclock.com/faceclock/web/middlewares"
	"github.com/gin-gonic/gin"
)

// readCapture pulls the uploaded face photo out of the multipart form.
func readCapture(c *gin.Context) (attendance.Capture, bool) {
	file, err := c.FormFile("face_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("face_image file is required"))
		return attendance.Capture{}, false
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("could not read face_image"))
		return attendance.Capture{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("could not read face_image"))
		return attendance.Capture{}, false
	}

	return attendance.Capture{
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func outcomeStatus(outcome attendance.Outcome) int {
	if outcome.Success {
		return http.StatusOK
	}
	if outcome.ErrorType == string(recognition.KindUnexpected) {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// MarkAttendance verifies the caller's face against their own stored
// encoding and advances today's attendance.
func MarkAttendance(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID := middlewares.EmployeeID(c)
		if employeeID == 0 {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("no employee identity in token"))
			return
		}

		capture, ok := readCapture(c)
		if !ok {
			return
		}

		outcome := svc.VerifySelf(c.Request.Context(), employeeID, capture)
		c.JSON(outcomeStatus(outcome), outcome)
	}
}

// IdentifyAttendance matches the capture against every enrolled
// employee. Staff only, meant for shared kiosk terminals.
func IdentifyAttendance(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		capture, ok := readCapture(c)
		if !ok {
			return
		}

		outcome := svc.IdentifyAny(c.Request.Context(), capture)
		c.JSON(outcomeStatus(outcome), outcome)
	}
}

type manualAttendanceRequest struct {
	EmployeeID uint                  `json:"employee_id" binding:"required"`
	Date       common.DateOnly       `json:"date" binding:"required"`
	Status     core.AttendanceStatus `json:"status" binding:"required,oneof=present absent late half_day"`
	CheckIn    *common.LocalDateTime `json:"check_in"`
	CheckOut   *common.LocalDateTime `json:"check_out"`
}

// ManualAttendance lets staff create or correct an attendance record
// without face recognition.
func ManualAttendance(repo *attendance.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req manualAttendanceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		var checkIn, checkOut *time.Time
		if req.CheckIn != nil {
			checkIn = &req.CheckIn.Time
		}
		if req.CheckOut != nil {
			checkOut = &req.CheckOut.Time
		}

		rec, err := repo.MarkManual(c.Request.Context(), req.EmployeeID, req.Date.Time, req.Status, checkIn, checkOut)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to save attendance"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(rec))
	}
}

// DeleteAttendance removes one record by id, for administrative
// corrections that a manual re-mark cannot express.
func DeleteAttendance(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid attendance id"))
			return
		}

		result := dm.DB(c.Request.Context()).Delete(&core.Attendance{}, uint(id))
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to delete attendance"))
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("attendance record not found"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"deleted": uint(id)}))
	}
}

// ListAttendance returns one employee's records for a date range. Staff
// can query anyone; everyone else only themselves.
func ListAttendance(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query struct {
			EmployeeID uint   `form:"employee_id"`
			From       string `form:"from" binding:"required"`
			To         string `form:"to" binding:"required"`
		}
		if err := c.ShouldBindQuery(&query); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		employeeID := query.EmployeeID
		if !middlewares.IsStaff(c) || employeeID == 0 {
			employeeID = middlewares.EmployeeID(c)
		}

		for _, d := range []string{query.From, query.To} {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				c.JSON(http.StatusBadRequest, common.NewErrorResponse("dates must be yyyy-MM-dd"))
				return
			}
		}

		records, err := core.AttendanceBetween(dm.DB(c.Request.Context()), employeeID, query.From, query.To)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load attendance"))
			return
		}

		c.JSON(http.StatusOK, common.NewSearchResponse(records, int64(len(records))))
	}
}
