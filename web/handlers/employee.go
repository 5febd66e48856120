package handlers

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strconv"

	"faceclock.com/faceclock/attendance"
	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/infrastructure/filesystem"
	"faceclock.com/faceclock/recognition"
	"faceclock.com/faceclock/utils"
	"faceclock.com/faceclock/web/common"
	"github.com/gin-gonic/gin"
)

type employeeView struct {
	EmployeeID uint   `json:"employee_id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Position   string `json:"position"`
	Department string `json:"department,omitempty"`
	Active     bool   `json:"active"`
	Enrolled   bool   `json:"enrolled"`
}

func toEmployeeView(emp core.Employee) employeeView {
	view := employeeView{
		EmployeeID: emp.EmployeeID,
		Code:       emp.Code,
		Name:       emp.FullName(),
		Email:      emp.Email,
		Position:   emp.Position,
		Active:     emp.Active,
		Enrolled:   len(emp.FaceEncoding) > 0,
	}
	if emp.Department != nil {
		view.Department = emp.Department.Name
	}
	return view
}

type createEmployeeRequest struct {
	FirstName    string           `json:"first_name" binding:"required"`
	Surname      string           `json:"surname" binding:"required"`
	Email        string           `json:"email" binding:"required,email"`
	PhoneNumber  string           `json:"phone_number" binding:"max=15"`
	Address      string           `json:"address"`
	Position     string           `json:"position"`
	DepartmentID *uint            `json:"department_id"`
	JoiningDate  *common.DateOnly `json:"joining_date"`

	BaseSalary        float64 `json:"base_salary" binding:"gte=0"`
	HourlyRate        float64 `json:"hourly_rate" binding:"gte=0"`
	OvertimeRate      float64 `json:"overtime_rate" binding:"gte=0"`
	StandardWorkHours int     `json:"standard_work_hours" binding:"gte=0,lte=24"`
}

// CreateEmployee registers a new employee with a generated code.
func CreateEmployee(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createEmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		db := dm.DB(c.Request.Context())
		code, err := core.GenerateEmployeeCode(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to allocate employee code"))
			return
		}

		emp := core.Employee{
			Code:              code,
			FirstName:         req.FirstName,
			Surname:           req.Surname,
			Email:             req.Email,
			PhoneNumber:       req.PhoneNumber,
			Address:           req.Address,
			Position:          req.Position,
			DepartmentID:      req.DepartmentID,
			Active:            true,
			BaseSalary:        req.BaseSalary,
			HourlyRate:        req.HourlyRate,
			OvertimeRate:      req.OvertimeRate,
			StandardWorkHours: req.StandardWorkHours,
		}
		if emp.StandardWorkHours == 0 {
			emp.StandardWorkHours = 8
		}
		if req.JoiningDate != nil && !req.JoiningDate.IsZero() {
			emp.JoiningDate = &req.JoiningDate.Time
		}

		if err := db.Create(&emp).Error; err != nil {
			log.Printf("[ERROR] create employee: %v", err)
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to create employee"))
			return
		}

		c.JSON(http.StatusCreated, common.NewSuccessResponse(toEmployeeView(emp)))
	}
}

// GetEmployee returns one employee by id.
func GetEmployee(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid employee id"))
			return
		}

		emp, err := core.FindEmployeeByID(dm.DB(c.Request.Context()), uint(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load employee"))
			return
		}
		if emp == nil {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("employee not found"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(toEmployeeView(*emp)))
	}
}

// ListEmployees returns all employees.
func ListEmployees(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		employees, err := core.ListEmployees(dm.DB(c.Request.Context()))
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load employees"))
			return
		}

		views := utils.Map(employees, toEmployeeView)
		c.JSON(http.StatusOK, common.NewSearchResponse(views, int64(len(views))))
	}
}

// FacePhotoReader loads an archived enrollment photo into out.
// Satisfied by filesystem.ReadFaceImage.
type FacePhotoReader func(bucket string, key string, ctx context.Context, out io.Writer) error

// FaceImage streams the employee's archived enrollment photo.
func FaceImage(dm *core.DatabaseManager, bucket string, read FacePhotoReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid employee id"))
			return
		}

		emp, err := core.FindEmployeeByID(dm.DB(c.Request.Context()), uint(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load employee"))
			return
		}
		if emp == nil || emp.FaceImageKey == nil || bucket == "" {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("no face image on file"))
			return
		}

		var buf bytes.Buffer
		if err := read(bucket, *emp.FaceImageKey, c.Request.Context(), &buf); err != nil {
			log.Printf("[ERROR] read face image for %s: %v", emp.Code, err)
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load face image"))
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}

// EnrollFace extracts a reference encoding from an uploaded photo and
// stores it against the employee, replacing any previous one. The
// decode cache entry is dropped so the next recognition sees the new
// encoding.
func EnrollFace(dm *core.DatabaseManager, normalizer *recognition.Normalizer, extractor attendance.Extractor, store *recognition.EncodingStore, bucket string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid employee id"))
			return
		}
		employeeID := uint(id)

		db := dm.DB(c.Request.Context())
		emp, err := core.FindEmployeeByID(db, employeeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load employee"))
			return
		}
		if emp == nil {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("employee not found"))
			return
		}

		capture, ok := readCapture(c)
		if !ok {
			return
		}

		img, normalized, err := normalizer.Normalize(capture.ContentType, capture.Data)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewTypedErrorResponse(
				recognition.MessageOf(err), string(recognition.KindOf(err))))
			return
		}

		vec, err := extractor.Extract(img)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewTypedErrorResponse(
				recognition.MessageOf(err), string(recognition.KindOf(err))))
			return
		}

		var imageKey *string
		if bucket != "" {
			key, err := filesystem.SaveFaceImage(bucket, emp.Code, normalized, c.Request.Context())
			if err != nil {
				// Enrollment proceeds without the archived photo.
				log.Printf("[WARN] save face image for %s: %v", emp.Code, err)
			} else {
				imageKey = utils.Ptr(key)
			}
		}

		raw, err := recognition.MarshalEncoding(vec)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to pack face encoding"))
			return
		}

		if err := core.SaveFaceEncoding(db, employeeID, raw, imageKey); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to save face encoding"))
			return
		}
		store.Invalidate(employeeID)

		log.Printf("[INFO] enrolled face for employee %s", emp.Code)
		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"employee_id": emp.Code,
			"message":     "Face registered successfully.",
		}))
	}
}

// RegenerateFace rebuilds the employee's reference encoding from the
// photo already on file, without a new upload. Useful after the
// detector or embedding model changes. The cache entry is dropped so
// the next recognition uses the fresh encoding.
func RegenerateFace(dm *core.DatabaseManager, normalizer *recognition.Normalizer, extractor attendance.Extractor, store *recognition.EncodingStore, bucket string, read FacePhotoReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid employee id"))
			return
		}
		employeeID := uint(id)

		db := dm.DB(c.Request.Context())
		emp, err := core.FindEmployeeByID(db, employeeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load employee"))
			return
		}
		if emp == nil {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("employee not found"))
			return
		}
		if emp.FaceImageKey == nil || bucket == "" {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("no face image on file"))
			return
		}

		var buf bytes.Buffer
		if err := read(bucket, *emp.FaceImageKey, c.Request.Context(), &buf); err != nil {
			log.Printf("[ERROR] read face image for %s: %v", emp.Code, err)
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load face image"))
			return
		}

		// Archived photos are the normalized JPEGs saved at enrollment.
		img, _, err := normalizer.Normalize("image/jpeg", buf.Bytes())
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewTypedErrorResponse(
				recognition.MessageOf(err), string(recognition.KindOf(err))))
			return
		}

		vec, err := extractor.Extract(img)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewTypedErrorResponse(
				recognition.MessageOf(err), string(recognition.KindOf(err))))
			return
		}

		raw, err := recognition.MarshalEncoding(vec)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to pack face encoding"))
			return
		}

		if err := core.SaveFaceEncoding(db, employeeID, raw, nil); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to save face encoding"))
			return
		}
		store.Invalidate(employeeID)

		log.Printf("[INFO] regenerated face encoding for employee %s", emp.Code)
		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"employee_id": emp.Code,
			"message":     "Face encoding regenerated.",
		}))
	}
}

type updateEmployeeRequest struct {
	FirstName    *string          `json:"first_name"`
	Surname      *string          `json:"surname"`
	Email        *string          `json:"email" binding:"omitempty,email"`
	PhoneNumber  *string          `json:"phone_number" binding:"omitempty,max=15"`
	Address      *string          `json:"address"`
	Position     *string          `json:"position"`
	DepartmentID *uint            `json:"department_id"`
	JoiningDate  *common.DateOnly `json:"joining_date"`
	Active       *bool            `json:"active"`

	BaseSalary        *float64 `json:"base_salary" binding:"omitempty,gte=0"`
	HourlyRate        *float64 `json:"hourly_rate" binding:"omitempty,gte=0"`
	OvertimeRate      *float64 `json:"overtime_rate" binding:"omitempty,gte=0"`
	StandardWorkHours *int     `json:"standard_work_hours" binding:"omitempty,gte=0,lte=24"`
}

// UpdateEmployee applies a partial update. Omitted fields keep their
// values; the code and face encoding are never updatable here.
func UpdateEmployee(dm *core.DatabaseManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid employee id"))
			return
		}

		var req updateEmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		db := dm.DB(c.Request.Context())
		emp, err := core.FindEmployeeByID(db, uint(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to load employee"))
			return
		}
		if emp == nil {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("employee not found"))
			return
		}

		if req.FirstName != nil {
			emp.FirstName = *req.FirstName
		}
		if req.Surname != nil {
			emp.Surname = *req.Surname
		}
		if req.Email != nil {
			emp.Email = *req.Email
		}
		if req.PhoneNumber != nil {
			emp.PhoneNumber = *req.PhoneNumber
		}
		if req.Address != nil {
			emp.Address = *req.Address
		}
		if req.Position != nil {
			emp.Position = *req.Position
		}
		if req.DepartmentID != nil {
			emp.DepartmentID = req.DepartmentID
		}
		if req.JoiningDate != nil && !req.JoiningDate.IsZero() {
			emp.JoiningDate = &req.JoiningDate.Time
		}
		if req.Active != nil {
			emp.Active = *req.Active
		}
		if req.BaseSalary != nil {
			emp.BaseSalary = *req.BaseSalary
		}
		if req.HourlyRate != nil {
			emp.HourlyRate = *req.HourlyRate
		}
		if req.OvertimeRate != nil {
			emp.OvertimeRate = *req.OvertimeRate
		}
		if req.StandardWorkHours != nil {
			emp.StandardWorkHours = *req.StandardWorkHours
		}

		if err := db.Save(emp).Error; err != nil {
			log.Printf("[ERROR] update employee %s: %v", emp.Code, err)
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to update employee"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(toEmployeeView(*emp)))
	}
}

// DeleteEmployee removes the employee row and their cached encoding.
// Attendance and salary history keeps its rows.
func DeleteEmployee(dm *core.DatabaseManager, store *recognition.EncodingStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid employee id"))
			return
		}
		employeeID := uint(id)

		result := dm.DB(c.Request.Context()).Delete(&core.Employee{}, employeeID)
		if result.Error != nil {
			log.Printf("[ERROR] delete employee %d: %v", employeeID, result.Error)
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("failed to delete employee"))
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("employee not found"))
			return
		}
		store.Invalidate(employeeID)

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"deleted": employeeID}))
	}
}
