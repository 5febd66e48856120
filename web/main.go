package main

import (
	"context"
	"encoding/base64"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"faceclock.com/faceclock/attendance"
	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/infrastructure/communication"
	"faceclock.com/faceclock/infrastructure/devops"
	"faceclock.com/faceclock/infrastructure/filesystem"
	"faceclock.com/faceclock/recognition"
	"faceclock.com/faceclock/web/handlers"
	"faceclock.com/faceclock/web/middlewares"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] no .env file loaded: %v", err)
	}

	jwtSecret, err := base64.StdEncoding.DecodeString(os.Getenv("JWT_SECRET"))
	if err != nil || len(jwtSecret) == 0 {
		log.Fatalf("[ERROR] JWT_SECRET must be a non-empty base64 string")
	}

	maxConns := 10
	if v := os.Getenv("DB_MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxConns = n
		}
	}

	dm, err := core.New(os.Getenv("DB_DSN"), maxConns, core.LogLevelWarn)
	if err != nil {
		log.Fatalf("[ERROR] connect database: %v", err)
	}
	defer dm.Close()

	if err := dm.Migrate(); err != nil {
		log.Fatalf("[ERROR] migrate database: %v", err)
	}

	cfg, err := devops.LoadRecognitionConfig(context.Background())
	if err != nil {
		log.Printf("[WARN] recognition config not loaded, using defaults: %v", err)
		cfg = recognition.DefaultConfig()
	}

	detector, err := recognition.NewPigoDetector(os.Getenv("FACEFINDER_CASCADE"), recognition.DefaultPigoParams())
	if err != nil {
		log.Fatalf("[ERROR] load face detector: %v", err)
	}

	encoder, err := recognition.NewOpenFaceEncoder(os.Getenv("OPENFACE_MODEL"))
	if err != nil {
		log.Fatalf("[ERROR] load face encoder: %v", err)
	}
	defer encoder.Close()

	normalizer := recognition.NewNormalizer()
	extractor := recognition.NewExtractor(detector, encoder)
	matcher := recognition.NewMatcher(cfg)
	store := recognition.NewEncodingStore()

	var notifier attendance.Notifier
	if os.Getenv("SLACK_BOT_TOKEN") != "" {
		notifier = communication.ConnectSlack()
	}

	repo := attendance.NewRepository(dm)
	svc := attendance.NewService(normalizer, extractor, matcher, store, repo, repo, notifier)

	faceBucket := os.Getenv("FACE_IMAGE_BUCKET")

	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		protected.POST("/attendance/mark", handlers.MarkAttendance(svc))
		protected.GET("/attendance", handlers.ListAttendance(dm))

		staff := protected.Group("")
		staff.Use(middlewares.RequireStaff())
		{
			staff.POST("/attendance/identify", handlers.IdentifyAttendance(svc))
			staff.POST("/attendance/manual", handlers.ManualAttendance(repo))
			staff.DELETE("/attendance/:id", handlers.DeleteAttendance(dm))

			staff.POST("/employees", handlers.CreateEmployee(dm))
			staff.GET("/employees", handlers.ListEmployees(dm))
			staff.GET("/employees/:id", handlers.GetEmployee(dm))
			staff.PUT("/employees/:id", handlers.UpdateEmployee(dm))
			staff.DELETE("/employees/:id", handlers.DeleteEmployee(dm, store))
			staff.POST("/employees/:id/face", handlers.EnrollFace(dm, normalizer, extractor, store, faceBucket))
			staff.GET("/employees/:id/face", handlers.FaceImage(dm, faceBucket, filesystem.ReadFaceImage))
			staff.POST("/employees/:id/face/regenerate", handlers.RegenerateFace(dm, normalizer, extractor, store, faceBucket, filesystem.ReadFaceImage))

			staff.GET("/departments", handlers.ListDepartments(dm))

			staff.POST("/salaries/generate", handlers.GenerateSalaries(dm))
			staff.GET("/salaries", handlers.ListSalaries(dm))
			staff.GET("/salaries/report", handlers.SalaryReport(dm))
			staff.GET("/reports/employees", handlers.EmployeeReport(dm))
			staff.GET("/reports/attendance", handlers.AttendanceReport(dm))
		}
	}

	addr := ":8090"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	if err := r.Run(addr); err != nil {
		log.Fatalf("[ERROR] server stopped: %v", err)
	}
}
