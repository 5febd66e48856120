package attendance

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/recognition"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestMarkRecognizedCreatesFirstCheckIn(t *testing.T) {
	db, mock := newMockGorm(t)
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `attendances` (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"attendance_id"}))
	mock.ExpectExec("INSERT INTO `attendances`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	transition, rec, err := MarkRecognized(db, 7, now, 82.5)
	require.NoError(t, err)
	assert.Equal(t, TransitionCheckIn, transition)
	assert.Equal(t, "2026-08-24", rec.Date)
	assert.Equal(t, core.StatusPresent, rec.Status)
	assert.Equal(t, now, *rec.CheckIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two racing requests can both pass the locked existence check when no
// row exists yet; the loser's insert then hits the (employee, date)
// unique key. That constraint violation must come back as the benign
// duplicate kind, not a raw driver error.
func TestMarkRecognizedTranslatesDuplicateKey(t *testing.T) {
	db, mock := newMockGorm(t)
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `attendances` (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"attendance_id"}))
	mock.ExpectExec("INSERT INTO `attendances`").
		WillReturnError(&gomysql.MySQLError{
			Number:  1062,
			Message: "Duplicate entry '7-2026-08-24' for key 'idx_employee_date'",
		})
	mock.ExpectRollback()

	_, _, err := MarkRecognized(db, 7, now, 82.5)
	require.Error(t, err)
	assert.True(t, recognition.IsKind(err, recognition.KindDuplicateAttendance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRecognizedChecksOutExistingRecord(t *testing.T) {
	db, mock := newMockGorm(t)
	checkIn := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	now := checkIn.Add(8 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `attendances` (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(
			[]string{"attendance_id", "employee_id", "date", "status", "check_in"}).
			AddRow(11, 7, "2026-08-24", "present", checkIn))
	mock.ExpectExec("UPDATE `attendances` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	transition, rec, err := MarkRecognized(db, 7, now, 82.5)
	require.NoError(t, err)
	assert.Equal(t, TransitionCheckOut, transition)
	assert.Equal(t, now, *rec.CheckOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}
