package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Submission{},
		&models.QuizQuestion{},
		&models.QuizAnswer{},
		&models.GradebookEntry{},
		&models.Notification{},
	))
	return db
}

type fixtureIDs struct {
	teacherID    uint
	studentID    uint
	classID      uint
	assignmentID uint
}

// seedClasswork creates one teacher, one enrolled student, a class and a
// published assignment, returning the generated IDs.
func seedClasswork(t *testing.T, db *gorm.DB, code, email string) fixtureIDs {
	t.Helper()

	teacher := models.User{Name: "Teacher", Email: "t-" + email, Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)
	student := models.User{Name: "Student", Email: "s-" + email, Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	class := models.Class{Name: "Class " + code, Code: code, TeacherID: teacher.ID}
	require.NoError(t, db.Create(&class).Error)
	require.NoError(t, db.Create(&models.Enrollment{ClassID: class.ID, UserID: student.ID}).Error)

	assignment := models.Assignment{ClassID: class.ID, TeacherID: teacher.ID, Title: "Work " + code, Type: models.AssignmentTypeAssignment, Published: true}
	require.NoError(t, db.Create(&assignment).Error)

	return fixtureIDs{
		teacherID:    teacher.ID,
		studentID:    student.ID,
		classID:      class.ID,
		assignmentID: assignment.ID,
	}
}
