package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/models"
)

type assignmentFixture struct {
	classes     *fakeClassRepo
	assignments *fakeAssignmentRepo
	service     AssignmentService
	class       models.Class
	teacher     Principal
	student     Principal
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()

	classes := newFakeClassRepo()
	assignments := newFakeAssignmentRepo()
	class := classes.addClass(models.Class{Name: "Algebra", Code: "ASG234", TeacherID: 1})
	classes.addEnrollment(class.ID, 5)

	guard := NewAccessGuard(classes, testLogger())
	validate := validator.New(validator.WithRequiredStructEnabled())

	return &assignmentFixture{
		classes:     classes,
		assignments: assignments,
		service:     NewAssignmentService(assignments, guard, validate, testLogger()),
		class:       class,
		teacher:     Principal{ID: 1, Role: models.RoleTeacher},
		student:     Principal{ID: 5, Role: models.RoleStudent},
	}
}

func TestAssignmentCreateByOwningTeacher(t *testing.T) {
	f := newAssignmentFixture(t)
	points := 50.0

	created, err := f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		ClassID:   f.class.ID,
		Title:     "Lab Report",
		Type:      models.AssignmentTypeQuiz,
		MaxPoints: &points,
		Published: true,
	}, f.teacher)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, models.AssignmentTypeQuiz, created.Type)
	require.Equal(t, uint(1), created.TeacherID)
}

func TestAssignmentCreateDefaultsType(t *testing.T) {
	f := newAssignmentFixture(t)

	created, err := f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		ClassID: f.class.ID,
		Title:   "Reading",
	}, f.teacher)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentTypeAssignment, created.Type)
}

func TestAssignmentCreateSanitizesDescription(t *testing.T) {
	f := newAssignmentFixture(t)

	created, err := f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		ClassID:     f.class.ID,
		Title:       "Essay",
		Description: `Read <script>alert("x")</script>chapter two`,
	}, f.teacher)
	require.NoError(t, err)
	require.Equal(t, "Read chapter two", created.Description)
}

func TestAssignmentCreateRequiresOwnership(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.Create(context.Background(), dto.AssignmentCreateRequest{
		ClassID: f.class.ID,
		Title:   "Rogue",
	}, Principal{ID: 9, Role: models.RoleTeacher})
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestAssignmentUpdatePatchesFields(t *testing.T) {
	f := newAssignmentFixture(t)
	assignment := f.assignments.addAssignment(models.Assignment{ClassID: f.class.ID, TeacherID: 1, Title: "Draft", Type: models.AssignmentTypeAssignment})

	title := "Final"
	published := true
	updated, err := f.service.Update(context.Background(), assignment.ID, dto.AssignmentUpdateRequest{
		Title:     &title,
		Published: &published,
	}, f.teacher)
	require.NoError(t, err)
	require.Equal(t, "Final", updated.Title)
	require.True(t, updated.Published)
}

func TestAssignmentDeleteUnknownID(t *testing.T) {
	f := newAssignmentFixture(t)

	err := f.service.Delete(context.Background(), 404, f.teacher)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAssignmentGetDraftHiddenFromStudent(t *testing.T) {
	f := newAssignmentFixture(t)
	draft := f.assignments.addAssignment(models.Assignment{ClassID: f.class.ID, TeacherID: 1, Title: "Draft", Type: models.AssignmentTypeAssignment})

	_, err := f.service.Get(context.Background(), draft.ID, f.student)
	require.ErrorIs(t, err, ErrNotAuthorized)

	got, err := f.service.Get(context.Background(), draft.ID, f.teacher)
	require.NoError(t, err)
	require.Equal(t, draft.ID, got.ID)
}

func TestAssignmentListFiltersDraftsForStudents(t *testing.T) {
	f := newAssignmentFixture(t)
	f.assignments.addAssignment(models.Assignment{ClassID: f.class.ID, TeacherID: 1, Title: "Draft", Type: models.AssignmentTypeAssignment})
	published := f.assignments.addAssignment(models.Assignment{ClassID: f.class.ID, TeacherID: 1, Title: "Live", Type: models.AssignmentTypeAssignment, Published: true})

	forStudent, err := f.service.ListForClass(context.Background(), f.class.ID, f.student)
	require.NoError(t, err)
	require.Len(t, forStudent, 1)
	require.Equal(t, published.ID, forStudent[0].ID)

	forTeacher, err := f.service.ListForClass(context.Background(), f.class.ID, f.teacher)
	require.NoError(t, err)
	require.Len(t, forTeacher, 2)
}

func TestAssignmentListRequiresMembership(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.ListForClass(context.Background(), f.class.ID, Principal{ID: 9, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrEnrollmentRequired)
}
