package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/models"
)

type quizFixture struct {
	classes     *fakeClassRepo
	assignments *fakeAssignmentRepo
	submissions *fakeSubmissionRepo
	quiz        *fakeQuizRepo
	service     QuizService
	class       models.Class
	assignment  models.Assignment
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()

	classes := newFakeClassRepo()
	class := classes.addClass(models.Class{Name: "Biology", Code: "XYZ789", TeacherID: 1})
	classes.addEnrollment(class.ID, 5)

	assignments := newFakeAssignmentRepo()
	assignment := assignments.addAssignment(models.Assignment{
		ClassID:   class.ID,
		TeacherID: 1,
		Title:     "Cell quiz",
		Type:      models.AssignmentTypeQuiz,
		Published: true,
	})

	quiz := newFakeQuizRepo()
	submissions := newFakeSubmissionRepo()
	guard := NewAccessGuard(classes, testLogger())
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewQuizService(quiz, submissions, assignments, guard, validate, testLogger())

	return &quizFixture{
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		quiz:        quiz,
		service:     svc,
		class:       class,
		assignment:  assignment,
	}
}

func strPointer(s string) *string { return &s }

func (f *quizFixture) addQuestion(questionType, key string, points float64) models.QuizQuestion {
	var correct *string
	if key != "" {
		correct = strPointer(key)
	}
	question := models.QuizQuestion{
		AssignmentID:  f.assignment.ID,
		Text:          "question",
		Type:          questionType,
		CorrectAnswer: correct,
		Points:        points,
		OrderIndex:    len(f.quiz.questions) + 1,
	}
	return f.quiz.addQuestion(question)
}

func (f *quizFixture) addOpenSubmission(studentID uint) models.Submission {
	return f.submissions.addSubmission(models.Submission{
		AssignmentID: f.assignment.ID,
		StudentID:    studentID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  time.Now(),
		Assignment:   f.assignment,
	})
}

func TestCreateQuestionAssignsSequentialOrder(t *testing.T) {
	f := newQuizFixture(t)
	teacher := Principal{ID: 1, Role: models.RoleTeacher}

	first, err := f.service.CreateQuestion(context.Background(), dto.QuizQuestionCreateRequest{
		AssignmentID:  f.assignment.ID,
		Text:          "What organelle produces ATP?",
		Type:          models.QuestionTypeShortAnswer,
		CorrectAnswer: strPointer("mitochondria"),
		Points:        2,
	}, teacher)
	require.NoError(t, err)
	require.Equal(t, 1, first.OrderIndex)

	second, err := f.service.CreateQuestion(context.Background(), dto.QuizQuestionCreateRequest{
		AssignmentID:  f.assignment.ID,
		Text:          "Plant cells have walls.",
		Type:          models.QuestionTypeTrueFalse,
		CorrectAnswer: strPointer("true"),
		Points:        1,
	}, teacher)
	require.NoError(t, err)
	require.Equal(t, 2, second.OrderIndex)
}

func TestCreateQuestionStudentForbidden(t *testing.T) {
	f := newQuizFixture(t)

	_, err := f.service.CreateQuestion(context.Background(), dto.QuizQuestionCreateRequest{
		AssignmentID: f.assignment.ID,
		Text:         "sneaky",
		Type:         models.QuestionTypeEssay,
		Points:       5,
	}, Principal{ID: 5, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestListQuestionsRedactsKeyForStudents(t *testing.T) {
	f := newQuizFixture(t)
	f.addQuestion(models.QuestionTypeShortAnswer, "mitochondria", 2)

	forTeacher, err := f.service.ListQuestions(context.Background(), f.assignment.ID, Principal{ID: 1, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.Len(t, forTeacher, 1)
	require.NotNil(t, forTeacher[0].CorrectAnswer)

	forStudent, err := f.service.ListQuestions(context.Background(), f.assignment.ID, Principal{ID: 5, Role: models.RoleStudent})
	require.NoError(t, err)
	require.Len(t, forStudent, 1)
	require.Nil(t, forStudent[0].CorrectAnswer, "students must never see the answer key")
}

func TestSubmitAnswersScoresObjectiveQuestions(t *testing.T) {
	f := newQuizFixture(t)
	shortAnswer := f.addQuestion(models.QuestionTypeShortAnswer, "Mitochondria", 2)
	trueFalse := f.addQuestion(models.QuestionTypeTrueFalse, "true", 1)
	multiple := f.addQuestion(models.QuestionTypeMultipleChoice, "B", 3)
	essay := f.addQuestion(models.QuestionTypeEssay, "", 5)
	submission := f.addOpenSubmission(5)

	response, err := f.service.SubmitAnswers(context.Background(), submission.ID, dto.QuizAnswersRequest{
		Answers: []dto.QuizAnswerSubmission{
			{QuestionID: shortAnswer.ID, Answer: "  mitochondria "},
			{QuestionID: trueFalse.ID, Answer: "false"},
			{QuestionID: multiple.ID, Answer: "b"},
			{QuestionID: essay.ID, Answer: "Cells are the unit of life."},
		},
	}, Principal{ID: 5, Role: models.RoleStudent})
	require.NoError(t, err)

	// short answer 2 (trim+case) + true/false 0 + multiple choice 3; essay excluded.
	require.Equal(t, 5.0, *response.PointsEarned)
	require.Equal(t, models.SubmissionStatusSubmitted, response.Status)

	answers, err := f.quiz.ListAnswersBySubmission(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Len(t, answers, 4)

	require.True(t, *answers[0].IsCorrect)
	require.Equal(t, 2.0, answers[0].PointsAwarded)
	require.False(t, *answers[1].IsCorrect)
	require.Equal(t, 0.0, answers[1].PointsAwarded)
	require.True(t, *answers[2].IsCorrect)
	require.Nil(t, answers[3].IsCorrect, "essay answers stay unscored")
	require.Equal(t, 0.0, answers[3].PointsAwarded)
}

func TestSubmitAnswersReplacesPriorAnswer(t *testing.T) {
	f := newQuizFixture(t)
	question := f.addQuestion(models.QuestionTypeShortAnswer, "osmosis", 2)
	submission := f.addOpenSubmission(5)
	student := Principal{ID: 5, Role: models.RoleStudent}

	_, err := f.service.SubmitAnswers(context.Background(), submission.ID, dto.QuizAnswersRequest{
		Answers: []dto.QuizAnswerSubmission{{QuestionID: question.ID, Answer: "diffusion"}},
	}, student)
	require.NoError(t, err)

	response, err := f.service.SubmitAnswers(context.Background(), submission.ID, dto.QuizAnswersRequest{
		Answers: []dto.QuizAnswerSubmission{{QuestionID: question.ID, Answer: "osmosis"}},
	}, student)
	require.NoError(t, err)
	require.Equal(t, 2.0, *response.PointsEarned)

	answers, err := f.quiz.ListAnswersBySubmission(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1, "re-answering must replace, not append")
	require.Equal(t, "osmosis", answers[0].Answer)
}

func TestSubmitAnswersRejectsForeignQuestion(t *testing.T) {
	f := newQuizFixture(t)
	other := f.assignments.addAssignment(models.Assignment{ClassID: f.class.ID, TeacherID: 1, Title: "Other quiz", Type: models.AssignmentTypeQuiz, Published: true})
	foreign := f.quiz.addQuestion(models.QuizQuestion{AssignmentID: other.ID, Text: "q", Type: models.QuestionTypeShortAnswer, CorrectAnswer: strPointer("x"), Points: 1, OrderIndex: 1})
	submission := f.addOpenSubmission(5)

	_, err := f.service.SubmitAnswers(context.Background(), submission.ID, dto.QuizAnswersRequest{
		Answers: []dto.QuizAnswerSubmission{{QuestionID: foreign.ID, Answer: "x"}},
	}, Principal{ID: 5, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestSubmitAnswersOnlyByOwner(t *testing.T) {
	f := newQuizFixture(t)
	question := f.addQuestion(models.QuestionTypeShortAnswer, "x", 1)
	submission := f.addOpenSubmission(5)

	_, err := f.service.SubmitAnswers(context.Background(), submission.ID, dto.QuizAnswersRequest{
		Answers: []dto.QuizAnswerSubmission{{QuestionID: question.ID, Answer: "x"}},
	}, Principal{ID: 8, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestSubmitAnswersRejectedAfterGrading(t *testing.T) {
	f := newQuizFixture(t)
	question := f.addQuestion(models.QuestionTypeShortAnswer, "x", 1)
	submission := f.submissions.addSubmission(models.Submission{
		AssignmentID: f.assignment.ID,
		StudentID:    5,
		Status:       models.SubmissionStatusGraded,
		Assignment:   f.assignment,
	})

	_, err := f.service.SubmitAnswers(context.Background(), submission.ID, dto.QuizAnswersRequest{
		Answers: []dto.QuizAnswerSubmission{{QuestionID: question.ID, Answer: "x"}},
	}, Principal{ID: 5, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteQuestionKeepsOrderContiguous(t *testing.T) {
	f := newQuizFixture(t)
	f.addQuestion(models.QuestionTypeShortAnswer, "a", 1)
	second := f.addQuestion(models.QuestionTypeShortAnswer, "b", 1)
	f.addQuestion(models.QuestionTypeShortAnswer, "c", 1)

	err := f.service.DeleteQuestion(context.Background(), second.ID, Principal{ID: 1, Role: models.RoleTeacher})
	require.NoError(t, err)

	questions, err := f.quiz.ListQuestions(context.Background(), f.assignment.ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, 1, questions[0].OrderIndex)
	require.Equal(t, 2, questions[1].OrderIndex)
}

func TestQuizResultsTeacherOnly(t *testing.T) {
	f := newQuizFixture(t)
	question := f.addQuestion(models.QuestionTypeShortAnswer, "x", 1)
	submission := f.addOpenSubmission(5)

	_, err := f.service.SubmitAnswers(context.Background(), submission.ID, dto.QuizAnswersRequest{
		Answers: []dto.QuizAnswerSubmission{{QuestionID: question.ID, Answer: "x"}},
	}, Principal{ID: 5, Role: models.RoleStudent})
	require.NoError(t, err)

	groups, err := f.service.Results(context.Background(), f.assignment.ID, Principal{ID: 1, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Answers, 1)

	_, err = f.service.Results(context.Background(), f.assignment.ID, Principal{ID: 5, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrNotAuthorized)
}
