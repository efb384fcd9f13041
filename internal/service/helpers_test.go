package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// In-memory fakes shared across the service tests. They mirror the repository
// contracts closely enough for unit tests: not-found surfaces as
// gorm.ErrRecordNotFound, upserts key on the same pairs as the real schema.

type fakeClassRepo struct {
	classes     map[uint]models.Class
	enrollments map[uint]map[uint]bool
	roster      []models.User
	nextID      uint
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{
		classes:     make(map[uint]models.Class),
		enrollments: make(map[uint]map[uint]bool),
	}
}

func (f *fakeClassRepo) addClass(class models.Class) models.Class {
	if class.ID == 0 {
		f.nextID++
		class.ID = f.nextID
	}
	f.classes[class.ID] = class
	return class
}

func (f *fakeClassRepo) addEnrollment(classID, userID uint) {
	if f.enrollments[classID] == nil {
		f.enrollments[classID] = make(map[uint]bool)
	}
	f.enrollments[classID][userID] = true
}

func (f *fakeClassRepo) GetByID(ctx context.Context, id uint) (models.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return models.Class{}, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeClassRepo) GetByCode(ctx context.Context, code string) (models.Class, error) {
	for _, class := range f.classes {
		if class.Code == code {
			return class, nil
		}
	}
	return models.Class{}, gorm.ErrRecordNotFound
}

func (f *fakeClassRepo) Create(ctx context.Context, class *models.Class) error {
	for _, existing := range f.classes {
		if existing.Code == class.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	f.nextID++
	class.ID = f.nextID
	f.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) Update(ctx context.Context, class *models.Class) error {
	f.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	var classes []models.Class
	for _, class := range f.classes {
		if class.TeacherID == teacherID {
			classes = append(classes, class)
		}
	}
	return classes, nil
}

func (f *fakeClassRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Class, error) {
	var classes []models.Class
	for classID, members := range f.enrollments {
		if members[studentID] {
			classes = append(classes, f.classes[classID])
		}
	}
	return classes, nil
}

func (f *fakeClassRepo) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	f.addEnrollment(enrollment.ClassID, enrollment.UserID)
	return nil
}

func (f *fakeClassRepo) IsTeacher(ctx context.Context, classID, userID uint) (bool, error) {
	class, ok := f.classes[classID]
	return ok && class.TeacherID == userID, nil
}

func (f *fakeClassRepo) IsEnrolled(ctx context.Context, classID, userID uint) (bool, error) {
	return f.enrollments[classID][userID], nil
}

func (f *fakeClassRepo) Roster(ctx context.Context, classID uint) ([]models.User, error) {
	return f.roster, nil
}

type fakeAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[uint]models.Assignment)}
}

func (f *fakeAssignmentRepo) addAssignment(assignment models.Assignment) models.Assignment {
	if assignment.ID == 0 {
		f.nextID++
		assignment.ID = f.nextID
	}
	f.assignments[assignment.ID] = assignment
	return assignment
}

func (f *fakeAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	f.nextID++
	assignment.ID = f.nextID
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id uint) error {
	delete(f.assignments, id)
	return nil
}

func (f *fakeAssignmentRepo) List(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	var assignments []models.Assignment
	for _, assignment := range f.assignments {
		if filter.ClassID != nil && assignment.ClassID != *filter.ClassID {
			continue
		}
		if filter.Type != nil && assignment.Type != *filter.Type {
			continue
		}
		if filter.PublishedOnly && !assignment.Published {
			continue
		}
		assignments = append(assignments, assignment)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]models.Submission
	pending     []models.Submission
	nextID      uint
	updateCalls int
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[uint]models.Submission)}
}

func (f *fakeSubmissionRepo) addSubmission(submission models.Submission) models.Submission {
	if submission.ID == 0 {
		f.nextID++
		submission.ID = f.nextID
	}
	f.submissions[submission.ID] = submission
	return submission
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) GetByPair(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	for _, submission := range f.submissions {
		if submission.AssignmentID == assignmentID && submission.StudentID == studentID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) Upsert(ctx context.Context, submission *models.Submission) error {
	if existing, err := f.GetByPair(ctx, submission.AssignmentID, submission.StudentID); err == nil {
		existing.Content = submission.Content
		existing.Status = submission.Status
		existing.SubmittedAt = submission.SubmittedAt
		f.submissions[existing.ID] = existing
		submission.ID = existing.ID
		return nil
	}
	f.nextID++
	submission.ID = f.nextID
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	f.updateCalls++
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	for _, submission := range f.submissions {
		if submission.AssignmentID == assignmentID {
			submissions = append(submissions, submission)
		}
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].ID < submissions[j].ID })
	return submissions, nil
}

func (f *fakeSubmissionRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	for _, submission := range f.submissions {
		if submission.StudentID == studentID {
			submissions = append(submissions, submission)
		}
	}
	return submissions, nil
}

func (f *fakeSubmissionRepo) ListPendingForTeacher(ctx context.Context, teacherID uint) ([]models.Submission, error) {
	return f.pending, nil
}

type answerKey struct {
	submissionID uint
	questionID   uint
}

type fakeQuizRepo struct {
	questions      map[uint]models.QuizQuestion
	answers        map[answerKey]models.QuizAnswer
	nextQuestionID uint
	nextAnswerID   uint
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{
		questions: make(map[uint]models.QuizQuestion),
		answers:   make(map[answerKey]models.QuizAnswer),
	}
}

func (f *fakeQuizRepo) addQuestion(question models.QuizQuestion) models.QuizQuestion {
	if question.ID == 0 {
		f.nextQuestionID++
		question.ID = f.nextQuestionID
	}
	f.questions[question.ID] = question
	return question
}

func (f *fakeQuizRepo) GetQuestion(ctx context.Context, id uint) (models.QuizQuestion, error) {
	question, ok := f.questions[id]
	if !ok {
		return models.QuizQuestion{}, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (f *fakeQuizRepo) ListQuestions(ctx context.Context, assignmentID uint) ([]models.QuizQuestion, error) {
	var questions []models.QuizQuestion
	for _, question := range f.questions {
		if question.AssignmentID == assignmentID {
			questions = append(questions, question)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].OrderIndex < questions[j].OrderIndex })
	return questions, nil
}

func (f *fakeQuizRepo) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	maxIndex := 0
	for _, existing := range f.questions {
		if existing.AssignmentID == question.AssignmentID && existing.OrderIndex > maxIndex {
			maxIndex = existing.OrderIndex
		}
	}
	question.OrderIndex = maxIndex + 1
	f.nextQuestionID++
	question.ID = f.nextQuestionID
	f.questions[question.ID] = *question
	return nil
}

func (f *fakeQuizRepo) DeleteQuestion(ctx context.Context, question models.QuizQuestion) error {
	delete(f.questions, question.ID)
	for id, existing := range f.questions {
		if existing.AssignmentID == question.AssignmentID && existing.OrderIndex > question.OrderIndex {
			existing.OrderIndex--
			f.questions[id] = existing
		}
	}
	return nil
}

func (f *fakeQuizRepo) ReplaceAnswer(ctx context.Context, answer *models.QuizAnswer) error {
	key := answerKey{submissionID: answer.SubmissionID, questionID: answer.QuestionID}
	f.nextAnswerID++
	answer.ID = f.nextAnswerID
	f.answers[key] = *answer
	return nil
}

func (f *fakeQuizRepo) ListAnswersBySubmission(ctx context.Context, submissionID uint) ([]models.QuizAnswer, error) {
	var answers []models.QuizAnswer
	for key, answer := range f.answers {
		if key.submissionID != submissionID {
			continue
		}
		answer.Question = f.questions[key.questionID]
		answers = append(answers, answer)
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].Question.OrderIndex < answers[j].Question.OrderIndex })
	return answers, nil
}

type gradebookKey struct {
	studentID    uint
	assignmentID uint
}

type fakeGradebookRepo struct {
	entries     map[gradebookKey]models.GradebookEntry
	nextID      uint
	upsertCalls int
}

func newFakeGradebookRepo() *fakeGradebookRepo {
	return &fakeGradebookRepo{entries: make(map[gradebookKey]models.GradebookEntry)}
}

func (f *fakeGradebookRepo) GetByPair(ctx context.Context, studentID, assignmentID uint) (models.GradebookEntry, error) {
	entry, ok := f.entries[gradebookKey{studentID: studentID, assignmentID: assignmentID}]
	if !ok {
		return models.GradebookEntry{}, gorm.ErrRecordNotFound
	}
	return entry, nil
}

func (f *fakeGradebookRepo) Upsert(ctx context.Context, entry *models.GradebookEntry) error {
	f.upsertCalls++
	key := gradebookKey{studentID: entry.StudentID, assignmentID: entry.AssignmentID}
	if existing, ok := f.entries[key]; ok {
		entry.ID = existing.ID
	} else {
		f.nextID++
		entry.ID = f.nextID
	}
	f.entries[key] = *entry
	return nil
}

func (f *fakeGradebookRepo) ListByClass(ctx context.Context, classID uint) ([]models.GradebookEntry, error) {
	var entries []models.GradebookEntry
	for _, entry := range f.entries {
		if entry.ClassID == classID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (f *fakeGradebookRepo) ListByStudent(ctx context.Context, classID, studentID uint) ([]models.GradebookEntry, error) {
	var entries []models.GradebookEntry
	for _, entry := range f.entries {
		if entry.ClassID == classID && entry.StudentID == studentID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (f *fakeGradebookRepo) AveragesByAssignment(ctx context.Context, classID uint) ([]repository.AssignmentAverage, error) {
	totals := make(map[uint]*repository.AssignmentAverage)
	for _, entry := range f.entries {
		if entry.ClassID != classID || entry.IsExcused || entry.Percentage == nil {
			continue
		}
		average, ok := totals[entry.AssignmentID]
		if !ok {
			average = &repository.AssignmentAverage{AssignmentID: entry.AssignmentID}
			totals[entry.AssignmentID] = average
		}
		average.Average += float64(*entry.Percentage)
		average.EntryCount++
	}

	var averages []repository.AssignmentAverage
	for _, average := range totals {
		average.Average /= float64(average.EntryCount)
		averages = append(averages, *average)
	}
	sort.Slice(averages, func(i, j int) bool { return averages[i].AssignmentID < averages[j].AssignmentID })
	return averages, nil
}

type fakeNotifier struct {
	published []dto.NotificationCreateRequest
	err       error
}

func (f *fakeNotifier) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	if f.err != nil {
		return dto.NotificationResponse{}, f.err
	}
	f.published = append(f.published, payload)
	return dto.NotificationResponse{RecipientID: payload.RecipientID, Type: payload.Type}, nil
}
