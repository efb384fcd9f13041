package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/classwork-go-api/internal/models"
)

// QuizQuestionCreateRequest describes the payload for adding a question.
// The order index is assigned by the store, not the caller.
type QuizQuestionCreateRequest struct {
	AssignmentID  uint     `json:"assignment_id" validate:"required,gt=0"`
	Text          string   `json:"text" validate:"required,min=1"`
	Type          string   `json:"type" validate:"required,oneof=multiple_choice true_false short_answer essay"`
	CorrectAnswer *string  `json:"correct_answer"`
	Choices       []string `json:"choices" validate:"omitempty,dive,min=1"`
	Points        float64  `json:"points" validate:"required,gte=1"`
}

// QuizAnswerSubmission is one (question, answer) pair in an answer sheet.
type QuizAnswerSubmission struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer"`
}

// QuizAnswersRequest carries a full answer sheet for a submission.
type QuizAnswersRequest struct {
	Answers []QuizAnswerSubmission `json:"answers" validate:"required,min=1,dive"`
}

// QuizQuestionResponse is returned to API clients when viewing questions.
// CorrectAnswer is nil in responses built for students.
type QuizQuestionResponse struct {
	ID            uint      `json:"id"`
	AssignmentID  uint      `json:"assignment_id"`
	Text          string    `json:"text"`
	Type          string    `json:"type"`
	CorrectAnswer *string   `json:"correct_answer"`
	Choices       []string  `json:"choices"`
	Points        float64   `json:"points"`
	OrderIndex    int       `json:"order_index"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuizAnswerResponse serializes one recorded answer with its question.
type QuizAnswerResponse struct {
	ID            uint                 `json:"id"`
	QuestionID    uint                 `json:"question_id"`
	Answer        string               `json:"answer"`
	IsCorrect     *bool                `json:"is_correct"`
	PointsAwarded float64              `json:"points_awarded"`
	Question      QuizQuestionResponse `json:"question"`
}

// QuizResultGroup groups one student's submission with their answers.
type QuizResultGroup struct {
	Student    StudentLite          `json:"student"`
	Submission SubmissionResponse   `json:"submission"`
	Answers    []QuizAnswerResponse `json:"answers"`
}

// NewQuizQuestionResponse converts a question model into a DTO. When
// includeKey is false the answer key is redacted.
func NewQuizQuestionResponse(model models.QuizQuestion, includeKey bool) QuizQuestionResponse {
	response := QuizQuestionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		Text:         model.Text,
		Type:         model.Type,
		Choices:      decodeChoices(model.Choices),
		Points:       model.Points,
		OrderIndex:   model.OrderIndex,
		CreatedAt:    model.CreatedAt,
	}
	if includeKey {
		response.CorrectAnswer = model.CorrectAnswer
	}
	return response
}

// NewQuizQuestionResponseSlice converts a question listing.
func NewQuizQuestionResponseSlice(questions []models.QuizQuestion, includeKey bool) []QuizQuestionResponse {
	responses := make([]QuizQuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, NewQuizQuestionResponse(question, includeKey))
	}
	return responses
}

// NewQuizAnswerResponse converts an answer model, carrying its question with
// the answer key included (results are a teacher-only surface).
func NewQuizAnswerResponse(model models.QuizAnswer) QuizAnswerResponse {
	return QuizAnswerResponse{
		ID:            model.ID,
		QuestionID:    model.QuestionID,
		Answer:        model.Answer,
		IsCorrect:     model.IsCorrect,
		PointsAwarded: model.PointsAwarded,
		Question:      NewQuizQuestionResponse(model.Question, true),
	}
}

// NewQuizAnswerResponseSlice converts an answer listing.
func NewQuizAnswerResponseSlice(answers []models.QuizAnswer) []QuizAnswerResponse {
	responses := make([]QuizAnswerResponse, 0, len(answers))
	for _, answer := range answers {
		responses = append(responses, NewQuizAnswerResponse(answer))
	}
	return responses
}

func decodeChoices(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var choices []string
	if err := json.Unmarshal(raw, &choices); err != nil {
		return nil
	}
	return choices
}
