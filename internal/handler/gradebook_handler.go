package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classwork-go-api/internal/dto"
	"github.com/noah-isme/classwork-go-api/internal/service"
	"github.com/noah-isme/classwork-go-api/internal/utils"
)

// GradebookHandler manages gradebook endpoints.
type GradebookHandler struct {
	service service.GradebookService
	logger  zerolog.Logger
}

// NewGradebookHandler builds a gradebook handler instance.
func NewGradebookHandler(service service.GradebookService, logger zerolog.Logger) *GradebookHandler {
	return &GradebookHandler{
		service: service,
		logger:  logger.With().Str("component", "gradebook_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradebookHandler) Register(router fiber.Router) {
	router.Get("/classes/:classId", h.listByClass)
	router.Get("/classes/:classId/students/:studentId", h.listByStudent)
	router.Get("/classes/:classId/averages", h.averages)
	router.Get("/classes/:classId/export", h.export)
	router.Put("/entries", h.upsert)
	router.Post("/entries/excuse", h.excuse)
}

func (h *GradebookHandler) listByClass(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.service.ListByClass(c.UserContext(), classID, principal)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "gradebook retrieved", entries)
}

func (h *GradebookHandler) listByStudent(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.service.ListByStudent(c.UserContext(), classID, studentID, principal)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student grades retrieved", entries)
}

func (h *GradebookHandler) averages(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	averages, err := h.service.ClassAverages(c.UserContext(), classID, principal)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "class averages retrieved", averages)
}

func (h *GradebookHandler) export(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.service.Export(c.UserContext(), classID, principal)
	if err != nil {
		return h.handleError(c, err)
	}

	content, err := renderGradebookCSV(rows)
	if err != nil {
		h.logger.Error().Err(err).Msg("csv render failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	filename := fmt.Sprintf("gradebook-class-%d.csv", classID)
	return utils.SendCSV(c, filename, content)
}

func (h *GradebookHandler) upsert(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.GradeUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.service.UpsertGrade(c.UserContext(), payload, principal)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grade recorded", entry)
}

func (h *GradebookHandler) excuse(c *fiber.Ctx) error {
	principal, err := principalFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.ExcuseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.service.Excuse(c.UserContext(), payload, principal)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grade excused", entry)
}

func renderGradebookCSV(rows []dto.GradebookExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"student_name", "student_email", "assignment", "points_earned", "points_possible", "percentage", "letter_grade", "excused"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := []string{
			row.StudentName,
			row.StudentEmail,
			row.AssignmentTitle,
			formatFloatPtr(row.PointsEarned),
			strconv.FormatFloat(row.PointsPossible, 'f', -1, 64),
			formatIntPtr(row.Percentage),
			formatStringPtr(row.LetterGrade),
			strconv.FormatBool(row.IsExcused),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func (h *GradebookHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "gradebook entry not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrNotAuthorized):
		return utils.SendError(c, fiber.StatusForbidden, "not authorized")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
