package compare

import (
	"errors"

	"datadiff/core/dataset"
	"datadiff/core/logger"
	"datadiff/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for comparisons.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the compare routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/compare")
	group.Post("/", h.HandleCompare)
	group.Post("/schema", h.HandleSchema)
	group.Get("/tables", h.HandleTables)
	group.Get("/reports", h.HandleListReports)
	group.Get("/reports/:id", h.HandleGetReport)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, dataset.ErrSchema), errors.Is(err, reconcile.ErrKey):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, msg string, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err), zap.Int("status", status))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// HandleCompare runs one comparison.
// Body: {"a": "...", "b": "...", "key": [...], "label_a", "label_b", "string_columns", "sinks", "output"}
func (h *Handler) HandleCompare(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	l.Info("Comparison requested", zap.String("a", req.A), zap.String("b", req.B), zap.Strings("key", req.Key))

	report, err := h.service.Compare(c.UserContext(), req)
	if err != nil {
		if report != nil {
			// Comparison succeeded but a sink failed; return the report with the error.
			l.Error("Failed to write report", zap.String("id", report.ID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error(), "report": report})
		}
		return h.fail(c, l, "Comparison failed", err)
	}

	return c.JSON(report)
}

type schemaRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// HandleSchema compares column sets and row counts only.
func (h *Handler) HandleSchema(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req schemaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	report, err := h.service.Schema(c.UserContext(), req.A, req.B)
	if err != nil {
		return h.fail(c, l, "Schema comparison failed", err)
	}
	return c.JSON(report)
}

// HandleTables compares two database table schemas.
// Query: ?a=<table>&b=<table>
func (h *Handler) HandleTables(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	cmp, err := h.service.Tables(c.Query("a"), c.Query("b"))
	if err != nil {
		return h.fail(c, l, "Table comparison failed", err)
	}
	return c.JSON(cmp)
}

// HandleListReports lists stored report IDs.
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	ids, err := h.service.ListReports(c.UserContext())
	if err != nil {
		return h.fail(c, l, "Failed to list reports", err)
	}
	return c.JSON(fiber.Map{"reports": ids})
}

// HandleGetReport returns one stored report.
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.GetReport(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, l, "Failed to read report", err)
	}
	return c.JSON(report)
}
