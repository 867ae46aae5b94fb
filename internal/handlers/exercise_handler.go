package handlers

import (
	"strings"

	"gymtrack/internal/repositories"
	"gymtrack/internal/services"
	"gymtrack/pkg/pagination"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var exerciseSortColumns = []string{"id", "name", "muscle_group"}

// ExerciseHandler handles HTTP requests for the global exercise catalog.
// Reads are public; mutations require authentication.
type ExerciseHandler struct {
	service  *services.ExerciseService
	validate *validator.Validate
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(service *services.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app. The auth
// middleware is applied per mutating route.
func (h *ExerciseHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	ex := router.Group("/exercises")
	ex.Get("/popular", h.HandlePopular)
	ex.Get("/", h.HandleList)
	ex.Get("/:id", h.HandleGet)
	ex.Post("/", auth, h.HandleCreate)
	ex.Put("/:id", auth, h.HandleUpdate)
	ex.Delete("/:id", auth, h.HandleDelete)
	ex.Post("/:id/duplicate", auth, h.HandleDuplicate)
}

// HandlePopular lists exercises ranked by usage.
func (h *ExerciseHandler) HandlePopular(c *fiber.Ctx) error {
	limit := clampLimit(c.Query("limit"), 5, 50)
	rows, err := h.service.Popular(limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

// HandleList returns one page of the catalog.
func (h *ExerciseHandler) HandleList(c *fiber.Ctx) error {
	f := repositories.ExerciseListFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Muscle: strings.TrimSpace(c.Query("muscle")),
		Page:   pagination.ParsePage(c.Query("page"), c.Query("size"), 100),
		Sort: pagination.ParseSort(c.Query("sort"), exerciseSortColumns,
			pagination.Sort{Column: "name", Direction: "ASC"}),
	}

	rows, total, err := h.service.List(f)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(pagination.NewEnvelope(rows, f.Page, total))
}

// HandleGet returns a single exercise.
func (h *ExerciseHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	e, err := h.service.GetByID(id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(e)
}

type createExerciseRequest struct {
	Name        string  `json:"name" validate:"required"`
	MuscleGroup string  `json:"muscle_group" validate:"required"`
	Description *string `json:"description"`
}

// HandleCreate adds a catalog entry.
func (h *ExerciseHandler) HandleCreate(c *fiber.Ctx) error {
	var req createExerciseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, "name and muscle_group are required")
	}

	e, err := h.service.Create(req.Name, req.MuscleGroup, req.Description)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

type updateExerciseRequest struct {
	Name        *string `json:"name"`
	MuscleGroup *string `json:"muscle_group"`
	Description *string `json:"description"`
}

// HandleUpdate applies a partial update to an exercise.
func (h *ExerciseHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req updateExerciseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	e, err := h.service.Update(id, req.Name, req.MuscleGroup, req.Description)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(e)
}

// HandleDelete removes an exercise.
func (h *ExerciseHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.service.Delete(id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type duplicateRequest struct {
	Name string `json:"name"`
}

// HandleDuplicate copies an exercise, optionally under a new name.
func (h *ExerciseHandler) HandleDuplicate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req duplicateRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "invalid request body")
	}

	e, err := h.service.Duplicate(id, req.Name)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}
