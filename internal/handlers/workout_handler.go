package handlers

import (
	"fmt"
	"strings"

	"gymtrack/internal/middleware"
	"gymtrack/internal/repositories"
	"gymtrack/internal/services"
	"gymtrack/pkg/pagination"

	"github.com/gofiber/fiber/v2"
)

var workoutSortColumns = []string{"id", "name", "created_at", "muscle_group"}

// WorkoutHandler handles HTTP requests for workouts, items and logs. Every
// route requires authentication; the owning user comes from the token.
type WorkoutHandler struct {
	service *services.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(service *services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{service: service}
}

// RegisterRoutes registers the workout routes with the Fiber app. Specific
// paths are registered before "/:id" so they are matched first.
func (h *WorkoutHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	w := router.Group("/workouts", auth)

	w.Post("/exercises/:itemId/log", h.HandleLogItem)
	w.Get("/exercises/:itemId/logs", h.HandleItemLogs)
	w.Put("/exercises/:itemId", h.HandleUpdateItem)
	w.Delete("/exercises/:itemId", h.HandleDeleteItem)
	w.Get("/prs", h.HandlePRs)
	w.Get("/stats", h.HandleStats)

	w.Get("/", h.HandleList)
	w.Post("/", h.HandleCreate)
	w.Post("/:id/exercises", h.HandleAddItem)
	w.Put("/:id/reorder", h.HandleReorder)
	w.Post("/:id/duplicate", h.HandleDuplicate)
	w.Put("/:id/note", h.HandleNote)
	w.Put("/:id/favorite", h.HandleFavorite)
	w.Get("/:id/csv", h.HandleCSV)
	w.Get("/:id", h.HandleGet)
	w.Put("/:id", h.HandleUpdate)
	w.Delete("/:id", h.HandleDelete)
}

// HandleList returns one page of the user's workouts. The short query aliases
// p/s/t are accepted alongside page/size/sort.
func (h *WorkoutHandler) HandleList(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	f := repositories.WorkoutListFilter{
		Search:        strings.TrimSpace(c.Query("search")),
		Group:         strings.TrimSpace(c.Query("group")),
		FavoritesOnly: c.Query("favorites") != "",
		Page:          pagination.ParsePage(c.Query("p", c.Query("page")), c.Query("s", c.Query("size")), 50),
		Sort: pagination.ParseSort(c.Query("t", c.Query("sort")), workoutSortColumns,
			pagination.Sort{Column: "id", Direction: "DESC"}),
	}

	rows, total, err := h.service.List(userID, f)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(pagination.NewEnvelope(rows, f.Page, total))
}

type createWorkoutRequest struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group"`
}

// HandleCreate adds a workout for the user.
func (h *WorkoutHandler) HandleCreate(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req createWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	w, err := h.service.Create(userID, req.Name, req.MuscleGroup)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

// HandleGet returns the workout detail with its items in display order.
func (h *WorkoutHandler) HandleGet(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	detail, err := h.service.Detail(id, userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(detail)
}

type updateWorkoutRequest struct {
	Name        *string `json:"name"`
	MuscleGroup *string `json:"muscle_group"`
}

// HandleUpdate applies a partial update of name and/or muscle group.
func (h *WorkoutHandler) HandleUpdate(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req updateWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	w, err := h.service.Update(id, userID, req.Name, req.MuscleGroup)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(w)
}

// HandleDelete removes a workout with its items and logs.
func (h *WorkoutHandler) HandleDelete(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.service.Delete(id, userID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type favoriteRequest struct {
	// The client sends is_favorite as 0/1 or a boolean; any truthy value sets
	// the flag.
	IsFavorite interface{} `json:"is_favorite"`
}

// HandleFavorite sets or clears the favorite flag.
func (h *WorkoutHandler) HandleFavorite(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	w, err := h.service.SetFavorite(id, userID, truthy(req.IsFavorite))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(w)
}

type noteRequest struct {
	Note *string `json:"note"`
}

// HandleNote replaces the workout's notes. A non-string note becomes empty.
func (h *WorkoutHandler) HandleNote(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	note := ""
	if req.Note != nil {
		note = *req.Note
	}

	if err := h.service.SetNote(id, userID, note); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleDuplicate deep-copies a workout, optionally under a new name.
func (h *WorkoutHandler) HandleDuplicate(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req duplicateRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "invalid request body")
	}

	w, err := h.service.Duplicate(id, userID, req.Name)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

// HandleCSV exports the workout as a semicolon-delimited attachment.
func (h *WorkoutHandler) HandleCSV(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	csv, err := h.service.CSV(id, userID)
	if err != nil {
		return respondErr(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="treino-%d.csv"`, id))
	return c.SendString(csv)
}

type addItemRequest struct {
	ExerciseID uint     `json:"exercise_id"`
	Sets       *float64 `json:"sets"`
	Reps       *float64 `json:"reps"`
	Weight     *float64 `json:"weight"`
}

// HandleAddItem appends an exercise to the workout.
func (h *WorkoutHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	item, err := h.service.AddItem(id, userID, req.ExerciseID, req.Sets, req.Reps, req.Weight)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

type updateItemRequest struct {
	Sets   *float64 `json:"sets"`
	Reps   *float64 `json:"reps"`
	Weight *float64 `json:"weight"`
	Note   *string  `json:"note"`
}

// HandleUpdateItem applies a partial update to an item.
func (h *WorkoutHandler) HandleUpdateItem(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return respondErr(c, err)
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	item, err := h.service.UpdateItem(itemID, userID, req.Sets, req.Reps, req.Weight, req.Note)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(item)
}

// HandleDeleteItem removes one item.
func (h *WorkoutHandler) HandleDeleteItem(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.service.DeleteItem(itemID, userID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type reorderRequest struct {
	ItemIDs []uint `json:"itemIds"`
}

// HandleReorder assigns each submitted item its list index as position.
func (h *WorkoutHandler) HandleReorder(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondErr(c, err)
	}

	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.service.Reorder(id, userID, req.ItemIDs); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

type logItemRequest struct {
	Sets   *float64 `json:"sets"`
	Reps   *float64 `json:"reps"`
	Weight *float64 `json:"weight"`
}

// HandleLogItem appends one journal entry for the item.
func (h *WorkoutHandler) HandleLogItem(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return respondErr(c, err)
	}

	var req logItemRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badRequest(c, "invalid request body")
	}

	entry, err := h.service.Log(itemID, userID, req.Sets, req.Reps, req.Weight)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// HandleItemLogs returns the item's recent journal window plus PR/best volume.
func (h *WorkoutHandler) HandleItemLogs(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return respondErr(c, err)
	}

	limit := clampLimit(c.Query("limit"), 3, 20)
	summary, err := h.service.ItemLogs(itemID, userID, limit)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(summary)
}

// HandlePRs returns the user's per-exercise personal records.
func (h *WorkoutHandler) HandlePRs(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	rows, err := h.service.PRSummaries(userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

// HandleStats returns the dashboard aggregates.
func (h *WorkoutHandler) HandleStats(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return unauthorized(c)
	}

	stats, err := h.service.Stats(userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(stats)
}

// truthy mirrors loose client encodings of boolean flags (true, 1, "1").
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0" && t != "false"
	default:
		return true
	}
}
