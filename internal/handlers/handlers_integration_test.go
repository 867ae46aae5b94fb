package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"gymtrack/internal/handlers"
	"gymtrack/internal/middleware"
	"gymtrack/internal/models"
	"gymtrack/internal/repositories"
	"gymtrack/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBCounter int64

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services. Each call gets its own database so tests stay independent.
func setupApp() (*fiber.App, error) {
	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Exercise{},
		&models.ExerciseStat{},
		&models.Workout{},
		&models.WorkoutItem{},
		&models.WorkoutItemLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	exerciseRepo := repositories.NewGORMExerciseRepository(db)
	workoutRepo := repositories.NewGORMWorkoutRepository(db)
	logRepo := repositories.NewGORMLogRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret", true)
	exerciseService := services.NewExerciseService(exerciseRepo)
	workoutService := services.NewWorkoutService(workoutRepo, exerciseRepo, logRepo, nil)

	authHandler := handlers.NewAuthHandler(authService)
	exerciseHandler := handlers.NewExerciseHandler(exerciseService)
	workoutHandler := handlers.NewWorkoutHandler(workoutService)

	app := fiber.New()

	api := app.Group("/api")
	auth := middleware.AuthRequired(authService)

	authHandler.RegisterRoutes(api)
	exerciseHandler.RegisterRoutes(api, auth)
	workoutHandler.RegisterRoutes(api, auth)

	seedExercisesForTest(exerciseRepo)

	return app, nil
}

// seedExercisesForTest populates the catalog for tests.
func seedExercisesForTest(repo repositories.ExerciseRepository) {
	exercises := []models.Exercise{
		{Name: "Agachamento", MuscleGroup: "pernas"},
		{Name: "Supino Reto", MuscleGroup: "peito"},
		{Name: "Remada Curvada", MuscleGroup: "costas"},
	}
	for i := range exercises {
		if err := repo.Create(&exercises[i]); err != nil {
			log.Printf("Failed to seed exercise %s: %v", exercises[i].Name, err)
		}
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// doRequest sends one JSON request through the app, with the token attached
// when given.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerUser creates an account and returns its token.
func registerUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestAuthEndpoints(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	// Registration
	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "test@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp map[string]interface{}
	decodeBody(t, resp, &registerResp)
	assert.Equal(t, "account created", registerResp["message"])
	assert.NotEmpty(t, registerResp["token"])
	assert.Equal(t, "test@example.com", registerResp["email"])

	// Duplicate registration
	resp = doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "test@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Login
	resp = doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decodeBody(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])

	// Wrong password
	resp = doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Login with an unseen email creates the account on the spot
	resp = doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "brandnew@example.com", "password": "somepassword",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])

	// Missing fields
	resp = doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "test@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestWorkoutEndpointsWithoutAuth(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)

	resp := doRequest(t, app, http.MethodGet, "/api/workouts/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/workouts/", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Catalog reads stay public, mutations do not
	resp = doRequest(t, app, http.MethodGet, "/api/exercises/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/exercises/", "", map[string]string{
		"name": "x", "muscle_group": "peito",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestExerciseCatalog(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerUser(t, app, "catalog@example.com")

	// Listing defaults to name ASC
	resp := doRequest(t, app, http.MethodGet, "/api/exercises/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Data       []models.Exercise `json:"data"`
		Size       int               `json:"size"`
		Total      int64             `json:"total"`
		TotalPages int               `json:"totalPages"`
	}
	decodeBody(t, resp, &page)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, "Agachamento", page.Data[0].Name)

	// Oversized page size clamps to 100; a sort outside the allow-list falls
	// back instead of reaching the query
	resp = doRequest(t, app, http.MethodGet,
		"/api/exercises/?size=9999&sort=password_hash%3BDROP%20TABLE%20users,DESC", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &page)
	assert.Equal(t, 100, page.Size)
	assert.Equal(t, "Agachamento", page.Data[0].Name)

	// Search filter
	resp = doRequest(t, app, http.MethodGet, "/api/exercises/?search=supino", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Supino Reto", page.Data[0].Name)

	// Create with an unknown muscle group falls back to the default
	resp = doRequest(t, app, http.MethodPost, "/api/exercises/", token, map[string]string{
		"name": "Corrida", "muscle_group": "cardio",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Exercise
	decodeBody(t, resp, &created)
	assert.Equal(t, models.DefaultMuscleGroup, created.MuscleGroup)

	// Partial update keeps untouched fields
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/exercises/%d", created.ID), token,
		map[string]string{"muscle_group": "pernas"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Exercise
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Corrida", updated.Name)
	assert.Equal(t, "pernas", updated.MuscleGroup)

	// Duplicate without a name uses the default suffix
	resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/exercises/%d/duplicate", created.ID), token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var dup models.Exercise
	decodeBody(t, resp, &dup)
	assert.Equal(t, "Corrida (cópia)", dup.Name)

	// Delete, then the lookup misses
	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/exercises/%d", dup.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/exercises/%d", dup.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestWorkoutCRUDAndOwnership(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerUser(t, app, "owner@example.com")
	otherToken := registerUser(t, app, "other@example.com")

	// Create
	resp := doRequest(t, app, http.MethodPost, "/api/workouts/", token, map[string]string{
		"name": "Treino A", "muscle_group": "pernas",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var w models.Workout
	decodeBody(t, resp, &w)
	assert.Equal(t, "Treino A", w.Name)
	assert.Equal(t, "pernas", w.MuscleGroup)

	// Detail
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/%d", w.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var detail services.WorkoutDetail
	decodeBody(t, resp, &detail)
	assert.Equal(t, w.ID, detail.ID)
	assert.Empty(t, detail.Exercises)

	// Another user's lookup is indistinguishable from a missing workout
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/%d", w.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/workouts/%d", w.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Update with nothing usable is rejected
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/workouts/%d", w.ID), token,
		map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/workouts/%d", w.ID), token,
		map[string]string{"name": "Treino B"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &w)
	assert.Equal(t, "Treino B", w.Name)

	// Favorite accepts loose truthy encodings
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/workouts/%d/favorite", w.ID), token,
		map[string]interface{}{"is_favorite": 1})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &w)
	assert.True(t, w.IsFavorite)

	// Favorites filter on the listing
	resp = doRequest(t, app, http.MethodGet, "/api/workouts/?favorites=1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Data  []models.Workout `json:"data"`
		Total int64            `json:"total"`
	}
	decodeBody(t, resp, &listing)
	assert.Equal(t, int64(1), listing.Total)

	// Note
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/workouts/%d/note", w.ID), token,
		map[string]string{"note": "descanso 90s"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/%d", w.ID), token, nil)
	decodeBody(t, resp, &detail)
	assert.Equal(t, "descanso 90s", *detail.Notes)

	// Delete
	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/workouts/%d", w.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/%d", w.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestWorkoutItemsReorderAndLogs(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerUser(t, app, "items@example.com")

	resp := doRequest(t, app, http.MethodPost, "/api/workouts/", token, map[string]string{"name": "Treino"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var w models.Workout
	decodeBody(t, resp, &w)

	// Three items against the seeded catalog; the first takes the defaults
	addItem := func(exerciseID uint, body map[string]interface{}) models.WorkoutItemDetail {
		if body == nil {
			body = map[string]interface{}{}
		}
		body["exercise_id"] = exerciseID
		resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/%d/exercises", w.ID), token, body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var item models.WorkoutItemDetail
		decodeBody(t, resp, &item)
		return item
	}
	itemA := addItem(1, nil)
	assert.Equal(t, 3, itemA.Sets)
	assert.Equal(t, 10, itemA.Reps)
	assert.Equal(t, 0.0, itemA.Weight)
	assert.Equal(t, 1, itemA.Position)
	assert.Equal(t, "Agachamento", itemA.Name)

	// Fractional and negative numbers are coerced on the way in
	itemB := addItem(2, map[string]interface{}{"sets": 4.8, "reps": -2, "weight": 60})
	assert.Equal(t, 4, itemB.Sets)
	assert.Equal(t, 1, itemB.Reps)
	assert.Equal(t, 60.0, itemB.Weight)
	assert.Equal(t, 2, itemB.Position)

	itemC := addItem(3, map[string]interface{}{"sets": 3, "reps": 12, "weight": 40})
	assert.Equal(t, 3, itemC.Position)

	// An unknown exercise misses
	resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/%d/exercises", w.ID), token,
		map[string]interface{}{"exercise_id": 999})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Reorder assigns positions by list index
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/workouts/%d/reorder", w.ID), token,
		map[string]interface{}{"itemIds": []uint{itemC.ID, itemA.ID, itemB.ID}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var detail services.WorkoutDetail
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/%d", w.ID), token, nil)
	decodeBody(t, resp, &detail)
	assert.Len(t, detail.Exercises, 3)
	assert.Equal(t, itemC.ID, detail.Exercises[0].ID)
	assert.Equal(t, itemA.ID, detail.Exercises[1].ID)
	assert.Equal(t, itemB.ID, detail.Exercises[2].ID)
	assert.Equal(t, 1, detail.Exercises[0].Position)
	assert.Equal(t, 3, detail.Exercises[2].Position)

	// A foreign id anywhere in the list rejects the whole request
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/workouts/%d/reorder", w.ID), token,
		map[string]interface{}{"itemIds": []uint{itemA.ID, 99999}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Item update coercion
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/workouts/exercises/%d", itemA.ID), token,
		map[string]interface{}{"weight": 52.5, "note": "pausa curta"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updatedItem models.WorkoutItemDetail
	decodeBody(t, resp, &updatedItem)
	assert.Equal(t, 52.5, updatedItem.Weight)
	assert.Equal(t, "pausa curta", *updatedItem.Note)
	assert.Equal(t, 3, updatedItem.Sets) // untouched

	// Journal: logs only ever append, aggregates derive from them
	logEntry := func(weight float64) {
		resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/exercises/%d/log", itemA.ID), token,
			map[string]interface{}{"sets": 3, "reps": 10, "weight": weight})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	logEntry(50)
	logEntry(60)
	logEntry(55)

	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/exercises/%d/logs?limit=2", itemA.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var summary services.ItemLogsSummary
	decodeBody(t, resp, &summary)
	assert.Len(t, summary.Last, 2)
	// PR and best volume cover every log, not just the window; the window
	// itself is newest first
	assert.Equal(t, 60.0, summary.PR)
	assert.Equal(t, 1800.0, summary.BestVolume)
	assert.Equal(t, 55.0, summary.Last[0].Weight)
	assert.Equal(t, 60.0, summary.Last[1].Weight)

	// Logging with no body falls back to the item's current targets
	resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/exercises/%d/log", itemB.ID), token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var entry models.WorkoutItemLog
	decodeBody(t, resp, &entry)
	assert.Equal(t, 4, entry.Sets)
	assert.Equal(t, 1, entry.Reps)
	assert.Equal(t, 60.0, entry.Weight)

	// Deleting the item removes its journal too
	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/api/workouts/exercises/%d", itemB.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/exercises/%d/logs", itemB.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestWorkoutDuplicate(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerUser(t, app, "dup@example.com")

	resp := doRequest(t, app, http.MethodPost, "/api/workouts/", token, map[string]string{
		"name": "Push Day", "muscle_group": "peito",
	})
	var w models.Workout
	decodeBody(t, resp, &w)

	for i := uint(1); i <= 3; i++ {
		resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/%d/exercises", w.ID), token,
			map[string]interface{}{"exercise_id": i, "weight": float64(i) * 10})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// One log on the source; the copy must not inherit it
	var detail services.WorkoutDetail
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/%d", w.ID), token, nil)
	decodeBody(t, resp, &detail)
	resp = doRequest(t, app, http.MethodPost,
		fmt.Sprintf("/api/workouts/exercises/%d/log", detail.Exercises[0].ID), token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/%d/duplicate", w.ID), token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var copyW models.Workout
	decodeBody(t, resp, &copyW)
	assert.NotEqual(t, w.ID, copyW.ID)
	assert.True(t, strings.HasPrefix(copyW.Name, "Cópia de Push Day ("))
	assert.Equal(t, "peito", copyW.MuscleGroup)

	var copyDetail services.WorkoutDetail
	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/%d", copyW.ID), token, nil)
	decodeBody(t, resp, &copyDetail)
	assert.Len(t, copyDetail.Exercises, 3)
	for i, item := range copyDetail.Exercises {
		src := detail.Exercises[i]
		assert.NotEqual(t, src.ID, item.ID)
		assert.Equal(t, src.ExerciseID, item.ExerciseID)
		assert.Equal(t, src.Sets, item.Sets)
		assert.Equal(t, src.Weight, item.Weight)
		assert.Equal(t, i+1, item.Position)

		var summary services.ItemLogsSummary
		resp = doRequest(t, app, http.MethodGet,
			fmt.Sprintf("/api/workouts/exercises/%d/logs", item.ID), token, nil)
		decodeBody(t, resp, &summary)
		assert.Empty(t, summary.Last)
	}

	// The source keeps its journal
	var summary services.ItemLogsSummary
	resp = doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/workouts/exercises/%d/logs", detail.Exercises[0].ID), token, nil)
	decodeBody(t, resp, &summary)
	assert.Len(t, summary.Last, 1)

	// Named duplicate
	resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/%d/duplicate", w.ID), token,
		map[string]string{"name": "Push Day v2"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &copyW)
	assert.Equal(t, "Push Day v2", copyW.Name)
}

func TestWorkoutCSVExport(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerUser(t, app, "csv@example.com")

	resp := doRequest(t, app, http.MethodPost, "/api/workouts/", token, map[string]string{"name": "Export"})
	var w models.Workout
	decodeBody(t, resp, &w)

	resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/%d/exercises", w.ID), token,
		map[string]interface{}{"exercise_id": 2, "sets": 4, "reps": 8, "weight": 62.5})
	var item models.WorkoutItemDetail
	decodeBody(t, resp, &item)

	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/api/workouts/exercises/%d", item.ID), token,
		map[string]interface{}{"note": "linha um\nlinha dois; fim"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, fmt.Sprintf("/api/workouts/%d/csv", w.ID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, fmt.Sprintf(`attachment; filename="treino-%d.csv"`, w.ID),
		resp.Header.Get("Content-Disposition"))

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.NoError(t, err)
	want := "pos;exercise;group;sets;reps;weight;note\n" +
		"1;Supino Reto;peito;4;8;62.5;linha um linha dois, fim\n"
	assert.Equal(t, want, string(raw))
}

func TestPRsAndStats(t *testing.T) {
	app, err := setupApp()
	assert.NoError(t, err)
	token := registerUser(t, app, "stats@example.com")

	// Two workouts, legs twice so it wins the top-group count
	var workouts []models.Workout
	for _, name := range []string{"Pernas A", "Pernas B"} {
		resp := doRequest(t, app, http.MethodPost, "/api/workouts/", token, map[string]string{
			"name": name, "muscle_group": "pernas",
		})
		var w models.Workout
		decodeBody(t, resp, &w)
		workouts = append(workouts, w)
	}

	resp := doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/%d/exercises", workouts[0].ID), token,
		map[string]interface{}{"exercise_id": 1})
	var item models.WorkoutItemDetail
	decodeBody(t, resp, &item)

	for _, weight := range []float64{80, 100, 90} {
		resp = doRequest(t, app, http.MethodPost, fmt.Sprintf("/api/workouts/exercises/%d/log", item.ID), token,
			map[string]interface{}{"sets": 5, "reps": 5, "weight": weight})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// The PR screen covers every exercise the user has logged at least once
	resp = doRequest(t, app, http.MethodGet, "/api/workouts/prs", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var prs struct {
		Data []models.ExercisePRSummary `json:"data"`
	}
	decodeBody(t, resp, &prs)
	assert.Len(t, prs.Data, 1)
	assert.Equal(t, "Agachamento", prs.Data[0].ExerciseName)
	assert.Equal(t, 100.0, prs.Data[0].BestWeight)
	assert.Equal(t, 2500.0, prs.Data[0].BestVolume) // 5*5*100
	assert.NotNil(t, prs.Data[0].LastTS)

	resp = doRequest(t, app, http.MethodGet, "/api/workouts/stats", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var stats models.DashboardStats
	decodeBody(t, resp, &stats)
	assert.Equal(t, 2, stats.TotalWorkouts)
	assert.Equal(t, 3, stats.TotalExercises)
	assert.Equal(t, 1, stats.PRExercises)
	assert.NotNil(t, stats.FirstWorkoutDate)
	assert.Equal(t, "pernas", *stats.TopMuscleGroup)
}
