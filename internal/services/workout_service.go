package services

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"gymtrack/internal/models"
	"gymtrack/internal/repositories"
	"gymtrack/pkg/rabbitmq"
)

// WorkoutService handles business logic for workouts, their items and the
// performance journal. Every operation resolves its target under the
// requesting user's ownership filter before touching anything.
type WorkoutService struct {
	workoutRepo  repositories.WorkoutRepository
	exerciseRepo repositories.ExerciseRepository
	logRepo      repositories.LogRepository
	mqClient     *rabbitmq.Client
}

// NewWorkoutService creates a new WorkoutService. mqClient may be nil; usage
// events are then skipped.
func NewWorkoutService(
	workoutRepo repositories.WorkoutRepository,
	exerciseRepo repositories.ExerciseRepository,
	logRepo repositories.LogRepository,
	mqClient *rabbitmq.Client,
) *WorkoutService {
	return &WorkoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		logRepo:      logRepo,
		mqClient:     mqClient,
	}
}

// WorkoutDetail is the workout detail payload: the workout header plus its
// items in display order.
type WorkoutDetail struct {
	ID        uint                       `json:"id"`
	Name      string                     `json:"name"`
	Notes     *string                    `json:"notes"`
	Exercises []models.WorkoutItemDetail `json:"exercises"`
}

// ItemLogsSummary is the per-item journal window plus all-time aggregates.
// PR and BestVolume cover every log of the item, not just the window.
type ItemLogsSummary struct {
	Last       []models.WorkoutItemLog `json:"last"`
	PR         float64                 `json:"pr"`
	BestVolume float64                 `json:"bestVolume"`
}

// List returns one page of the user's workouts plus the unpaged total.
func (s *WorkoutService) List(userID uint, f repositories.WorkoutListFilter) ([]models.Workout, int64, error) {
	return s.workoutRepo.List(userID, f)
}

// Create adds a workout for the user. Name is required; an unknown muscle
// group silently falls back to the default.
func (s *WorkoutService) Create(userID uint, name, muscleGroup string) (*models.Workout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	w := &models.Workout{
		UserID:      userID,
		Name:        name,
		MuscleGroup: models.NormalizeMuscleGroup(strings.TrimSpace(muscleGroup)),
	}
	if err := s.workoutRepo.Create(w); err != nil {
		return nil, err
	}
	return w, nil
}

// Detail returns the workout header with its items in display order.
func (s *WorkoutService) Detail(id, userID uint) (*WorkoutDetail, error) {
	w, err := s.workoutRepo.FindOwned(id, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.workoutRepo.ItemsDetailed(w.ID)
	if err != nil {
		return nil, err
	}
	return &WorkoutDetail{ID: w.ID, Name: w.Name, Notes: w.Notes, Exercises: items}, nil
}

// Update applies a partial update of name and/or muscle group. A blank name or
// unknown group counts as absent; with neither present the update is rejected.
func (s *WorkoutService) Update(id, userID uint, name, muscleGroup *string) (*models.Workout, error) {
	w, err := s.workoutRepo.FindOwned(id, userID)
	if err != nil {
		return nil, err
	}

	newName := ""
	if name != nil {
		newName = strings.TrimSpace(*name)
	}
	validGroup := muscleGroup != nil && models.ValidMuscleGroup(*muscleGroup)
	if newName == "" && !validGroup {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	if newName != "" {
		w.Name = newName
	}
	if validGroup {
		w.MuscleGroup = *muscleGroup
	}
	if err := s.workoutRepo.Save(w); err != nil {
		return nil, err
	}
	return w, nil
}

// SetFavorite flips the favorite flag.
func (s *WorkoutService) SetFavorite(id, userID uint, favorite bool) (*models.Workout, error) {
	w, err := s.workoutRepo.FindOwned(id, userID)
	if err != nil {
		return nil, err
	}
	w.IsFavorite = favorite
	if err := s.workoutRepo.Save(w); err != nil {
		return nil, err
	}
	return w, nil
}

// SetNote replaces the workout's notes.
func (s *WorkoutService) SetNote(id, userID uint, note string) error {
	w, err := s.workoutRepo.FindOwned(id, userID)
	if err != nil {
		return err
	}
	w.Notes = &note
	return s.workoutRepo.Save(w)
}

// Delete removes the workout with its items and logs.
func (s *WorkoutService) Delete(id, userID uint) error {
	return s.workoutRepo.Delete(id, userID)
}

// Duplicate deep-copies a workout and its items atomically. Logs are not
// copied. With no name given the copy is called "Cópia de <name> (<date>)".
func (s *WorkoutService) Duplicate(id, userID uint, name string) (*models.Workout, error) {
	src, err := s.workoutRepo.FindOwned(id, userID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Cópia de %s (%s)", src.Name, time.Now().Format("2006-01-02"))
	}
	return s.workoutRepo.Duplicate(src, name)
}

// AddItem appends an exercise to the workout at the next free position.
// Absent sets/reps/weight default to 3/10/0. A usage event is published so the
// popular ranking picks the exercise up; publish failures only log.
func (s *WorkoutService) AddItem(workoutID, userID, exerciseID uint, sets, reps, weight *float64) (*models.WorkoutItemDetail, error) {
	w, err := s.workoutRepo.FindOwned(workoutID, userID)
	if err != nil {
		return nil, err
	}
	if exerciseID == 0 {
		return nil, fmt.Errorf("%w: exercise_id is required", ErrValidation)
	}
	if _, err := s.exerciseRepo.GetByID(exerciseID); err != nil {
		return nil, err
	}

	pos, err := s.workoutRepo.NextPosition(w.ID)
	if err != nil {
		return nil, err
	}

	item := &models.WorkoutItem{
		WorkoutID:  w.ID,
		ExerciseID: exerciseID,
		Sets:       intMin1Or(sets, 3),
		Reps:       intMin1Or(reps, 10),
		Weight:     nonNegOr(weight, 0),
		Position:   pos,
	}
	if err := s.workoutRepo.AddItem(item); err != nil {
		return nil, err
	}

	if s.mqClient != nil {
		if err := s.mqClient.PublishExerciseUsed(exerciseID, w.ID); err != nil {
			log.Printf("Warning: failed to publish usage event for exercise %d: %v", exerciseID, err)
		}
	}

	return s.workoutRepo.ItemDetailed(item.ID)
}

// UpdateItem applies a partial update to an item. Present numeric fields are
// coerced (sets/reps to integers >= 1, weight to >= 0); absent fields keep
// their current values.
func (s *WorkoutService) UpdateItem(itemID, userID uint, sets, reps, weight *float64, note *string) (*models.WorkoutItemDetail, error) {
	item, _, err := s.workoutRepo.FindOwnedItem(itemID, userID)
	if err != nil {
		return nil, err
	}

	if sets != nil {
		item.Sets = intMin1(*sets)
	}
	if reps != nil {
		item.Reps = intMin1(*reps)
	}
	if weight != nil {
		item.Weight = nonNeg(*weight)
	}
	if note != nil {
		item.Note = note
	}

	if err := s.workoutRepo.SaveItem(item); err != nil {
		return nil, err
	}
	return s.workoutRepo.ItemDetailed(item.ID)
}

// DeleteItem removes one item (and its logs) after the two-hop ownership check.
func (s *WorkoutService) DeleteItem(itemID, userID uint) error {
	item, _, err := s.workoutRepo.FindOwnedItem(itemID, userID)
	if err != nil {
		return err
	}
	return s.workoutRepo.DeleteItem(item.ID)
}

// Reorder assigns each submitted item its 1-based list index as position,
// atomically. An empty list or an id outside the workout rejects the request.
func (s *WorkoutService) Reorder(workoutID, userID uint, itemIDs []uint) error {
	w, err := s.workoutRepo.FindOwned(workoutID, userID)
	if err != nil {
		return err
	}
	if len(itemIDs) == 0 {
		return fmt.Errorf("%w: itemIds is required", ErrValidation)
	}
	return s.workoutRepo.Reorder(w.ID, itemIDs)
}

// Log appends one journal entry for the item. Absent fields default to the
// item's current target values.
func (s *WorkoutService) Log(itemID, userID uint, sets, reps, weight *float64) (*models.WorkoutItemLog, error) {
	item, _, err := s.workoutRepo.FindOwnedItem(itemID, userID)
	if err != nil {
		return nil, err
	}

	entry := &models.WorkoutItemLog{
		ItemID: item.ID,
		Sets:   intMin1Or(sets, item.Sets),
		Reps:   intMin1Or(reps, item.Reps),
		Weight: nonNegOr(weight, item.Weight),
	}
	if err := s.logRepo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ItemLogs returns the item's most recent journal window plus its all-time
// PR and best volume.
func (s *WorkoutService) ItemLogs(itemID, userID uint, limit int) (*ItemLogsSummary, error) {
	item, _, err := s.workoutRepo.FindOwnedItem(itemID, userID)
	if err != nil {
		return nil, err
	}

	last, err := s.logRepo.RecentForItem(item.ID, limit)
	if err != nil {
		return nil, err
	}
	pr, bestVolume, err := s.logRepo.ItemAggregates(item.ID)
	if err != nil {
		return nil, err
	}
	return &ItemLogsSummary{Last: last, PR: pr, BestVolume: bestVolume}, nil
}

// PRSummaries returns the user's per-exercise personal records.
func (s *WorkoutService) PRSummaries(userID uint) ([]models.ExercisePRSummary, error) {
	return s.logRepo.UserSummaries(userID)
}

// Stats assembles the dashboard aggregates.
func (s *WorkoutService) Stats(userID uint) (*models.DashboardStats, error) {
	ws, err := s.workoutRepo.StatsByUser(userID)
	if err != nil {
		return nil, err
	}
	totalExercises, err := s.exerciseRepo.Count()
	if err != nil {
		return nil, err
	}
	logged, err := s.logRepo.CountDistinctExercises(userID)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TotalWorkouts:    int(ws.Total),
		TotalExercises:   int(totalExercises),
		PRExercises:      int(logged),
		FirstWorkoutDate: ws.First,
		LastWorkoutDate:  ws.Last,
		TopMuscleGroup:   ws.TopGroup,
	}, nil
}

// CSV renders the workout's items as a semicolon-delimited export. Newlines in
// notes collapse to spaces and literal semicolons become commas so the
// delimiter stays unambiguous.
func (s *WorkoutService) CSV(id, userID uint) (string, error) {
	w, err := s.workoutRepo.FindOwned(id, userID)
	if err != nil {
		return "", err
	}
	items, err := s.workoutRepo.ItemsDetailed(w.ID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("pos;exercise;group;sets;reps;weight;note\n")
	for _, it := range items {
		note := ""
		if it.Note != nil {
			note = *it.Note
		}
		note = strings.NewReplacer("\r\n", " ", "\n", " ").Replace(note)

		fields := []string{
			fmt.Sprintf("%d", it.Position),
			it.Name,
			it.MuscleGroup,
			fmt.Sprintf("%d", it.Sets),
			fmt.Sprintf("%d", it.Reps),
			formatWeight(it.Weight),
			note,
		}
		for i, f := range fields {
			fields[i] = strings.ReplaceAll(f, ";", ",")
		}
		b.WriteString(strings.Join(fields, ";"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// intMin1 coerces v to an integer >= 1 via max(1, floor(v)); a non-finite
// value becomes 1.
func intMin1(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	n := int(math.Floor(v))
	if n < 1 {
		return 1
	}
	return n
}

// nonNeg clamps v to >= 0; a non-finite value becomes 0.
func nonNeg(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func intMin1Or(v *float64, def int) int {
	if v == nil {
		return def
	}
	return intMin1(*v)
}

func nonNegOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return nonNeg(*v)
}
