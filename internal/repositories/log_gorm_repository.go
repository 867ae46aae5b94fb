package repositories

import (
	"fmt"
	"time"

	"gymtrack/internal/models"

	"gorm.io/gorm"
)

// GORMLogRepository is a GORM implementation of LogRepository.
type GORMLogRepository struct {
	db *gorm.DB
}

// NewGORMLogRepository creates a new instance of GORMLogRepository.
func NewGORMLogRepository(db *gorm.DB) *GORMLogRepository {
	return &GORMLogRepository{db: db}
}

// Create appends one journal entry.
func (r *GORMLogRepository) Create(l *models.WorkoutItemLog) error {
	if err := r.db.Create(l).Error; err != nil {
		return fmt.Errorf("failed to create log: %w", err)
	}
	return nil
}

// RecentForItem returns up to limit entries for the item, newest first.
// Ties on the timestamp are broken by insertion id descending.
func (r *GORMLogRepository) RecentForItem(itemID uint, limit int) ([]models.WorkoutItemLog, error) {
	var rows []models.WorkoutItemLog
	err := r.db.Where("item_id = ?", itemID).
		Order("ts DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list logs for item %d: %w", itemID, err)
	}
	return rows, nil
}

// ItemAggregates computes pr = max(weight) and bestVolume =
// max(sets*reps*weight) over every log of the item, zero when none exist.
func (r *GORMLogRepository) ItemAggregates(itemID uint) (float64, float64, error) {
	var agg struct {
		PR         float64
		BestVolume float64
	}
	err := r.db.Model(&models.WorkoutItemLog{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(MAX(weight), 0) AS pr, COALESCE(MAX(sets * reps * weight), 0) AS best_volume").
		Scan(&agg).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate logs for item %d: %w", itemID, err)
	}
	return agg.PR, agg.BestVolume, nil
}

// UserSummaries groups every log of the user by exercise and yields best
// weight, best volume and the most recent timestamp per exercise. Rows with a
// timestamp sort before rows without, then most recent first, then strongest
// first. The null-last ordering is spelled out because the store has no
// NULLS LAST directive.
func (r *GORMLogRepository) UserSummaries(userID uint) ([]models.ExercisePRSummary, error) {
	// MAX(ts) comes back without a column type on sqlite, so the timestamp is
	// scanned as text and parsed afterwards.
	type summaryRow struct {
		ExerciseID   uint
		ExerciseName string
		MuscleGroup  string
		BestWeight   float64
		BestVolume   float64
		LastTS       *string
	}
	var raw []summaryRow
	err := r.db.Raw(`
		SELECT e.id AS exercise_id,
		       e.name AS exercise_name,
		       e.muscle_group AS muscle_group,
		       MAX(l.weight) AS best_weight,
		       MAX(l.sets * l.reps * l.weight) AS best_volume,
		       MAX(l.ts) AS last_ts
		FROM workout_item_logs l
		JOIN workout_items wi ON wi.id = l.item_id
		JOIN workouts w ON w.id = wi.workout_id
		JOIN exercises e ON e.id = wi.exercise_id
		WHERE w.user_id = ?
		GROUP BY e.id, e.name, e.muscle_group
		ORDER BY MAX(l.ts) IS NULL, MAX(l.ts) DESC, MAX(l.weight) DESC`, userID).
		Scan(&raw).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize PRs for user %d: %w", userID, err)
	}

	rows := make([]models.ExercisePRSummary, 0, len(raw))
	for _, s := range raw {
		rows = append(rows, models.ExercisePRSummary{
			ExerciseID:   s.ExerciseID,
			ExerciseName: s.ExerciseName,
			MuscleGroup:  s.MuscleGroup,
			BestWeight:   s.BestWeight,
			BestVolume:   s.BestVolume,
			LastTS:       parseStoredTime(s.LastTS),
		})
	}
	return rows, nil
}

// Timestamp layouts the two supported drivers emit for expression columns.
var storedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func parseStoredTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}

// CountDistinctExercises counts the exercises the user has logged at least once.
func (r *GORMLogRepository) CountDistinctExercises(userID uint) (int64, error) {
	var n int64
	err := r.db.Raw(`
		SELECT COUNT(DISTINCT wi.exercise_id)
		FROM workout_item_logs l
		JOIN workout_items wi ON wi.id = l.item_id
		JOIN workouts w ON w.id = wi.workout_id
		WHERE w.user_id = ?`, userID).
		Scan(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count logged exercises for user %d: %w", userID, err)
	}
	return n, nil
}
