package repositories

import "gymtrack/internal/models"

// LogRepository defines the interface for the append-only performance journal.
// Logs are never updated or deleted; every aggregate derives from them.
type LogRepository interface {
	Create(l *models.WorkoutItemLog) error
	RecentForItem(itemID uint, limit int) ([]models.WorkoutItemLog, error)
	ItemAggregates(itemID uint) (pr float64, bestVolume float64, err error)
	UserSummaries(userID uint) ([]models.ExercisePRSummary, error)
	CountDistinctExercises(userID uint) (int64, error)
}
