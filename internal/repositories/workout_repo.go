package repositories

import (
	"time"

	"gymtrack/internal/models"
	"gymtrack/pkg/pagination"
)

// WorkoutListFilter carries the optional filters and the validated
// pagination/sort window for owner-scoped workout listings.
type WorkoutListFilter struct {
	Search        string
	Group         string
	FavoritesOnly bool
	Page          pagination.Page
	Sort          pagination.Sort
}

// WorkoutStats is the owner-scoped slice of the dashboard aggregates.
type WorkoutStats struct {
	Total    int64
	First    *time.Time
	Last     *time.Time
	TopGroup *string
}

// WorkoutRepository defines the interface for workout and workout-item data
// access. Every lookup that takes a userID enforces the ownership filter and
// reports misses as ErrNotFound.
type WorkoutRepository interface {
	List(userID uint, f WorkoutListFilter) ([]models.Workout, int64, error)
	FindOwned(id, userID uint) (*models.Workout, error)
	FindOwnedItem(itemID, userID uint) (*models.WorkoutItem, *models.Workout, error)
	Create(w *models.Workout) error
	Save(w *models.Workout) error
	Delete(id, userID uint) error

	ItemsDetailed(workoutID uint) ([]models.WorkoutItemDetail, error)
	ItemDetailed(itemID uint) (*models.WorkoutItemDetail, error)
	NextPosition(workoutID uint) (int, error)
	AddItem(item *models.WorkoutItem) error
	SaveItem(item *models.WorkoutItem) error
	DeleteItem(itemID uint) error
	Reorder(workoutID uint, itemIDs []uint) error
	Duplicate(src *models.Workout, newName string) (*models.Workout, error)

	StatsByUser(userID uint) (*WorkoutStats, error)
}
