package repositories

import (
	"gymtrack/internal/models"
	"gymtrack/pkg/pagination"
)

// ExerciseListFilter carries the optional filters and the validated
// pagination/sort window for catalog listings.
type ExerciseListFilter struct {
	Search string
	Muscle string
	Page   pagination.Page
	Sort   pagination.Sort
}

// ExerciseRepository defines the interface for catalog data access.
type ExerciseRepository interface {
	List(f ExerciseListFilter) ([]models.Exercise, int64, error)
	GetByID(id uint) (*models.Exercise, error)
	Create(e *models.Exercise) error
	Update(e *models.Exercise) error
	Delete(id uint) error
	Count() (int64, error)
	Popular(limit int) ([]models.PopularExercise, error)
	IncrementUsage(exerciseID uint) error
}
