package repositories

import (
	"errors"
	"fmt"

	"gymtrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMExerciseRepository is a GORM implementation of ExerciseRepository.
type GORMExerciseRepository struct {
	db *gorm.DB
}

// NewGORMExerciseRepository creates a new instance of GORMExerciseRepository.
func NewGORMExerciseRepository(db *gorm.DB) *GORMExerciseRepository {
	return &GORMExerciseRepository{db: db}
}

// List returns one page of the catalog plus the unpaged total. Both filters
// are applied as LIKE patterns, matching everything when empty.
func (r *GORMExerciseRepository) List(f ExerciseListFilter) ([]models.Exercise, int64, error) {
	q := r.db.Model(&models.Exercise{}).
		Where("name LIKE ?", "%"+f.Search+"%").
		Where("muscle_group LIKE ?", "%"+f.Muscle+"%")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exercises: %w", err)
	}

	var rows []models.Exercise
	err := q.Order(f.Sort.Column + " " + f.Sort.Direction).
		Limit(f.Page.Limit).
		Offset(f.Page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exercises: %w", err)
	}
	return rows, total, nil
}

// GetByID retrieves a single exercise. Returns ErrNotFound when absent.
func (r *GORMExerciseRepository) GetByID(id uint) (*models.Exercise, error) {
	var e models.Exercise
	if err := r.db.First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get exercise by ID %d: %w", id, err)
	}
	return &e, nil
}

// Create inserts a new catalog entry.
func (r *GORMExerciseRepository) Create(e *models.Exercise) error {
	if err := r.db.Create(e).Error; err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}
	return nil
}

// Update persists all fields of an existing exercise.
func (r *GORMExerciseRepository) Update(e *models.Exercise) error {
	res := r.db.Save(e)
	if res.Error != nil {
		return fmt.Errorf("failed to update exercise: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an exercise by id. Returns ErrNotFound when nothing matched.
func (r *GORMExerciseRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Exercise{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete exercise: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the size of the global catalog.
func (r *GORMExerciseRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Exercise{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count exercises: %w", err)
	}
	return n, nil
}

// Popular lists exercises by usage counter descending, name ascending.
// Exercises without a stat row count as zero uses.
func (r *GORMExerciseRepository) Popular(limit int) ([]models.PopularExercise, error) {
	var rows []models.PopularExercise
	err := r.db.Table("exercises e").
		Select("e.id, e.name, e.muscle_group, e.description, e.media_url, COALESCE(s.times_used, 0) AS times_used").
		Joins("LEFT JOIN exercise_stats s ON s.exercise_id = e.id").
		Order("times_used DESC, e.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list popular exercises: %w", err)
	}
	return rows, nil
}

// IncrementUsage bumps the times_used counter, creating the stat row on first use.
func (r *GORMExerciseRepository) IncrementUsage(exerciseID uint) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exercise_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"times_used": gorm.Expr("exercise_stats.times_used + 1")}),
	}).Create(&models.ExerciseStat{ExerciseID: exerciseID, TimesUsed: 1}).Error
	if err != nil {
		return fmt.Errorf("failed to increment usage for exercise %d: %w", exerciseID, err)
	}
	return nil
}
