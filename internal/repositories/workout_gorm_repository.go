package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gymtrack/internal/models"

	"gorm.io/gorm"
)

// GORMWorkoutRepository is a GORM implementation of WorkoutRepository.
type GORMWorkoutRepository struct {
	db *gorm.DB
}

// NewGORMWorkoutRepository creates a new instance of GORMWorkoutRepository.
func NewGORMWorkoutRepository(db *gorm.DB) *GORMWorkoutRepository {
	return &GORMWorkoutRepository{db: db}
}

// List returns one page of the user's workouts plus the unpaged total.
func (r *GORMWorkoutRepository) List(userID uint, f WorkoutListFilter) ([]models.Workout, int64, error) {
	q := r.db.Model(&models.Workout{}).Where("user_id = ?", userID)
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.Group != "" {
		q = q.Where("muscle_group = ?", f.Group)
	}
	if f.FavoritesOnly {
		q = q.Where("is_favorite = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count workouts: %w", err)
	}

	var rows []models.Workout
	err := q.Order(f.Sort.Column + " " + f.Sort.Direction).
		Limit(f.Page.Limit).
		Offset(f.Page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workouts: %w", err)
	}
	return rows, total, nil
}

// FindOwned resolves a workout by (id, userID). A missing row and a row owned
// by another user are both reported as ErrNotFound.
func (r *GORMWorkoutRepository) FindOwned(id, userID uint) (*models.Workout, error) {
	var w models.Workout
	if err := r.db.First(&w, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get workout %d: %w", id, err)
	}
	return &w, nil
}

// FindOwnedItem resolves an item, then re-resolves its parent workout under
// the ownership filter. Any miss along the two hops is ErrNotFound.
func (r *GORMWorkoutRepository) FindOwnedItem(itemID, userID uint) (*models.WorkoutItem, *models.Workout, error) {
	var item models.WorkoutItem
	if err := r.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get workout item %d: %w", itemID, err)
	}
	w, err := r.FindOwned(item.WorkoutID, userID)
	if err != nil {
		return nil, nil, err
	}
	return &item, w, nil
}

// Create inserts a new workout.
func (r *GORMWorkoutRepository) Create(w *models.Workout) error {
	if err := r.db.Create(w).Error; err != nil {
		return fmt.Errorf("failed to create workout: %w", err)
	}
	return nil
}

// Save persists all fields of an existing workout.
func (r *GORMWorkoutRepository) Save(w *models.Workout) error {
	res := r.db.Save(w)
	if res.Error != nil {
		return fmt.Errorf("failed to update workout: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a workout with its items and their logs in one transaction.
// The ownership filter is applied before anything is touched.
func (r *GORMWorkoutRepository) Delete(id, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var w models.Workout
		if err := tx.First(&w, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get workout %d: %w", id, err)
		}

		itemIDs := tx.Model(&models.WorkoutItem{}).Select("id").Where("workout_id = ?", id)
		if err := tx.Where("item_id IN (?)", itemIDs).Delete(&models.WorkoutItemLog{}).Error; err != nil {
			return fmt.Errorf("failed to delete workout logs: %w", err)
		}
		if err := tx.Where("workout_id = ?", id).Delete(&models.WorkoutItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete workout items: %w", err)
		}
		if err := tx.Delete(&w).Error; err != nil {
			return fmt.Errorf("failed to delete workout: %w", err)
		}
		return nil
	})
}

const itemDetailSelect = "wi.id, wi.workout_id, wi.exercise_id, wi.sets, wi.reps, wi.weight, wi.position, wi.note, e.name AS name, e.muscle_group AS muscle_group"

// ItemsDetailed returns the workout's items joined with exercise name/group,
// in display order.
func (r *GORMWorkoutRepository) ItemsDetailed(workoutID uint) ([]models.WorkoutItemDetail, error) {
	var rows []models.WorkoutItemDetail
	err := r.db.Table("workout_items wi").
		Select(itemDetailSelect).
		Joins("JOIN exercises e ON e.id = wi.exercise_id").
		Where("wi.workout_id = ?", workoutID).
		Order("wi.position ASC, wi.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workout items: %w", err)
	}
	return rows, nil
}

// ItemDetailed returns one item joined with exercise name/group.
func (r *GORMWorkoutRepository) ItemDetailed(itemID uint) (*models.WorkoutItemDetail, error) {
	var row models.WorkoutItemDetail
	res := r.db.Table("workout_items wi").
		Select(itemDetailSelect).
		Joins("JOIN exercises e ON e.id = wi.exercise_id").
		Where("wi.id = ?", itemID).
		Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to get workout item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}

// NextPosition returns max(position)+1 for the workout, starting at 1.
func (r *GORMWorkoutRepository) NextPosition(workoutID uint) (int, error) {
	var maxPos int
	err := r.db.Model(&models.WorkoutItem{}).
		Where("workout_id = ?", workoutID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPos).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}
	return maxPos + 1, nil
}

// AddItem inserts a new workout item.
func (r *GORMWorkoutRepository) AddItem(item *models.WorkoutItem) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create workout item: %w", err)
	}
	return nil
}

// SaveItem persists all fields of an existing item.
func (r *GORMWorkoutRepository) SaveItem(item *models.WorkoutItem) error {
	res := r.db.Save(item)
	if res.Error != nil {
		return fmt.Errorf("failed to update workout item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes one item and its logs in a transaction.
func (r *GORMWorkoutRepository) DeleteItem(itemID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&models.WorkoutItemLog{}).Error; err != nil {
			return fmt.Errorf("failed to delete item logs: %w", err)
		}
		res := tx.Delete(&models.WorkoutItem{}, "id = ?", itemID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete workout item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Reorder assigns position = 1-based index of each id in itemIDs, atomically.
// If any submitted id does not belong to the workout the whole operation is
// rejected with ErrItemNotInWorkout.
func (r *GORMWorkoutRepository) Reorder(workoutID uint, itemIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var memberIDs []uint
		if err := tx.Model(&models.WorkoutItem{}).Where("workout_id = ?", workoutID).Pluck("id", &memberIDs).Error; err != nil {
			return fmt.Errorf("failed to load workout items: %w", err)
		}
		members := make(map[uint]bool, len(memberIDs))
		for _, id := range memberIDs {
			members[id] = true
		}
		for _, id := range itemIDs {
			if !members[id] {
				return ErrItemNotInWorkout
			}
		}

		for idx, id := range itemIDs {
			err := tx.Model(&models.WorkoutItem{}).
				Where("id = ?", id).
				Update("position", idx+1).Error
			if err != nil {
				return fmt.Errorf("failed to reposition item %d: %w", id, err)
			}
		}
		return nil
	})
}

// Duplicate deep-copies a workout and its items under a new name in one
// transaction. Logs are never copied; they belong to the historical record.
func (r *GORMWorkoutRepository) Duplicate(src *models.Workout, newName string) (*models.Workout, error) {
	copyW := models.Workout{
		UserID:      src.UserID,
		Name:        newName,
		MuscleGroup: src.MuscleGroup,
		IsFavorite:  src.IsFavorite,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&copyW).Error; err != nil {
			return fmt.Errorf("failed to create workout copy: %w", err)
		}

		var items []models.WorkoutItem
		err := tx.Where("workout_id = ?", src.ID).
			Order("position ASC, id ASC").
			Find(&items).Error
		if err != nil {
			return fmt.Errorf("failed to load source items: %w", err)
		}

		for _, it := range items {
			copyI := models.WorkoutItem{
				WorkoutID:  copyW.ID,
				ExerciseID: it.ExerciseID,
				Sets:       it.Sets,
				Reps:       it.Reps,
				Weight:     it.Weight,
				Position:   it.Position,
				Note:       it.Note,
			}
			if err := tx.Create(&copyI).Error; err != nil {
				return fmt.Errorf("failed to copy item %d: %w", it.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &copyW, nil
}

// StatsByUser aggregates the owner-scoped dashboard figures: workout count,
// first/last creation timestamps and the most frequent muscle group.
func (r *GORMWorkoutRepository) StatsByUser(userID uint) (*WorkoutStats, error) {
	stats := &WorkoutStats{}

	err := r.db.Model(&models.Workout{}).Where("user_id = ?", userID).Count(&stats.Total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count workouts: %w", err)
	}

	if stats.Total > 0 {
		var first, last models.Workout
		err = r.db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").First(&first).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get first workout: %w", err)
		}
		err = r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").First(&last).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get last workout: %w", err)
		}
		stats.First = &first.CreatedAt
		stats.Last = &last.CreatedAt

		var group string
		err = r.db.Model(&models.Workout{}).
			Where("user_id = ?", userID).
			Select("muscle_group").
			Group("muscle_group").
			Order("COUNT(*) DESC").
			Limit(1).
			Scan(&group).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get top muscle group: %w", err)
		}
		if group != "" {
			stats.TopGroup = &group
		}
	}
	return stats, nil
}
