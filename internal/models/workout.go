package models

import "time"

// Workout is a named, user-owned template grouping an ordered list of items.
// Every read and write is filtered by UserID; a mismatch is reported as
// not-found so ownership is never leaked through error differentiation.
type Workout struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(255)" validate:"required"`
	MuscleGroup string    `json:"muscle_group" gorm:"type:varchar(50);not null;default:'corpo inteiro'"`
	Notes       *string   `json:"notes"`
	IsFavorite  bool      `json:"is_favorite" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkoutItem is one exercise entry within a workout. Position is a 1-based
// display index, reassigned densely on every reorder.
type WorkoutItem struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	WorkoutID  uint    `json:"workout_id" gorm:"index;not null"`
	ExerciseID uint    `json:"exercise_id" gorm:"index;not null"`
	Sets       int     `json:"sets" gorm:"not null"`
	Reps       int     `json:"reps" gorm:"not null"`
	Weight     float64 `json:"weight" gorm:"not null"`
	Position   int     `json:"position" gorm:"not null"`
	Note       *string `json:"note"`
}

// WorkoutItemLog is an immutable journal entry recording one performance of an
// item. Logs are only ever inserted; all PR and volume figures derive from them.
type WorkoutItemLog struct {
	ID     uint      `json:"id" gorm:"primaryKey"`
	ItemID uint      `json:"item_id" gorm:"index;not null"`
	TS     time.Time `json:"ts" gorm:"column:ts;autoCreateTime"`
	Sets   int       `json:"sets" gorm:"not null"`
	Reps   int       `json:"reps" gorm:"not null"`
	Weight float64   `json:"weight" gorm:"not null"`
}

// WorkoutItemDetail is a WorkoutItem joined with its exercise's name and group,
// the shape returned by the workout detail and item mutation endpoints.
type WorkoutItemDetail struct {
	ID          uint    `json:"id"`
	WorkoutID   uint    `json:"workout_id"`
	ExerciseID  uint    `json:"exercise_id"`
	Sets        int     `json:"sets"`
	Reps        int     `json:"reps"`
	Weight      float64 `json:"weight"`
	Position    int     `json:"position"`
	Note        *string `json:"note"`
	Name        string  `json:"name"`
	MuscleGroup string  `json:"muscle_group"`
}

// ExercisePRSummary is one row of the per-user personal-record screen.
type ExercisePRSummary struct {
	ExerciseID   uint       `json:"exercise_id"`
	ExerciseName string     `json:"exercise_name"`
	MuscleGroup  string     `json:"muscle_group"`
	BestWeight   float64    `json:"best_weight"`
	BestVolume   float64    `json:"best_volume"`
	LastTS       *time.Time `json:"last_ts"`
}

// DashboardStats is the aggregate object behind the dashboard screen.
type DashboardStats struct {
	TotalWorkouts    int        `json:"totalWorkouts"`
	TotalExercises   int        `json:"totalExercises"`
	PRExercises      int        `json:"prExercises"`
	FirstWorkoutDate *time.Time `json:"firstWorkoutDate"`
	LastWorkoutDate  *time.Time `json:"lastWorkoutDate"`
	TopMuscleGroup   *string    `json:"topMuscleGroup"`
}
