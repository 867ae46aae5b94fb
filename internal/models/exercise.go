package models

// Muscle groups form a fixed enumeration; anything outside it falls back to
// DefaultMuscleGroup instead of erroring.
const DefaultMuscleGroup = "corpo inteiro"

var muscleGroups = map[string]bool{
	"peito":            true,
	"costas":           true,
	"pernas":           true,
	"ombros":           true,
	"braços":           true,
	"core":             true,
	DefaultMuscleGroup: true,
}

// ValidMuscleGroup reports whether g is one of the allowed muscle groups.
func ValidMuscleGroup(g string) bool {
	return muscleGroups[g]
}

// NormalizeMuscleGroup returns g if it is allowed, DefaultMuscleGroup otherwise.
func NormalizeMuscleGroup(g string) string {
	if muscleGroups[g] {
		return g
	}
	return DefaultMuscleGroup
}

// Exercise is an entry in the global catalog. It is not owned by any user.
type Exercise struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"type:varchar(255)" validate:"required"`
	MuscleGroup string  `json:"muscle_group" gorm:"type:varchar(50)" validate:"required"`
	Description *string `json:"description"`
	MediaURL    *string `json:"media_url"`
}

// ExerciseStat tracks how often an exercise is used in workouts. The counter
// is maintained by the usage-event consumer, not by the request path.
type ExerciseStat struct {
	ExerciseID uint `json:"exercise_id" gorm:"primaryKey"`
	TimesUsed  int  `json:"times_used" gorm:"not null;default:0"`
}

// PopularExercise is an Exercise joined with its usage counter.
type PopularExercise struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	MuscleGroup string  `json:"muscle_group"`
	Description *string `json:"description"`
	MediaURL    *string `json:"media_url"`
	TimesUsed   int     `json:"times_used"`
}
