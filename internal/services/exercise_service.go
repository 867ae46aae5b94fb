package services

import (
	"fmt"
	"strings"

	"gymtrack/internal/models"
	"gymtrack/internal/repositories"
)

// ExerciseService handles business logic for the global exercise catalog.
type ExerciseService struct {
	repo repositories.ExerciseRepository
}

// NewExerciseService creates a new ExerciseService.
func NewExerciseService(repo repositories.ExerciseRepository) *ExerciseService {
	return &ExerciseService{repo: repo}
}

// List returns one catalog page plus the unpaged total.
func (s *ExerciseService) List(f repositories.ExerciseListFilter) ([]models.Exercise, int64, error) {
	return s.repo.List(f)
}

// GetByID retrieves a single exercise.
func (s *ExerciseService) GetByID(id uint) (*models.Exercise, error) {
	return s.repo.GetByID(id)
}

// Create adds a catalog entry. Name and muscle group are required; an unknown
// muscle group silently falls back to the default.
func (s *ExerciseService) Create(name, muscleGroup string, description *string) (*models.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(muscleGroup) == "" {
		return nil, fmt.Errorf("%w: name and muscle_group are required", ErrValidation)
	}
	e := &models.Exercise{
		Name:        name,
		MuscleGroup: models.NormalizeMuscleGroup(strings.TrimSpace(muscleGroup)),
		Description: description,
	}
	if err := s.repo.Create(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update applies a partial update: a blank name, an unknown muscle group or an
// absent description leave the current value untouched.
func (s *ExerciseService) Update(id uint, name, muscleGroup *string, description *string) (*models.Exercise, error) {
	e, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if name != nil && strings.TrimSpace(*name) != "" {
		e.Name = strings.TrimSpace(*name)
	}
	if muscleGroup != nil && models.ValidMuscleGroup(*muscleGroup) {
		e.MuscleGroup = *muscleGroup
	}
	if description != nil {
		e.Description = description
	}

	if err := s.repo.Update(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an exercise from the catalog.
func (s *ExerciseService) Delete(id uint) error {
	return s.repo.Delete(id)
}

// Duplicate copies one catalog entry. With no name given the copy is called
// "<original name> (cópia)".
func (s *ExerciseService) Duplicate(id uint, name string) (*models.Exercise, error) {
	src, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("%s (cópia)", src.Name)
	}

	copyE := &models.Exercise{
		Name:        name,
		MuscleGroup: src.MuscleGroup,
		Description: src.Description,
		MediaURL:    src.MediaURL,
	}
	if err := s.repo.Create(copyE); err != nil {
		return nil, err
	}
	return copyE, nil
}

// Popular lists exercises ranked by usage counter.
func (s *ExerciseService) Popular(limit int) ([]models.PopularExercise, error) {
	return s.repo.Popular(limit)
}
