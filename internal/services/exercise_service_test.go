package services_test

import (
	"testing"

	"gymtrack/internal/models"
	"gymtrack/internal/repositories"
	"gymtrack/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestExerciseService_Create(t *testing.T) {
	mockRepo := new(MockExerciseRepository)
	svc := services.NewExerciseService(mockRepo)

	mockRepo.On("Create", mock.AnythingOfType("*models.Exercise")).Return(nil).Once()
	e, err := svc.Create("  Supino Reto ", "peito", strp("Com barra"))
	assert.NoError(t, err)
	assert.Equal(t, "Supino Reto", e.Name)
	assert.Equal(t, "peito", e.MuscleGroup)

	// Unknown groups land on the default instead of failing
	mockRepo.On("Create", mock.AnythingOfType("*models.Exercise")).Return(nil).Once()
	e, err = svc.Create("Burpee", "cardio", nil)
	assert.NoError(t, err)
	assert.Equal(t, models.DefaultMuscleGroup, e.MuscleGroup)

	_, err = svc.Create("", "peito", nil)
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = svc.Create("Supino", "  ", nil)
	assert.ErrorIs(t, err, services.ErrValidation)
	mockRepo.AssertExpectations(t)
}

func TestExerciseService_UpdatePartial(t *testing.T) {
	mockRepo := new(MockExerciseRepository)
	svc := services.NewExerciseService(mockRepo)
	current := func() *models.Exercise {
		return &models.Exercise{ID: 3, Name: "Supino", MuscleGroup: "peito", Description: strp("old")}
	}

	// Blank name and invalid group keep the stored values
	mockRepo.On("GetByID", uint(3)).Return(current(), nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Exercise")).Return(nil).Once()
	e, err := svc.Update(3, strp("   "), strp("not-a-group"), nil)
	assert.NoError(t, err)
	assert.Equal(t, "Supino", e.Name)
	assert.Equal(t, "peito", e.MuscleGroup)
	assert.Equal(t, "old", *e.Description)

	mockRepo.On("GetByID", uint(3)).Return(current(), nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Exercise")).Return(nil).Once()
	e, err = svc.Update(3, strp("Supino Inclinado"), strp("ombros"), strp("new"))
	assert.NoError(t, err)
	assert.Equal(t, "Supino Inclinado", e.Name)
	assert.Equal(t, "ombros", e.MuscleGroup)
	assert.Equal(t, "new", *e.Description)

	mockRepo.On("GetByID", uint(99)).Return(nil, repositories.ErrNotFound).Once()
	_, err = svc.Update(99, strp("x"), nil, nil)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestExerciseService_Duplicate(t *testing.T) {
	mockRepo := new(MockExerciseRepository)
	svc := services.NewExerciseService(mockRepo)
	src := &models.Exercise{ID: 3, Name: "Supino", MuscleGroup: "peito", Description: strp("desc")}

	mockRepo.On("GetByID", uint(3)).Return(src, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Exercise")).Return(nil).Once()
	copyE, err := svc.Duplicate(3, "")
	assert.NoError(t, err)
	assert.Equal(t, "Supino (cópia)", copyE.Name)
	assert.Equal(t, "peito", copyE.MuscleGroup)
	assert.Equal(t, "desc", *copyE.Description)

	mockRepo.On("GetByID", uint(3)).Return(src, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Exercise")).Return(nil).Once()
	copyE, err = svc.Duplicate(3, "Supino 2")
	assert.NoError(t, err)
	assert.Equal(t, "Supino 2", copyE.Name)
	mockRepo.AssertExpectations(t)
}
