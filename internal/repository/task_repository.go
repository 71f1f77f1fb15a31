package repository

import (
	"quizlab_backend/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) FindByID(id string) (*model.Task, error) {
	var t model.Task
	err := r.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("task_options.position ASC") }).
		Preload("Blanks", func(db *gorm.DB) *gorm.DB { return db.Order("task_blanks.position ASC") }).
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ListByQuiz(quizID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("task_options.position ASC") }).
		Preload("Blanks", func(db *gorm.DB) *gorm.DB { return db.Order("task_blanks.position ASC") }).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&tasks).Error
	return tasks, err
}
