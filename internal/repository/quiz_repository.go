package repository

import (
	"quizlab_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) Save(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var q model.Quiz
	err := r.DB.
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("tasks.position ASC") }).
		Preload("Tasks.Options", func(db *gorm.DB) *gorm.DB { return db.Order("task_options.position ASC") }).
		Preload("Tasks.Blanks", func(db *gorm.DB) *gorm.DB { return db.Order("task_blanks.position ASC") }).
		First(&q, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// FindMeta loads the quiz row without its task tree, for status/ownership
// checks on hot paths.
func (r *QuizRepository) FindMeta(id string) (*model.Quiz, error) {
	var q model.Quiz
	if err := r.DB.First(&q, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) ListByOwner(ownerID string, page, limit int) ([]model.Quiz, int64, error) {
	var quizzes []model.Quiz
	var total int64

	query := r.DB.Model(&model.Quiz{}).Where("owner_id = ?", ownerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&quizzes).Error
	return quizzes, total, err
}

func (r *QuizRepository) UpdateStatus(id string, status model.QuizStatus) error {
	return r.DB.Model(&model.Quiz{}).Where("id = ?", id).Update("status", status).Error
}

// ReplaceTasks swaps the quiz's full task set in one transaction. Only legal
// while the quiz is a draft, which the service layer enforces.
func (r *QuizRepository) ReplaceTasks(quizID string, tasks []model.Task) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []string
		if err := tx.Model(&model.Task{}).Where("quiz_id = ?", quizID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.TaskOption{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&model.TaskBlank{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id = ?", quizID).Delete(&model.Task{}).Error; err != nil {
				return err
			}
		}
		for i := range tasks {
			tasks[i].QuizID = quizID
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *QuizRepository) Delete(id string) error {
	return r.DB.Delete(&model.Quiz{}, "id = ?", id).Error
}
