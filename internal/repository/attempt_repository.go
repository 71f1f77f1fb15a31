package repository

import (
	"time"

	"quizlab_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindOpen returns the user's in-progress attempt for a quiz, if any.
func (r *AttemptRepository) FindOpen(userID, quizID string) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, model.AttemptInProgress).
		First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListByUser(userID, quizID string, status model.AttemptStatus) ([]model.Attempt, error) {
	query := r.DB.Where("user_id = ?", userID)
	if quizID != "" {
		query = query.Where("quiz_id = ?", quizID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var attempts []model.Attempt
	err := query.Order("started_at DESC").Find(&attempts).Error
	return attempts, err
}

// MarkEvaluated performs the one-way in_progress -> evaluated transition as a
// conditional update. It reports false when another caller won the race, in
// which case the stored result must be served instead of recomputing.
func (r *AttemptRepository) MarkEvaluated(id string, total float64, at time.Time) (bool, error) {
	res := r.DB.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":           model.AttemptEvaluated,
			"total_percentage": total,
			"evaluated_at":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
