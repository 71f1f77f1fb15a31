package repository

import (
	"quizlab_backend/internal/model"

	"gorm.io/gorm"
)

// AnswerRepository keeps exactly one answer row per (attempt, task). Upserts
// are last-write-wins; the nested selection/cloze rows are reconciled inside
// a transaction so a reader never observes a half-replaced answer.
type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) FindByAttemptAndTask(attemptID, taskID string) (*model.Answer, error) {
	var a model.Answer
	err := r.DB.
		Preload("Selections").
		Preload("ClozeItems").
		Where("attempt_id = ? AND task_id = ?", attemptID, taskID).
		First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnswerRepository) ListByAttempt(attemptID string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.
		Preload("Selections").
		Preload("ClozeItems").
		Where("attempt_id = ?", attemptID).
		Find(&answers).Error
	return answers, err
}

// UpsertMultipleChoice reconciles the stored selection set with the submitted
// one: deselected options are removed, new ones inserted, the rest kept.
func (r *AnswerRepository) UpsertMultipleChoice(attemptID, taskID string, optionIDs []string) (*model.Answer, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := getOrCreateAnswer(tx, attemptID, taskID, model.TaskMultipleChoice)
		if err != nil {
			return err
		}

		var current []model.AnswerSelection
		if err := tx.Where("answer_id = ?", existing.ID).Find(&current).Error; err != nil {
			return err
		}

		currentSet := make(map[string]bool, len(current))
		for _, sel := range current {
			currentSet[sel.OptionID] = true
		}
		newSet := make(map[string]bool, len(optionIDs))
		for _, id := range optionIDs {
			newSet[id] = true
		}

		for optionID := range currentSet {
			if !newSet[optionID] {
				if err := tx.Delete(&model.AnswerSelection{}, "answer_id = ? AND option_id = ?", existing.ID, optionID).Error; err != nil {
					return err
				}
			}
		}
		for optionID := range newSet {
			if !currentSet[optionID] {
				if err := tx.Create(&model.AnswerSelection{AnswerID: existing.ID, OptionID: optionID}).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByAttemptAndTask(attemptID, taskID)
}

func (r *AnswerRepository) UpsertFreeText(attemptID, taskID, textResponse string) (*model.Answer, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := getOrCreateAnswer(tx, attemptID, taskID, model.TaskFreeText)
		if err != nil {
			return err
		}
		return tx.Model(existing).Update("text_response", textResponse).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindByAttemptAndTask(attemptID, taskID)
}

// UpsertCloze treats the payload as the complete snapshot of the task's
// blanks: stored items absent from the payload are deleted, not kept. An
// empty payload clears every stored item.
func (r *AnswerRepository) UpsertCloze(attemptID, taskID string, items []model.AnswerClozeItem) (*model.Answer, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := getOrCreateAnswer(tx, attemptID, taskID, model.TaskCloze)
		if err != nil {
			return err
		}

		if err := tx.Where("answer_id = ?", existing.ID).Delete(&model.AnswerClozeItem{}).Error; err != nil {
			return err
		}
		for _, item := range items {
			item.AnswerID = existing.ID
			item.IsCorrect = nil
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByAttemptAndTask(attemptID, taskID)
}

func (r *AnswerRepository) SetFreeTextCorrectness(attemptID, taskID string, isCorrect bool) error {
	return r.DB.Model(&model.Answer{}).
		Where("attempt_id = ? AND task_id = ?", attemptID, taskID).
		Update("is_correct", isCorrect).Error
}

func (r *AnswerRepository) SetPercentage(answerID string, percentage float64) error {
	return r.DB.Model(&model.Answer{}).
		Where("id = ?", answerID).
		Update("percentage_correct", percentage).Error
}

func (r *AnswerRepository) SetClozeItemCorrect(answerID, blankID string, isCorrect bool) error {
	return r.DB.Model(&model.AnswerClozeItem{}).
		Where("answer_id = ? AND blank_id = ?", answerID, blankID).
		Update("is_correct", isCorrect).Error
}

func getOrCreateAnswer(tx *gorm.DB, attemptID, taskID string, answerType model.TaskType) (*model.Answer, error) {
	var existing model.Answer
	err := tx.Where("attempt_id = ? AND task_id = ?", attemptID, taskID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	created := model.Answer{
		AttemptID: attemptID,
		TaskID:    taskID,
		Type:      answerType,
	}
	if err := tx.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}
