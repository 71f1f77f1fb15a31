package service

import (
	"context"
	"errors"
	"fmt"

	"quizlab_backend/internal/model"
	"quizlab_backend/internal/repository"
	"quizlab_backend/internal/util"

	"gorm.io/gorm"
)

type QuizService struct {
	Quizzes  *repository.QuizRepository
	TaskDefs *TaskDefinitionService
}

func NewQuizService(quizzes *repository.QuizRepository, taskDefs *TaskDefinitionService) *QuizService {
	return &QuizService{Quizzes: quizzes, TaskDefs: taskDefs}
}

type OptionInput struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type BlankInput struct {
	ExpectedValue string `json:"expectedValue" binding:"required"`
}

type TaskInput struct {
	Type            model.TaskType `json:"type" binding:"required,oneof=multiple_choice free_text cloze"`
	Prompt          string         `json:"prompt" binding:"required"`
	ReferenceAnswer string         `json:"referenceAnswer"`
	Options         []OptionInput  `json:"options"`
	Blanks          []BlankInput   `json:"blanks"`
}

type QuizRequest struct {
	Title       string      `json:"title" binding:"required"`
	Description string      `json:"description"`
	Tasks       []TaskInput `json:"tasks"`
}

func (s *QuizService) Create(userID string, req *QuizRequest) (*model.Quiz, error) {
	quiz := &model.Quiz{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.QuizDraft,
		Tasks:       buildTasks(req.Tasks),
	}
	if err := s.Quizzes.Create(quiz); err != nil {
		return nil, err
	}
	return s.Quizzes.FindByID(quiz.ID)
}

// Get returns the quiz with its full task tree. Drafts are visible to their
// owner only; completed quizzes are visible to any authenticated user.
func (s *QuizService) Get(userID, quizID string) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.Status != model.QuizCompleted && quiz.OwnerID != userID {
		return nil, util.ErrPermissionDenied
	}
	return quiz, nil
}

func (s *QuizService) List(userID string, page, limit int) ([]model.Quiz, int64, error) {
	return s.Quizzes.ListByOwner(userID, page, limit)
}

func (s *QuizService) Update(ctx context.Context, userID, quizID string, req *QuizRequest) (*model.Quiz, error) {
	quiz, err := s.loadOwnedDraft(userID, quizID)
	if err != nil {
		return nil, err
	}

	quiz.Title = req.Title
	quiz.Description = req.Description
	if err := s.Quizzes.Save(quiz); err != nil {
		return nil, err
	}
	if err := s.Quizzes.ReplaceTasks(quizID, buildTasks(req.Tasks)); err != nil {
		return nil, err
	}
	s.TaskDefs.Invalidate(ctx, quizID)
	return s.Quizzes.FindByID(quizID)
}

// Publish moves a draft to completed, after which its tasks are frozen and
// attempts may be started against it.
func (s *QuizService) Publish(ctx context.Context, userID, quizID string) (*model.Quiz, error) {
	if _, err := s.loadOwnedDraft(userID, quizID); err != nil {
		return nil, err
	}

	full, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		return nil, err
	}
	for i := range full.Tasks {
		if err := validatePublishableTask(&full.Tasks[i]); err != nil {
			return nil, err
		}
	}

	if err := s.Quizzes.UpdateStatus(quizID, model.QuizCompleted); err != nil {
		return nil, err
	}
	s.TaskDefs.Invalidate(ctx, quizID)
	return s.Quizzes.FindByID(quizID)
}

func (s *QuizService) Delete(ctx context.Context, userID, quizID string) error {
	if _, err := s.loadOwnedDraft(userID, quizID); err != nil {
		return err
	}
	s.TaskDefs.Invalidate(ctx, quizID)
	return s.Quizzes.Delete(quizID)
}

func (s *QuizService) loadOwnedDraft(userID, quizID string) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindMeta(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.OwnerID != userID {
		return nil, util.ErrPermissionDenied
	}
	if quiz.Status != model.QuizDraft {
		return nil, util.ErrQuizNotDraft
	}
	return quiz, nil
}

func buildTasks(inputs []TaskInput) []model.Task {
	tasks := make([]model.Task, 0, len(inputs))
	for i, in := range inputs {
		task := model.Task{
			Type:            in.Type,
			Position:        i,
			Prompt:          in.Prompt,
			ReferenceAnswer: in.ReferenceAnswer,
		}
		for j, opt := range in.Options {
			task.Options = append(task.Options, model.TaskOption{
				Text:      opt.Text,
				IsCorrect: opt.IsCorrect,
				Position:  j,
			})
		}
		for j, blank := range in.Blanks {
			task.Blanks = append(task.Blanks, model.TaskBlank{
				Position:      j,
				ExpectedValue: blank.ExpectedValue,
			})
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func validatePublishableTask(task *model.Task) error {
	switch task.Type {
	case model.TaskMultipleChoice:
		hasCorrect := false
		for _, opt := range task.Options {
			if opt.IsCorrect {
				hasCorrect = true
				break
			}
		}
		if len(task.Options) == 0 || !hasCorrect {
			return util.NewValidationError(string(task.Type),
				fmt.Sprintf("task %s needs at least one correct option", task.ID), task.ID)
		}
	case model.TaskCloze:
		if len(task.Blanks) == 0 {
			return util.NewValidationError(string(task.Type),
				fmt.Sprintf("task %s needs at least one blank", task.ID), task.ID)
		}
	}
	return nil
}
