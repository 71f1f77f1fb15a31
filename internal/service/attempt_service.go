package service

import (
	"context"
	"errors"
	"time"

	"quizlab_backend/internal/model"
	"quizlab_backend/internal/repository"
	"quizlab_backend/internal/util"

	"gorm.io/gorm"
)

type AttemptService struct {
	Attempts *repository.AttemptRepository
	Answers  *repository.AnswerRepository
	Quizzes  *repository.QuizRepository
	TaskDefs *TaskDefinitionService
}

func NewAttemptService(
	attempts *repository.AttemptRepository,
	answers *repository.AnswerRepository,
	quizzes *repository.QuizRepository,
	taskDefs *TaskDefinitionService,
) *AttemptService {
	return &AttemptService{
		Attempts: attempts,
		Answers:  answers,
		Quizzes:  quizzes,
		TaskDefs: taskDefs,
	}
}

type ClozeValueInput struct {
	BlankID string `json:"blankId" binding:"required"`
	Value   string `json:"value"`
}

// AnswerUpsertRequest is the discriminated answer payload; exactly the fields
// matching Type are consulted.
type AnswerUpsertRequest struct {
	Type              string            `json:"type" binding:"required,oneof=multiple_choice free_text cloze"`
	SelectedOptionIDs []string          `json:"selectedOptionIds"`
	TextResponse      *string           `json:"textResponse"`
	ProvidedValues    []ClozeValueInput `json:"providedValues"`
}

type ClozeValueDTO struct {
	BlankID   string `json:"blankId"`
	Value     string `json:"value"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

type AnswerDTO struct {
	TaskID            string         `json:"taskId"`
	Type              model.TaskType `json:"type"`
	SelectedOptionIDs []string       `json:"selectedOptionIds,omitempty"`
	TextResponse      *string        `json:"textResponse,omitempty"`
	IsCorrect         *bool          `json:"isCorrect,omitempty"`
	ProvidedValues    []ClozeValueDTO `json:"providedValues,omitempty"`
	PercentageCorrect *float64       `json:"percentageCorrect,omitempty"`
}

type AttemptDetailResponse struct {
	AttemptID       string              `json:"attemptId"`
	QuizID          string              `json:"quizId"`
	Status          model.AttemptStatus `json:"status"`
	StartedAt       time.Time           `json:"startedAt"`
	EvaluatedAt     *time.Time          `json:"evaluatedAt,omitempty"`
	TotalPercentage *float64            `json:"totalPercentage,omitempty"`
	Answers         []AnswerDTO         `json:"answers"`
}

type AttemptListItem struct {
	AttemptID       string              `json:"attemptId"`
	QuizID          string              `json:"quizId"`
	Status          model.AttemptStatus `json:"status"`
	StartedAt       time.Time           `json:"startedAt"`
	EvaluatedAt     *time.Time          `json:"evaluatedAt,omitempty"`
	TotalPercentage *float64            `json:"totalPercentage,omitempty"`
}

type AnswerSavedResponse struct {
	AnswerID string    `json:"answerId"`
	TaskID   string    `json:"taskId"`
	SavedAt  time.Time `json:"savedAt"`
}

// StartOrResume opens a new attempt on a completed quiz, or returns the
// user's existing in-progress attempt with its stored answers so the client
// can replay which tasks are already answered. The bool reports whether a
// new attempt was created.
func (s *AttemptService) StartOrResume(ctx context.Context, userID, quizID string) (*AttemptDetailResponse, bool, error) {
	quiz, err := s.Quizzes.FindMeta(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, util.ErrQuizNotFound
		}
		return nil, false, err
	}
	if quiz.Status != model.QuizCompleted {
		return nil, false, util.ErrQuizNotCompleted
	}

	existing, err := s.Attempts.FindOpen(userID, quizID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		detail, err := s.buildDetail(existing)
		return detail, false, err
	}

	attempt := &model.Attempt{
		QuizID:    quizID,
		UserID:    userID,
		Status:    model.AttemptInProgress,
		StartedAt: time.Now().UTC(),
	}
	if err := s.Attempts.Create(attempt); err != nil {
		return nil, false, err
	}

	return &AttemptDetailResponse{
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		Status:    attempt.Status,
		StartedAt: attempt.StartedAt,
		Answers:   []AnswerDTO{},
	}, true, nil
}

func (s *AttemptService) List(userID, quizID string, status model.AttemptStatus) ([]AttemptListItem, error) {
	attempts, err := s.Attempts.ListByUser(userID, quizID, status)
	if err != nil {
		return nil, err
	}

	items := make([]AttemptListItem, len(attempts))
	for i, a := range attempts {
		items[i] = AttemptListItem{
			AttemptID:       a.ID,
			QuizID:          a.QuizID,
			Status:          a.Status,
			StartedAt:       a.StartedAt,
			EvaluatedAt:     a.EvaluatedAt,
			TotalPercentage: a.TotalPercentage,
		}
	}
	return items, nil
}

func (s *AttemptService) Get(userID, attemptID string) (*AttemptDetailResponse, error) {
	attempt, err := s.loadOwnedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(attempt)
}

// SaveAnswer validates the payload against the task definition and stores it
// as the task's single answer snapshot for this attempt.
func (s *AttemptService) SaveAnswer(ctx context.Context, userID, attemptID, taskID string, req AnswerUpsertRequest) (*AnswerSavedResponse, error) {
	attempt, err := s.loadOwnedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptEvaluated
	}

	task, err := s.TaskDefs.FindTask(ctx, attempt.QuizID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, util.ErrTaskNotFound
	}

	if string(task.Type) != req.Type {
		return nil, util.NewValidationError(string(task.Type), "answer type "+req.Type+" does not match task type", "")
	}

	var answer *model.Answer
	switch task.Type {
	case model.TaskMultipleChoice:
		if err := validateOptionIDs(task, req.SelectedOptionIDs); err != nil {
			return nil, err
		}
		answer, err = s.Answers.UpsertMultipleChoice(attemptID, taskID, req.SelectedOptionIDs)
	case model.TaskFreeText:
		if req.TextResponse == nil {
			return nil, util.NewValidationError(string(model.TaskFreeText), "text response is required", "")
		}
		answer, err = s.Answers.UpsertFreeText(attemptID, taskID, *req.TextResponse)
	case model.TaskCloze:
		items, verr := validateClozeItems(task, req.ProvidedValues)
		if verr != nil {
			return nil, verr
		}
		answer, err = s.Answers.UpsertCloze(attemptID, taskID, items)
	}
	if err != nil {
		return nil, err
	}

	return &AnswerSavedResponse{
		AnswerID: answer.ID,
		TaskID:   taskID,
		SavedAt:  time.Now().UTC(),
	}, nil
}

// SetFreeTextCorrectness records the manual grading flag for a free-text
// answer. Correctness is never inferred from the text itself.
func (s *AttemptService) SetFreeTextCorrectness(ctx context.Context, userID, attemptID, taskID string, isCorrect bool) error {
	attempt, err := s.loadOwnedAttempt(userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.Status != model.AttemptInProgress {
		return util.ErrAttemptEvaluated
	}

	answer, err := s.Answers.FindByAttemptAndTask(attemptID, taskID)
	if err != nil {
		return err
	}
	if answer == nil {
		return util.ErrAnswerNotFound
	}
	if answer.Type != model.TaskFreeText {
		return util.NewValidationError(string(answer.Type), "correctness can only be set on free_text answers", "")
	}

	return s.Answers.SetFreeTextCorrectness(attemptID, taskID, isCorrect)
}

func (s *AttemptService) loadOwnedAttempt(userID, attemptID string) (*model.Attempt, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}

func (s *AttemptService) buildDetail(attempt *model.Attempt) (*AttemptDetailResponse, error) {
	answers, err := s.Answers.ListByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}

	dtos := make([]AnswerDTO, len(answers))
	for i := range answers {
		dtos[i] = answerToDTO(&answers[i])
	}

	return &AttemptDetailResponse{
		AttemptID:       attempt.ID,
		QuizID:          attempt.QuizID,
		Status:          attempt.Status,
		StartedAt:       attempt.StartedAt,
		EvaluatedAt:     attempt.EvaluatedAt,
		TotalPercentage: attempt.TotalPercentage,
		Answers:         dtos,
	}, nil
}

func answerToDTO(a *model.Answer) AnswerDTO {
	dto := AnswerDTO{
		TaskID:            a.TaskID,
		Type:              a.Type,
		PercentageCorrect: a.PercentageCorrect,
	}

	switch a.Type {
	case model.TaskMultipleChoice:
		dto.SelectedOptionIDs = make([]string, len(a.Selections))
		for i, sel := range a.Selections {
			dto.SelectedOptionIDs[i] = sel.OptionID
		}
	case model.TaskFreeText:
		text := a.TextResponse
		dto.TextResponse = &text
		dto.IsCorrect = a.IsCorrect
	case model.TaskCloze:
		dto.ProvidedValues = make([]ClozeValueDTO, len(a.ClozeItems))
		for i, item := range a.ClozeItems {
			dto.ProvidedValues[i] = ClozeValueDTO{
				BlankID:   item.BlankID,
				Value:     item.Value,
				IsCorrect: item.IsCorrect,
			}
		}
	}
	return dto
}

func validateOptionIDs(task *model.Task, optionIDs []string) error {
	known := make(map[string]bool, len(task.Options))
	for _, opt := range task.Options {
		known[opt.ID] = true
	}
	for _, id := range optionIDs {
		if !known[id] {
			return util.NewValidationError(string(model.TaskMultipleChoice), "unknown option id", id)
		}
	}
	return nil
}

// validateClozeItems checks every submitted blank id belongs to the task.
// The payload is a complete snapshot: blanks it omits will be deleted.
func validateClozeItems(task *model.Task, values []ClozeValueInput) ([]model.AnswerClozeItem, error) {
	known := make(map[string]bool, len(task.Blanks))
	for _, blank := range task.Blanks {
		known[blank.ID] = true
	}

	items := make([]model.AnswerClozeItem, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !known[v.BlankID] {
			return nil, util.NewValidationError(string(model.TaskCloze), "unknown blank id", v.BlankID)
		}
		if seen[v.BlankID] {
			return nil, util.NewValidationError(string(model.TaskCloze), "duplicate blank id", v.BlankID)
		}
		seen[v.BlankID] = true
		items = append(items, model.AnswerClozeItem{BlankID: v.BlankID, Value: v.Value})
	}
	return items, nil
}
