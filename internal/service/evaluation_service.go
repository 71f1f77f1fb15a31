package service

import (
	"context"
	"errors"
	"time"

	"quizlab_backend/internal/model"
	"quizlab_backend/internal/repository"
	"quizlab_backend/internal/scoring"
	"quizlab_backend/internal/util"
	"quizlab_backend/pkg/logger"
	"quizlab_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EvaluationService freezes an attempt: it scores every task of the quiz,
// persists the per-answer percentages, and performs the one-way transition
// to evaluated. Finalizing an already evaluated attempt replays the stored
// result without recomputing anything.
type EvaluationService struct {
	Attempts *repository.AttemptRepository
	Answers  *repository.AnswerRepository
	TaskDefs *TaskDefinitionService
	Storage  *StorageService
}

func NewEvaluationService(
	attempts *repository.AttemptRepository,
	answers *repository.AnswerRepository,
	taskDefs *TaskDefinitionService,
	storage *StorageService,
) *EvaluationService {
	return &EvaluationService{
		Attempts: attempts,
		Answers:  answers,
		TaskDefs: taskDefs,
		Storage:  storage,
	}
}

type TaskResult struct {
	TaskID            string         `json:"taskId"`
	Type              model.TaskType `json:"type"`
	PercentageCorrect float64        `json:"percentageCorrect"`
}

type EvaluationResponse struct {
	AttemptID       string       `json:"attemptId"`
	QuizID          string       `json:"quizId"`
	TotalPercentage float64      `json:"totalPercentage"`
	EvaluatedAt     time.Time    `json:"evaluatedAt"`
	Results         []TaskResult `json:"results"`
}

func (s *EvaluationService) Evaluate(ctx context.Context, userID, attemptID string) (*EvaluationResponse, error) {
	attempt, err := s.loadOwnedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.Status == model.AttemptEvaluated {
		monitoring.EvaluationCounter.WithLabelValues("replayed").Inc()
		return s.buildFrozen(ctx, attempt)
	}

	tasks, err := s.TaskDefs.GetQuizTasks(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	answers, err := s.Answers.ListByAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	answerMap := make(map[string]*model.Answer, len(answers))
	for i := range answers {
		answerMap[answers[i].TaskID] = &answers[i]
	}

	// Unanswered tasks score 0 and stay in the denominator.
	results := make([]TaskResult, 0, len(tasks))
	percentages := make([]float64, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		answer := answerMap[task.ID]

		var pct float64
		if answer != nil {
			if task.Type == model.TaskCloze {
				clozePct, blankResults := scoring.ScoreCloze(task, answer)
				pct = clozePct
				for blankID, correct := range blankResults {
					if err := s.Answers.SetClozeItemCorrect(answer.ID, blankID, correct); err != nil {
						return nil, err
					}
				}
			} else {
				pct = scoring.Score(task, answer)
			}
			pct = scoring.Round2(pct)
			if err := s.Answers.SetPercentage(answer.ID, pct); err != nil {
				return nil, err
			}
		}

		results = append(results, TaskResult{
			TaskID:            task.ID,
			Type:              task.Type,
			PercentageCorrect: pct,
		})
		percentages = append(percentages, pct)
	}

	total := scoring.Mean(percentages)
	evaluatedAt := time.Now().UTC()

	transitioned, err := s.Attempts.MarkEvaluated(attemptID, total, evaluatedAt)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		// A concurrent finalize won; serve its frozen result.
		monitoring.EvaluationCounter.WithLabelValues("replayed").Inc()
		refreshed, err := s.Attempts.FindByID(attemptID)
		if err != nil {
			return nil, err
		}
		return s.buildFrozen(ctx, refreshed)
	}
	monitoring.EvaluationCounter.WithLabelValues("evaluated").Inc()

	response := &EvaluationResponse{
		AttemptID:       attemptID,
		QuizID:          attempt.QuizID,
		TotalPercentage: total,
		EvaluatedAt:     evaluatedAt,
		Results:         results,
	}

	if s.Storage != nil {
		if err := s.Storage.ArchiveEvaluation(ctx, attemptID, response); err != nil {
			logger.Log.Warn("evaluation report archival failed", zap.String("attemptId", attemptID), zap.Error(err))
		}
	}

	return response, nil
}

// buildFrozen rebuilds the evaluation response from persisted state only:
// stored per-answer percentages, 0 for tasks without an answer, and the
// attempt's frozen total. No scorer runs here.
func (s *EvaluationService) buildFrozen(ctx context.Context, attempt *model.Attempt) (*EvaluationResponse, error) {
	tasks, err := s.TaskDefs.GetQuizTasks(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	answers, err := s.Answers.ListByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}
	answerMap := make(map[string]*model.Answer, len(answers))
	for i := range answers {
		answerMap[answers[i].TaskID] = &answers[i]
	}

	results := make([]TaskResult, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		var pct float64
		if answer := answerMap[task.ID]; answer != nil && answer.PercentageCorrect != nil {
			pct = *answer.PercentageCorrect
		}
		results = append(results, TaskResult{
			TaskID:            task.ID,
			Type:              task.Type,
			PercentageCorrect: pct,
		})
	}

	total := 0.0
	if attempt.TotalPercentage != nil {
		total = *attempt.TotalPercentage
	}
	evaluatedAt := time.Time{}
	if attempt.EvaluatedAt != nil {
		evaluatedAt = *attempt.EvaluatedAt
	}

	return &EvaluationResponse{
		AttemptID:       attempt.ID,
		QuizID:          attempt.QuizID,
		TotalPercentage: total,
		EvaluatedAt:     evaluatedAt,
		Results:         results,
	}, nil
}

func (s *EvaluationService) loadOwnedAttempt(userID, attemptID string) (*model.Attempt, error) {
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
