package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quizlab_backend/internal/model"
	"quizlab_backend/internal/repository"
	"quizlab_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const taskDefinitionTTL = 10 * time.Minute

// TaskDefinitionService is the read side of the task definition store. Task
// definitions are immutable once a quiz is completed, so the answer and
// evaluation hot paths read them through a Redis cache.
type TaskDefinitionService struct {
	Tasks *repository.TaskRepository
	Redis *redis.Client
}

func NewTaskDefinitionService(tasks *repository.TaskRepository, rdb *redis.Client) *TaskDefinitionService {
	return &TaskDefinitionService{Tasks: tasks, Redis: rdb}
}

func taskDefinitionKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:tasks", quizID)
}

// GetQuizTasks returns the quiz's tasks with options and blanks, in quiz
// order. Cache misses and unreachable Redis both fall through to the DB.
func (s *TaskDefinitionService) GetQuizTasks(ctx context.Context, quizID string) ([]model.Task, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, taskDefinitionKey(quizID)).Result()
		if err == nil {
			var tasks []model.Task
			if err := json.Unmarshal([]byte(cached), &tasks); err == nil {
				return tasks, nil
			}
		}
	}

	tasks, err := s.Tasks.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(tasks); err == nil {
			if err := s.Redis.Set(ctx, taskDefinitionKey(quizID), data, taskDefinitionTTL).Err(); err != nil {
				logger.Log.Warn("task definition cache write failed", zap.String("quizId", quizID), zap.Error(err))
			}
		}
	}

	return tasks, nil
}

// FindTask locates one task within a quiz, via the same cached read.
func (s *TaskDefinitionService) FindTask(ctx context.Context, quizID, taskID string) (*model.Task, error) {
	tasks, err := s.GetQuizTasks(ctx, quizID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i], nil
		}
	}
	return nil, nil
}

// Invalidate drops the cached definitions after a quiz edit or publish.
func (s *TaskDefinitionService) Invalidate(ctx context.Context, quizID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, taskDefinitionKey(quizID)).Err(); err != nil {
		logger.Log.Warn("task definition cache invalidation failed", zap.String("quizId", quizID), zap.Error(err))
	}
}
