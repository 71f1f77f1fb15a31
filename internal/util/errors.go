package util

import (
	"errors"
	"fmt"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotCompleted = errors.New("quiz not completed or not accessible")
	ErrQuizNotDraft     = errors.New("quiz is published and can no longer be edited")
	ErrTaskNotFound     = errors.New("task not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrAttemptEvaluated = errors.New("attempt already evaluated")
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationError reports a payload that does not match the task definition,
// carrying the offending id so the client can surface an actionable message.
type ValidationError struct {
	TaskType    string
	OffendingID string
	Reason      string
}

func (e *ValidationError) Error() string {
	if e.OffendingID != "" {
		return fmt.Sprintf("%s answer invalid: %s (id %s)", e.TaskType, e.Reason, e.OffendingID)
	}
	return fmt.Sprintf("%s answer invalid: %s", e.TaskType, e.Reason)
}

func NewValidationError(taskType, reason, offendingID string) error {
	return &ValidationError{TaskType: taskType, Reason: reason, OffendingID: offendingID}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
