package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptEvaluated  AttemptStatus = "evaluated"
)

// Attempt is one user's run through a quiz. Status moves in_progress ->
// evaluated exactly once; the row is frozen afterwards.
type Attempt struct {
	UUIDBase
	QuizID          string        `gorm:"index;type:varchar(36)" json:"quizId"`
	UserID          string        `gorm:"index;type:varchar(36)" json:"userId"`
	Status          AttemptStatus `gorm:"size:20;default:'in_progress'" json:"status"`
	StartedAt       time.Time     `json:"startedAt"`
	EvaluatedAt     *time.Time    `json:"evaluatedAt,omitempty"`
	TotalPercentage *float64      `json:"totalPercentage,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}
