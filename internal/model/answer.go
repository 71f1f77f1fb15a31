package model

// Answer is a snapshot of the user's current input for one task within an
// attempt: exactly one row per (attempt, task), overwritten on re-submit.
// The Type discriminator decides which of the nested payloads is populated.
type Answer struct {
	UUIDBase
	AttemptID string   `gorm:"uniqueIndex:uq_answers_attempt_task;index;type:varchar(36)" json:"attemptId"`
	TaskID    string   `gorm:"uniqueIndex:uq_answers_attempt_task;index;type:varchar(36)" json:"taskId"`
	Type      TaskType `gorm:"size:20;not null" json:"type"`

	// free_text only
	TextResponse string `gorm:"type:text" json:"textResponse,omitempty"`
	IsCorrect    *bool  `json:"isCorrect,omitempty"`

	// set at evaluation time, nil before
	PercentageCorrect *float64 `json:"percentageCorrect,omitempty"`

	Selections []AnswerSelection `gorm:"foreignKey:AnswerID" json:"selections,omitempty"`
	ClozeItems []AnswerClozeItem `gorm:"foreignKey:AnswerID" json:"clozeItems,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}

type AnswerSelection struct {
	AnswerID string `gorm:"primaryKey;type:varchar(36)" json:"answerId"`
	OptionID string `gorm:"primaryKey;type:varchar(36)" json:"optionId"`
}

func (AnswerSelection) TableName() string {
	return "answer_selections"
}

type AnswerClozeItem struct {
	AnswerID  string `gorm:"primaryKey;type:varchar(36)" json:"answerId"`
	BlankID   string `gorm:"primaryKey;type:varchar(36)" json:"blankId"`
	Value     string `gorm:"type:text;not null" json:"value"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

func (AnswerClozeItem) TableName() string {
	return "answer_cloze_items"
}
