package model

type TaskType string

const (
	TaskMultipleChoice TaskType = "multiple_choice"
	TaskFreeText       TaskType = "free_text"
	TaskCloze          TaskType = "cloze"
)

// Task is one gradable question unit. Definitions are immutable once the
// owning quiz reaches the completed status.
type Task struct {
	UUIDBase
	QuizID   string   `gorm:"index;type:varchar(36)" json:"quizId"`
	Type     TaskType `gorm:"size:20;not null" json:"type"`
	Position int      `gorm:"default:0" json:"position"`
	Prompt   string   `gorm:"type:text;not null" json:"prompt"`

	// free_text only
	ReferenceAnswer string `gorm:"type:text" json:"referenceAnswer,omitempty"`

	Options []TaskOption `gorm:"foreignKey:TaskID" json:"options,omitempty"`
	Blanks  []TaskBlank  `gorm:"foreignKey:TaskID" json:"blanks,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

type TaskOption struct {
	UUIDBase
	TaskID    string `gorm:"index;type:varchar(36)" json:"taskId"`
	Text      string `gorm:"type:text;not null" json:"text"`
	IsCorrect bool   `gorm:"default:false" json:"isCorrect"`
	Position  int    `gorm:"default:0" json:"position"`
}

func (TaskOption) TableName() string {
	return "task_options"
}

// TaskBlank is one fill-in slot of a cloze task. ExpectedValue is matched as
// an anchored regular expression, falling back to a normalized literal
// comparison when the pattern does not compile.
type TaskBlank struct {
	UUIDBase
	TaskID        string `gorm:"index;type:varchar(36)" json:"taskId"`
	Position      int    `gorm:"default:0" json:"position"`
	ExpectedValue string `gorm:"type:text;not null" json:"expectedValue"`
}

func (TaskBlank) TableName() string {
	return "task_blanks"
}
