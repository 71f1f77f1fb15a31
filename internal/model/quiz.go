package model

type QuizStatus string

const (
	QuizDraft     QuizStatus = "draft"
	QuizCompleted QuizStatus = "completed"
)

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	OwnerID     string     `gorm:"index;type:varchar(36)" json:"ownerId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      QuizStatus `gorm:"size:20;default:'draft'" json:"status"`
	Tasks       []Task     `gorm:"foreignKey:QuizID" json:"tasks,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
