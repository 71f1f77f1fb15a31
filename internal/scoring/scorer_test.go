package scoring

import (
	"testing"

	"quizlab_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func mcTask(correctIDs []string, wrongIDs []string) *model.Task {
	task := &model.Task{Type: model.TaskMultipleChoice}
	for _, id := range correctIDs {
		task.Options = append(task.Options, model.TaskOption{
			UUIDBase:  model.UUIDBase{ID: id},
			IsCorrect: true,
		})
	}
	for _, id := range wrongIDs {
		task.Options = append(task.Options, model.TaskOption{
			UUIDBase: model.UUIDBase{ID: id},
		})
	}
	return task
}

func mcAnswer(selectedIDs ...string) *model.Answer {
	ans := &model.Answer{Type: model.TaskMultipleChoice}
	for _, id := range selectedIDs {
		ans.Selections = append(ans.Selections, model.AnswerSelection{OptionID: id})
	}
	return ans
}

func TestScoreMultipleChoice(t *testing.T) {
	task := mcTask([]string{"opt1", "opt2"}, []string{"opt3"})

	tests := []struct {
		name     string
		answer   *model.Answer
		expected float64
	}{
		{"exact correct set", mcAnswer("opt1", "opt2"), 100},
		{"subset of correct", mcAnswer("opt1"), 0},
		{"superset with wrong option", mcAnswer("opt1", "opt2", "opt3"), 0},
		{"only wrong option", mcAnswer("opt3"), 0},
		{"nothing selected", mcAnswer(), 0},
		{"no answer at all", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(task, tt.answer))
		})
	}
}

func TestScoreMultipleChoiceTypeMismatch(t *testing.T) {
	task := mcTask([]string{"opt1"}, nil)
	ans := &model.Answer{Type: model.TaskFreeText}
	assert.Equal(t, float64(0), Score(task, ans))
}

func TestScoreFreeText(t *testing.T) {
	task := &model.Task{Type: model.TaskFreeText}
	yes, no := true, false

	tests := []struct {
		name     string
		flag     *bool
		expected float64
	}{
		{"marked correct", &yes, 100},
		{"marked incorrect", &no, 0},
		{"flag never set", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := &model.Answer{Type: model.TaskFreeText, IsCorrect: tt.flag}
			assert.Equal(t, tt.expected, Score(task, ans))
		})
	}
}

func clozeTask(blanks map[string]string) *model.Task {
	task := &model.Task{Type: model.TaskCloze}
	for id, expected := range blanks {
		task.Blanks = append(task.Blanks, model.TaskBlank{
			UUIDBase:      model.UUIDBase{ID: id},
			ExpectedValue: expected,
		})
	}
	return task
}

func clozeAnswer(values map[string]string) *model.Answer {
	ans := &model.Answer{Type: model.TaskCloze}
	for id, value := range values {
		ans.ClozeItems = append(ans.ClozeItems, model.AnswerClozeItem{BlankID: id, Value: value})
	}
	return ans
}

func TestScoreCloze(t *testing.T) {
	task := clozeTask(map[string]string{
		"b1": "42",
		"b2": "go(lang)?",
	})

	tests := []struct {
		name     string
		values   map[string]string
		expected float64
	}{
		{"all blanks correct", map[string]string{"b1": "42", "b2": "golang"}, 100},
		{"regex alternative form", map[string]string{"b1": "42", "b2": "go"}, 100},
		{"one of two correct", map[string]string{"b1": "42", "b2": "rust"}, 50},
		{"whitespace trimmed", map[string]string{"b1": " 42 ", "b2": "golang"}, 100},
		{"missing blank counts wrong", map[string]string{"b1": "42"}, 50},
		{"no values at all", map[string]string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, _ := ScoreCloze(task, clozeAnswer(tt.values))
			assert.Equal(t, tt.expected, pct)
		})
	}
}

func TestScoreClozePerBlankResults(t *testing.T) {
	task := clozeTask(map[string]string{"b1": "42", "b2": "43"})
	ans := clozeAnswer(map[string]string{"b1": "42", "b2": "99"})

	_, results := ScoreCloze(task, ans)

	assert.Equal(t, map[string]bool{"b1": true, "b2": false}, results)
}

func TestScoreClozeNoBlanks(t *testing.T) {
	task := clozeTask(nil)
	pct, results := ScoreCloze(task, clozeAnswer(nil))

	assert.Equal(t, float64(100), pct)
	assert.Empty(t, results)
}

func TestMatchBlank(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		value    string
		matched  bool
	}{
		{"literal match", "paris", "paris", true},
		{"literal mismatch", "paris", "london", false},
		{"anchored, no substring match", "paris", "paris france", false},
		{"regex alternation", "cat|dog", "dog", true},
		{"regex optional group", "colou?r", "color", true},
		{"invalid regex falls back to literal", "c++", "c++", true},
		{"fallback is case insensitive", "c++", "C++", true},
		{"fallback still rejects different text", "c++", "java", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matched, MatchBlank(tt.expected, tt.value))
		})
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		expected float64
	}{
		{"empty slice", nil, 0},
		{"single value", []float64{100}, 100},
		{"repeating decimal rounds to two places", []float64{100, 0, 100}, 66.67},
		{"all zero", []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Mean(tt.input))
		})
	}
}

// Scoring the same answer twice must yield the same result; the scorer backs
// both live display and finalization.
func TestScoreIsDeterministic(t *testing.T) {
	task := mcTask([]string{"opt1"}, []string{"opt2"})
	ans := mcAnswer("opt1")

	first := Score(task, ans)
	second := Score(task, ans)

	assert.Equal(t, first, second)
	assert.Equal(t, float64(100), first)
}
