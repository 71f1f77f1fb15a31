// Package scoring computes percentage scores for answers against task
// definitions. Everything here is deterministic and side-effect free: the
// same functions back both live score display and final evaluation, so the
// two can never drift.
package scoring

import (
	"math"

	"quizlab_backend/internal/model"
)

// Score returns the percentage correct (0-100) for one answer.
// A nil answer scores 0 regardless of task type.
func Score(task *model.Task, ans *model.Answer) float64 {
	if ans == nil || ans.Type != task.Type {
		return 0
	}

	switch task.Type {
	case model.TaskMultipleChoice:
		return scoreMultipleChoice(task, ans)
	case model.TaskFreeText:
		return scoreFreeText(ans)
	case model.TaskCloze:
		pct, _ := ScoreCloze(task, ans)
		return pct
	default:
		return 0
	}
}

// scoreMultipleChoice grades by exact set equality: all correct options
// selected and nothing else. No partial credit.
func scoreMultipleChoice(task *model.Task, ans *model.Answer) float64 {
	correct := make(map[string]struct{})
	for _, opt := range task.Options {
		if opt.IsCorrect {
			correct[opt.ID] = struct{}{}
		}
	}

	selected := make(map[string]struct{}, len(ans.Selections))
	for _, sel := range ans.Selections {
		selected[sel.OptionID] = struct{}{}
	}

	if len(correct) != len(selected) {
		return 0
	}
	for id := range correct {
		if _, ok := selected[id]; !ok {
			return 0
		}
	}
	return 100
}

// scoreFreeText grades from the manually assigned correctness flag only; an
// unset flag counts as incorrect so finalization never blocks on it.
func scoreFreeText(ans *model.Answer) float64 {
	if ans.IsCorrect != nil && *ans.IsCorrect {
		return 100
	}
	return 0
}

// ScoreCloze grades each blank independently and also reports per-blank
// correctness keyed by blank id, for persisting alongside the answer.
// Missing blanks count as incorrect; a task without blanks scores 100.
func ScoreCloze(task *model.Task, ans *model.Answer) (float64, map[string]bool) {
	results := make(map[string]bool, len(task.Blanks))
	if len(task.Blanks) == 0 {
		return 100, results
	}

	provided := make(map[string]string, len(ans.ClozeItems))
	for _, item := range ans.ClozeItems {
		provided[item.BlankID] = item.Value
	}

	correct := 0
	for _, blank := range task.Blanks {
		value, ok := provided[blank.ID]
		matched := ok && MatchBlank(blank.ExpectedValue, value)
		if ok {
			results[blank.ID] = matched
		}
		if matched {
			correct++
		}
	}

	return float64(correct) / float64(len(task.Blanks)) * 100, results
}

// Mean returns the unweighted arithmetic mean of per-task percentages,
// rounded to two decimals. An empty slice yields 0, not a division error.
func Mean(percentages []float64) float64 {
	if len(percentages) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range percentages {
		sum += p
	}
	return Round2(sum / float64(len(percentages)))
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
