package service

import (
	"context"
	"testing"
	"time"

	"quizlab_backend/internal/model"
	"quizlab_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerEverythingCorrectly(t *testing.T, env *testEnv, quiz *model.Quiz, attemptID string) {
	t.Helper()
	ctx := context.Background()

	mcTask := &quiz.Tasks[0]
	_, err := env.attempts.SaveAnswer(ctx, "user-1", attemptID, mcTask.ID, AnswerUpsertRequest{
		Type:              string(model.TaskMultipleChoice),
		SelectedOptionIDs: correctOptionIDs(mcTask),
	})
	require.NoError(t, err)

	ftTask := &quiz.Tasks[1]
	text := "A lightweight thread managed by the runtime."
	_, err = env.attempts.SaveAnswer(ctx, "user-1", attemptID, ftTask.ID, AnswerUpsertRequest{
		Type:         string(model.TaskFreeText),
		TextResponse: &text,
	})
	require.NoError(t, err)
	require.NoError(t, env.attempts.SetFreeTextCorrectness(ctx, "user-1", attemptID, ftTask.ID, true))

	clozeTask := &quiz.Tasks[2]
	_, err = env.attempts.SaveAnswer(ctx, "user-1", attemptID, clozeTask.ID, AnswerUpsertRequest{
		Type: string(model.TaskCloze),
		ProvidedValues: []ClozeValueInput{
			{BlankID: clozeTask.Blanks[0].ID, Value: "make"},
			{BlankID: clozeTask.Blanks[1].ID, Value: "close"},
		},
	})
	require.NoError(t, err)
}

func TestEvaluatePerfectRun(t *testing.T) {
	env := newTestEnv(t)
	quiz := seedQuiz(t, env)
	ctx := context.Background()

	detail, _, err := env.attempts.StartOrResume(ctx, "user-1", quiz.ID)
	require.NoError(t, err)
	answerEverythingCorrectly(t, env, quiz, detail.AttemptID)

	result, err := env.evaluation.Evaluate(ctx, "user-1", detail.AttemptID)
	require.NoError(t, err)

	assert.Equal(t, float64(100), result.TotalPercentage)
	require.Len(t, result.Results, 3)
	for _, r := range result.Results {
		assert.Equal(t, float64(100), r.PercentageCorrect)
	}
	assert.False(t, result.EvaluatedAt.IsZero())
}

// An ungraded free-text answer counts as 0 but never blocks evaluation.
func TestEvaluateUngradedFreeText(t *testing.T) {
	env := newTestEnv(t)
	quiz := seedQuiz(t, env)
	ctx := context.Background()

	detail, _, err := env.attempts.StartOrResume(ctx, "user-1", quiz.ID)
	require.NoError(t, err)

	mcTask := &quiz.Tasks[0]
	_, err = env.attempts.SaveAnswer(ctx, "user-1", detail.AttemptID, mcTask.ID, AnswerUpsertRequest{
		Type:              string(model.TaskMultipleChoice),
		SelectedOptionIDs: correctOptionIDs(mcTask),
	})
	require.NoError(t, err)

	ftTask := &quiz.Tasks[1]
	text := "never graded"
	_, err = env.attempts.SaveAnswer(ctx, "user-1", detail.AttemptID, ftTask.ID, AnswerUpsertRequest{
		Type:         string(model.TaskFreeText),
		TextResponse: &text,
	})
	require.NoError(t, err)

	clozeTask := &quiz.Tasks[2]
	_, err = env.attempts.SaveAnswer(ctx, "user-1", detail.AttemptID, clozeTask.ID, AnswerUpsertRequest{
		Type: string(model.TaskCloze),
		ProvidedValues: []ClozeValueInput{
			{BlankID: clozeTask.Blanks[0].ID, Value: "make"},
			{BlankID: clozeTask.Blanks[1].ID, Value: "close"},
		},
	})
	require.NoError(t, err)

	result, err := env.evaluation.Evaluate(ctx, "user-1", detail.AttemptID)
	require.NoError(t, err)

	// (100 + 0 + 100) / 3
	assert.Equal(t, 66.67, result.TotalPercentage)
}

// Unanswered tasks score 0 and still count toward the mean.
func TestEvaluateUnansweredTasks(t *testing.T) {
	env := newTestEnv(t)
	quiz := seedQuiz(t, env)
	ctx := context.Background()

	detail, _, err := env.attempts.StartOrResume(ctx, "user-1", quiz.ID)
	require.NoError(t, err)

	mcTask := &quiz.Tasks[0]
	_, err = env.attempts.SaveAnswer(ctx, "user-1", detail.AttemptID, mcTask.ID, AnswerUpsertRequest{
		Type:              string(model.TaskMultipleChoice),
		SelectedOptionIDs: correctOptionIDs(mcTask),
	})
	require.NoError(t, err)

	result, err := env.evaluation.Evaluate(ctx, "user-1", detail.AttemptID)
	require.NoError(t, err)

	// (100 + 0 + 0) / 3
	assert.Equal(t, 33.33, result.TotalPercentage)
	require.Len(t, result.Results, 3)
	assert.Equal(t, float64(0), result.Results[1].PercentageCorrect)
	assert.Equal(t, float64(0), result.Results[2].PercentageCorrect)
}

func TestEvaluateEmptyQuiz(t *testing.T) {
	env := newTestEnv(t)
	quiz := &model.Quiz{OwnerID: "owner-1", Title: "Empty", Status: model.QuizCompleted}
	require.NoError(t, env.db.Create(quiz).Error)
	ctx := context.Background()

	detail, _, err := env.attempts.StartOrResume(ctx, "user-1", quiz.ID)
	require.NoError(t, err)

	result, err := env.evaluation.Evaluate(ctx, "user-1", detail.AttemptID)
	require.NoError(t, err)

	assert.Equal(t, float64(0), result.TotalPercentage)
	assert.Empty(t, result.Results)
}

func TestEvaluateResultsFollowTaskOrder(t *testing.T) {
	env := newTestEnv(t)
	quiz := seedQuiz(t, env)
	ctx := context.Background()

	detail, _, err := env.attempts.StartOrResume(ctx, "user-1", quiz.ID)
	require.NoError(t, err)

	result, err := env.evaluation.Evaluate(ctx, "user-1", detail.AttemptID)
	require.NoError(t, err)

	require.Len(t, result.Results, 3)
	for i := range result.Results {
		assert.Equal(t, quiz.Tasks[i].ID, result.Results[i].TaskID)
	}
}

// Finalizing twice returns the frozen result, even if the quiz definition
// would score differently now.
func TestEvaluateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	quiz := seedQuiz(t, env)
	ctx := context.Background()

	detail, _, err := env.attempts.StartOrResume(ctx, "user-1", quiz.ID)
	require.NoError(t, err)
	answerEverythingCorrectly(t, env, quiz, detail.AttemptID)

	first, err := env.evaluation.Evaluate(ctx, "user-1", detail.AttemptID)
	require.NoError(t, err)

	// Flip every option's correctness; the frozen result must not care.
	require.NoError(t, env.db.Model(&model.TaskOption{}).
		Where("task_id = ?", quiz.Tasks[0].ID).
		Update("is_correct", false).Error)

	second, err := env.evaluation.Evaluate(ctx, "user-1", detail.AttemptID)
	require.NoError(t, err)

	assert.Equal(t, first.TotalPercentage, second.TotalPercentage)
	assert.Equal(t, first.Results, second.Results)
	assert.WithinDuration(t, first.EvaluatedAt, second.EvaluatedAt, time.Second)
}

func TestEvaluatePersistsClozeItemCorrectness(t *testing.T) {
	env := newTestEnv(t)
	quiz := seedQuiz(t, env)
	ctx := context.Background()

	detail, _, err := env.attempts.StartOrResume(ctx, "user-1", quiz.ID)
	require.NoError(t, err)

	clozeTask := &quiz.Tasks[2]
	_, err = env.attempts.SaveAnswer(ctx, "user-1", detail.AttemptID, clozeTask.ID, AnswerUpsertRequest{
		Type: string(model.TaskCloze),
		ProvidedValues: []ClozeValueInput{
			{BlankID: clozeTask.Blanks[0].ID, Value: "make"},
			{BlankID: clozeTask.Blanks[1].ID, Value: "delete"},
		},
	})
	require.NoError(t, err)

	_, err = env.evaluation.Evaluate(ctx, "user-1", detail.AttemptID)
	require.NoError(t, err)

	var items []model.AnswerClozeItem
	require.NoError(t, env.db.Order("blank_id").Find(&items).Error)
	require.Len(t, items, 2)

	byBlank := make(map[string]*bool, len(items))
	for _, item := range items {
		byBlank[item.BlankID] = item.IsCorrect
	}
	require.NotNil(t, byBlank[clozeTask.Blanks[0].ID])
	assert.True(t, *byBlank[clozeTask.Blanks[0].ID])
	require.NotNil(t, byBlank[clozeTask.Blanks[1].ID])
	assert.False(t, *byBlank[clozeTask.Blanks[1].ID])
}

func TestEvaluateForeignAttempt(t *testing.T) {
	env := newTestEnv(t)
	quiz := seedQuiz(t, env)
	ctx := context.Background()

	detail, _, err := env.attempts.StartOrResume(ctx, "user-1", quiz.ID)
	require.NoError(t, err)

	_, err = env.evaluation.Evaluate(ctx, "intruder", detail.AttemptID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestEvaluateUnknownAttempt(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.evaluation.Evaluate(context.Background(), "user-1", "no-such-attempt")
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}
