package controller

import (
	"quizlab_backend/internal/model"
	"quizlab_backend/internal/service"
	"quizlab_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Attempts    *service.AttemptService
	Evaluations *service.EvaluationService
}

func NewAttemptController(attempts *service.AttemptService, evaluations *service.EvaluationService) *AttemptController {
	return &AttemptController{Attempts: attempts, Evaluations: evaluations}
}

// Start opens an attempt against a completed quiz, or resumes the caller's
// open attempt if one exists. A fresh attempt answers 201, a resumed one 200
// with the saved answers replayed.
func (c *AttemptController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, isNew, err := c.Attempts.StartOrResume(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}

	if isNew {
		util.Created(ctx, detail)
		return
	}
	util.Success(ctx, detail)
}

func (c *AttemptController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status := model.AttemptStatus(ctx.Query("status"))
	if status != "" && status != model.AttemptInProgress && status != model.AttemptEvaluated {
		util.BadRequest(ctx, "invalid status filter")
		return
	}

	items, err := c.Attempts.List(user.UserID, ctx.Query("quizId"), status)
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": items, "total": len(items)})
}

func (c *AttemptController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.Attempts.Get(user.UserID, ctx.Param("id"))
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// SaveAnswer upserts the caller's answer for one task of an open attempt.
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AnswerUpsertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	saved, err := c.Attempts.SaveAnswer(ctx.Request.Context(), user.UserID, ctx.Param("id"), ctx.Param("taskId"), req)
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}

	util.Success(ctx, saved)
}

type correctnessRequest struct {
	IsCorrect *bool `json:"isCorrect" binding:"required"`
}

// SetCorrectness records the manual grading flag on a free text answer.
func (c *AttemptController) SetCorrectness(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req correctnessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Attempts.SetFreeTextCorrectness(ctx.Request.Context(), user.UserID, ctx.Param("id"), ctx.Param("taskId"), *req.IsCorrect); err != nil {
		util.ServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"updated": true})
}

// Evaluate finalizes the attempt and returns the scored breakdown. Calling
// it again serves the frozen result unchanged.
func (c *AttemptController) Evaluate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Evaluations.Evaluate(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.ServiceError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
