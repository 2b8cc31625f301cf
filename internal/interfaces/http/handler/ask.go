// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"campus-qa-api/internal/application/answer"
	"campus-qa-api/internal/application/search"
	"campus-qa-api/internal/interfaces/http/dto"
	"campus-qa-api/pkg/logger"

	apperrors "campus-qa-api/pkg/errors"
)

// AnswerHeader 响应头：回答来源（greeting / ai / fallback）
const AnswerHeader = "X-Answer-Source"

// Answerer 问答能力
type Answerer interface {
	Answer(ctx context.Context, question string) (answer.Result, error)
	DebugSearch(ctx context.Context, question string) (search.AggregateResponse, error)
}

// AskHandler 问答处理器
type AskHandler struct {
	answerer Answerer
}

// NewAskHandler 创建问答处理器
func NewAskHandler(answerer Answerer) *AskHandler {
	return &AskHandler{answerer: answerer}
}

// Ask 回答校园问题
// @Summary 提问
// @Description 检索校园数据并生成回答，大模型不可用时返回模板回答
// @Tags QA
// @Accept json
// @Produce json
// @Param body body dto.AskRequest true "提问请求"
// @Success 200 {object} dto.AskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.AskResponse
// @Router /ask [post]
func (h *AskHandler) Ask(c *gin.Context) {
	q, ok := bindQuestion(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result, err := h.answerer.Answer(ctx, q)
	if err != nil {
		logger.Error(ctx, "failed to answer question", err, "question", q)
		dto.Apology(c, answer.Apology)
		return
	}

	c.Header(AnswerHeader, string(result.Source))
	c.JSON(http.StatusOK, dto.AskResponse{Answer: result.Answer})
}

// DebugSearch 返回原始检索结果
// @Summary 检索调试
// @Description 返回各数据表的检索结果与相关度，不调用大模型
// @Tags QA
// @Accept json
// @Produce json
// @Param body body dto.AskRequest true "提问请求"
// @Success 200 {object} dto.DebugSearchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /debug-search [post]
func (h *AskHandler) DebugSearch(c *gin.Context) {
	q, ok := bindQuestion(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	results, err := h.answerer.DebugSearch(ctx, q)
	if err != nil {
		logger.Error(ctx, "debug search failed", err, "question", q)
		appErr := apperrors.ErrRetrievalFailed
		if apperrors.IsAppError(err) {
			appErr = apperrors.AsAppError(err)
		}
		dto.AppError(c, appErr)
		return
	}

	c.JSON(http.StatusOK, dto.DebugSearchResponse{Question: q, Results: results})
}

// bindQuestion 解析请求体，缺失、空白或格式错误时写入 400 并返回 false
func bindQuestion(c *gin.Context) (string, bool) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorWithDetail(c, apperrors.ErrInvalidParam.HTTPStatus, apperrors.ErrInvalidParam.Message, &dto.ErrorDetail{
			ErrorCode: string(apperrors.ErrInvalidParam.Code),
			Details:   err.Error(),
		})
		return "", false
	}

	q := strings.TrimSpace(req.Question)
	if q == "" {
		dto.BadRequest(c, "question is required")
		return "", false
	}
	return q, true
}
