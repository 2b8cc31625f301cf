// Package dto 提供 HTTP 层数据传输对象
package dto

import "campus-qa-api/internal/application/search"

// AskRequest 提问请求
type AskRequest struct {
	Question string `json:"question" binding:"required,max=2000"`
}

// AskResponse 回答响应；降级回答同样以 200 返回
type AskResponse struct {
	Answer string `json:"answer"`
}

// DebugSearchResponse 检索调试响应
type DebugSearchResponse struct {
	Question string                   `json:"question"`
	Results  search.AggregateResponse `json:"results"`
}
