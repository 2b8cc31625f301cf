package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-qa-api/internal/application/answer"
	"campus-qa-api/internal/application/search"
	"campus-qa-api/internal/domain/entity"
	"campus-qa-api/internal/interfaces/http/dto"

	apperrors "campus-qa-api/pkg/errors"
)

type stubAnswerer struct {
	result    answer.Result
	err       error
	debug     search.AggregateResponse
	debugErr  error
	questions []string
}

func (s *stubAnswerer) Answer(_ context.Context, q string) (answer.Result, error) {
	s.questions = append(s.questions, q)
	return s.result, s.err
}

func (s *stubAnswerer) DebugSearch(_ context.Context, q string) (search.AggregateResponse, error) {
	s.questions = append(s.questions, q)
	return s.debug, s.debugErr
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAskRouter(a Answerer) *gin.Engine {
	r := gin.New()
	h := NewAskHandler(a)
	r.POST("/ask", h.Ask)
	r.POST("/debug-search", h.DebugSearch)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAskHandler_Ask(t *testing.T) {
	t.Run("answer", func(t *testing.T) {
		stub := &stubAnswerer{result: answer.Result{Answer: "Rules: Dress code.", Source: answer.SourceFallback}}
		w := post(newAskRouter(stub), "/ask", `{"question":"  what are the rules  "}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.AskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Rules: Dress code.", resp.Answer)
		assert.Equal(t, "fallback", w.Header().Get(AnswerHeader))
		assert.Equal(t, []string{"what are the rules"}, stub.questions)
	})

	t.Run("bad requests", func(t *testing.T) {
		for name, body := range map[string]string{
			"missing question": `{}`,
			"blank question":   `{"question":"   "}`,
			"malformed json":   `{"question":`,
			"wrong type":       `{"question":42}`,
		} {
			t.Run(name, func(t *testing.T) {
				stub := &stubAnswerer{}
				w := post(newAskRouter(stub), "/ask", body)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Empty(t, stub.questions)
			})
		}
	})

	t.Run("unexpected failure returns apology", func(t *testing.T) {
		stub := &stubAnswerer{err: apperrors.Wrap(errors.New("db gone"), apperrors.CodeInternalError, "boom")}
		w := post(newAskRouter(stub), "/ask", `{"question":"hello"}`)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var resp dto.AskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, answer.Apology, resp.Answer)
		assert.NotContains(t, w.Body.String(), "db gone")
	})
}

func TestAskHandler_DebugSearch(t *testing.T) {
	t.Run("results", func(t *testing.T) {
		stub := &stubAnswerer{debug: search.AggregateResponse{{
			Table:    entity.TableRules,
			Priority: 6,
			Results: []search.SearchResult{{
				Table:          entity.TableRules,
				Data:           entity.Row{"title": "Dress code"},
				MatchType:      search.MatchSpecialized,
				RelevanceScore: search.SpecializedScore,
			}},
		}}}
		w := post(newAskRouter(stub), "/debug-search", `{"question":"rules"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Question string `json:"question"`
			Results  []struct {
				Table   string `json:"table"`
				Results []struct {
					RelevanceScore int            `json:"relevance_score"`
					Data           map[string]any `json:"data"`
				} `json:"results"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "rules", body.Question)
		require.Len(t, body.Results, 1)
		assert.Equal(t, "rules", body.Results[0].Table)
		require.Len(t, body.Results[0].Results, 1)
		assert.Equal(t, search.SpecializedScore, body.Results[0].Results[0].RelevanceScore)
		assert.Equal(t, "Dress code", body.Results[0].Results[0].Data["title"])
	})

	t.Run("empty results encode as array", func(t *testing.T) {
		w := post(newAskRouter(&stubAnswerer{debug: search.AggregateResponse{}}), "/debug-search", `{"question":"xyz"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"question":"xyz","results":[]}`, w.Body.String())
	})

	t.Run("search error", func(t *testing.T) {
		stub := &stubAnswerer{debugErr: apperrors.Wrap(errors.New("nil repo"), apperrors.CodeInternalError, "campus search is not configured")}
		w := post(newAskRouter(stub), "/debug-search", `{"question":"rules"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "campus search is not configured")
		assert.Contains(t, w.Body.String(), `"error_code":"1007"`)
		assert.NotContains(t, w.Body.String(), "nil repo")
	})

	t.Run("plain error reported as search failure", func(t *testing.T) {
		stub := &stubAnswerer{debugErr: errors.New("pq: relation does not exist")}
		w := post(newAskRouter(stub), "/debug-search", `{"question":"rules"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apperrors.ErrRetrievalFailed.Message, body.Message)
		require.NotNil(t, body.Error)
		assert.Equal(t, string(apperrors.CodeRetrievalFailed), body.Error.ErrorCode)
		assert.NotContains(t, w.Body.String(), "relation does not exist")
	})

	t.Run("bad request", func(t *testing.T) {
		w := post(newAskRouter(&stubAnswerer{}), "/debug-search", `not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error_code":"1001"`)
	})
}
