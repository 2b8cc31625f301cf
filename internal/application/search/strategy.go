package search

import (
	"context"

	"campus-qa-api/internal/application/question"
	"campus-qa-api/internal/domain/entity"
)

// strategy 专用分支：针对某张表的意图驱动查询，分数固定
type strategy func(ctx context.Context, e *Engine, table TableDescriptor, a question.Analysis) ([]SearchResult, error)

// strategyRegistry 意图 -> 表名 -> 专用查询。
// 每次检索按意图选出一张表映射，未登记的表走通用分支。
var strategyRegistry = map[question.Intent]map[string]strategy{
	question.IntentRules:      {entity.TableRules: listAllStrategy},
	question.IntentProfessors: {entity.TableProfessors: professorsStrategy},
	question.IntentBuildings:  {entity.TableBuildings: listAllStrategy},
	question.IntentRooms:      {entity.TableRooms: roomsStrategy},
}

func strategiesFor(intent question.Intent) map[string]strategy {
	return strategyRegistry[intent]
}

func listAllStrategy(ctx context.Context, e *Engine, table TableDescriptor, _ question.Analysis) ([]SearchResult, error) {
	rows, err := e.repo.ListAll(ctx, table.Name, 0)
	if err != nil {
		return nil, err
	}
	return specializedResults(table.Name, rows, SpecializedScore), nil
}

func professorsStrategy(ctx context.Context, e *Engine, table TableDescriptor, a question.Analysis) ([]SearchResult, error) {
	if code := a.Entities.DepartmentCode; code != "" {
		rows, err := e.repo.ListProfessorsByDepartment(ctx, code)
		if err != nil {
			return nil, err
		}
		return specializedResults(table.Name, rows, SpecializedScore), nil
	}

	rows, err := e.repo.ListAll(ctx, table.Name, e.opts.ProfessorLimit)
	if err != nil {
		return nil, err
	}
	return specializedResults(table.Name, rows, UnfilteredProfessorScore), nil
}

func roomsStrategy(ctx context.Context, e *Engine, table TableDescriptor, a question.Analysis) ([]SearchResult, error) {
	rows, err := e.repo.ListRooms(ctx, a.Entities.RoomNumber)
	if err != nil {
		return nil, err
	}
	return specializedResults(table.Name, rows, SpecializedScore), nil
}

func specializedResults(table string, rows []entity.Row, score int) []SearchResult {
	out := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, SearchResult{
			Table:          table,
			Data:           row,
			MatchType:      MatchSpecialized,
			RelevanceScore: score,
		})
	}
	return out
}
