package search

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"campus-qa-api/internal/application/question"
	"campus-qa-api/internal/domain/repository"
	"campus-qa-api/pkg/logger"
	"campus-qa-api/pkg/metrics"
	"campus-qa-api/pkg/tracer"
)

const (
	defaultVariantLimit   = 10
	defaultBucketSize     = 5
	defaultProfessorLimit = 25

	branchSpecialized = "specialized"
	branchGeneric     = "generic"
)

// Options 检索引擎参数
type Options struct {
	// VariantLimit 每个通用查询变体最多返回的行数
	VariantLimit int
	// BucketSize 通用分支每张表保留的结果数
	BucketSize int
	// ProfessorLimit 未按院系过滤时的教师行数上限
	ProfessorLimit int
	// QueryTimeout 单表分支超时，0 表示不设超时
	QueryTimeout time.Duration
}

// Engine 多源并发检索引擎（scatter-gather）
type Engine struct {
	repo    repository.CampusRepository
	catalog Catalog
	opts    Options
}

// NewEngine 创建检索引擎，catalog 为空时使用默认目录
func NewEngine(repo repository.CampusRepository, catalog Catalog, opts Options) *Engine {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	if opts.VariantLimit <= 0 {
		opts.VariantLimit = defaultVariantLimit
	}
	if opts.BucketSize <= 0 {
		opts.BucketSize = defaultBucketSize
	}
	if opts.ProfessorLimit <= 0 {
		opts.ProfessorLimit = defaultProfessorLimit
	}
	return &Engine{
		repo:    repo,
		catalog: catalog,
		opts:    opts,
	}
}

// Catalog 返回引擎使用的数据源目录
func (e *Engine) Catalog() Catalog {
	return e.catalog
}

// Search 对每张表并发检索，等待全部分支完成后按优先级聚合。
// 单个分支失败只记录日志，不影响其它分支，也不会向调用方返回错误。
func (e *Engine) Search(ctx context.Context, a question.Analysis) (AggregateResponse, error) {
	if e == nil || e.repo == nil {
		return nil, ErrRepositoryRequired
	}

	ctx, span := tracer.Start(ctx, "search.Engine.Search",
		trace.WithAttributes(
			attribute.String("search.intent", string(a.Intent)),
			attribute.Int("search.keywords", len(a.Keywords)),
		))
	defer span.End()

	start := time.Now()
	specialized := strategiesFor(a.Intent)
	buckets := make([]ResultBucket, len(e.catalog))

	var g errgroup.Group
	for i, table := range e.catalog {
		g.Go(func() error {
			buckets[i] = e.searchTable(ctx, table, a, specialized[table.Name])
			return nil
		})
	}
	_ = g.Wait()

	resp := Aggregate(buckets)
	metrics.SearchDuration.WithLabelValues(string(a.Intent)).Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("search.buckets", len(resp)),
		attribute.Int("search.results", resp.TotalResults()),
	)
	return resp, nil
}

// searchTable 执行单表分支，任何失败都降级为空桶
func (e *Engine) searchTable(ctx context.Context, table TableDescriptor, a question.Analysis, strat strategy) (bucket ResultBucket) {
	bucket = ResultBucket{Table: table.Name, Priority: table.Priority}

	branch := branchGeneric
	if strat != nil {
		branch = branchSpecialized
	}

	ctx, span := tracer.Start(ctx, "search.table."+table.Name,
		trace.WithAttributes(attribute.String("search.branch", branch)))
	defer span.End()

	if e.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.QueryTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in %s branch: %v", table.Name, r)
			span.RecordError(err)
			logger.Error(ctx, "search branch panicked", err, "table", table.Name, "branch", branch)
			metrics.SearchBranchTotal.WithLabelValues(table.Name, branch, "error").Inc()
			bucket.Results = nil
		}
	}()

	var (
		results []SearchResult
		err     error
		limit   int
	)
	if strat != nil {
		results, err = strat(ctx, e, table, a)
	} else {
		results, err = e.genericSearch(ctx, table, a)
		limit = e.opts.BucketSize
	}
	if err != nil {
		span.RecordError(err)
		logger.Warn(ctx, "search branch failed, treating as empty",
			"table", table.Name,
			"branch", branch,
			"error", err.Error(),
		)
		metrics.SearchBranchTotal.WithLabelValues(table.Name, branch, "error").Inc()
		return bucket
	}

	bucket.Results = rankBucket(results, limit)
	status := "hit"
	if bucket.Empty() {
		status = "empty"
	}
	metrics.SearchBranchTotal.WithLabelValues(table.Name, branch, status).Inc()
	span.SetAttributes(attribute.Int("search.rows", len(bucket.Results)))
	return bucket
}

// variant 通用分支的一个查询变体
type variant struct {
	index int
	term  string
	match MatchType
}

// genericVariants 构造查询变体：整句短语、首个关键词、首个长度大于 2 的问句词，
// 以及每个关键词各一个。空词与重复词跳过，但保留其原始位置用于打分衰减。
func genericVariants(a question.Analysis) []variant {
	candidates := []variant{
		{index: 0, term: a.Phrase(), match: MatchExact},
		{index: 1, term: a.Keywords.First(), match: MatchKeyword},
		{index: 2, term: question.FirstQuestionWord(a.Question), match: MatchPartial},
	}
	for i, kw := range a.Keywords {
		candidates = append(candidates, variant{index: 3 + i, term: kw, match: MatchKeyword})
	}

	// 重复词产生的行一定先由更靠前的变体命中，去重时只会保留前者
	seen := make(map[string]struct{}, len(candidates))
	out := make([]variant, 0, len(candidates))
	for _, v := range candidates {
		if v.term == "" {
			continue
		}
		if _, ok := seen[v.term]; ok {
			continue
		}
		seen[v.term] = struct{}{}
		out = append(out, v)
	}
	return out
}

// genericSearch 并发执行所有查询变体，按变体顺序拼接结果
func (e *Engine) genericSearch(ctx context.Context, table TableDescriptor, a question.Analysis) ([]SearchResult, error) {
	variants := genericVariants(a)
	if len(variants) == 0 {
		return nil, nil
	}

	perVariant := make([][]SearchResult, len(variants))
	failed := make([]bool, len(variants))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range variants {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					failed[i] = true
					perVariant[i] = nil
					logger.Error(gctx, "search variant panicked", fmt.Errorf("%v", r),
						"table", table.Name,
						"variant", v.index,
					)
				}
			}()

			rows, err := e.repo.SearchColumns(gctx, table.Name, table.SearchableColumns, v.term, e.opts.VariantLimit)
			if err != nil {
				failed[i] = true
				logger.Warn(gctx, "search variant failed",
					"table", table.Name,
					"variant", v.index,
					"error", err.Error(),
				)
				metrics.SearchVariantFailures.WithLabelValues(table.Name).Inc()
				return nil
			}
			score := Score(table.Priority, v.match, v.index)
			results := make([]SearchResult, 0, len(rows))
			for _, row := range rows {
				results = append(results, SearchResult{
					Table:          table.Name,
					Data:           row,
					MatchType:      v.match,
					RelevanceScore: score,
				})
			}
			perVariant[i] = results
			return nil
		})
	}
	_ = g.Wait()

	allFailed := true
	for _, f := range failed {
		if !f {
			allFailed = false
			break
		}
	}
	if allFailed {
		return nil, ErrAllVariantsFailed
	}

	var out []SearchResult
	for _, rs := range perVariant {
		out = append(out, rs...)
	}
	return out, nil
}
