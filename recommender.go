package cinekit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/filter"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/rank"
	"github.com/rushteam/cinekit/recall"
	"github.com/rushteam/cinekit/rerank"
)

// Recommender 是开箱即用的入口：组装标准 pipeline
// （并发打分 → 已看过滤 → 混合排序 → Top-N），输出带因子分解的推荐列表。
//
// 需要更灵活的编排（自定义 Node、配置驱动）时，直接使用 pipeline 包。
type Recommender struct {
	index        *feature.Handle
	interactions core.InteractionStore
	table        rank.WeightTable
	neighbor     *recall.NeighborScorer
	logger       zerolog.Logger
}

// Option 配置 Recommender。
type Option func(*Recommender)

// WithWeightTable 覆盖默认分段权重表。
func WithWeightTable(t rank.WeightTable) Option {
	return func(r *Recommender) { r.table = t }
}

// WithTopKNeighbors 覆盖参与投票的邻居数。
func WithTopKNeighbors(k int) Option {
	return func(r *Recommender) { r.neighbor.TopK = k }
}

// WithMinInteractions 覆盖邻居打分要求的目标用户最小交互数。
func WithMinInteractions(n int) Option {
	return func(r *Recommender) { r.neighbor.MinInteractions = n }
}

// WithMinUsers 覆盖邻居打分要求的最小有历史用户数。
func WithMinUsers(n int) Option {
	return func(r *Recommender) { r.neighbor.MinUsers = n }
}

// WithLogger 注入结构化日志。
func WithLogger(l zerolog.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// NewRecommender 创建推荐器。所有可调参数在这里一次性校验，
// 非法配置返回 INVALID_CONFIG，不会进入请求路径。
func NewRecommender(index *feature.Handle, interactions core.InteractionStore, opts ...Option) (*Recommender, error) {
	if index == nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"cinekit: recommender requires a feature index handle")
	}
	if interactions == nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"cinekit: recommender requires an interaction store")
	}

	r := &Recommender{
		index:        index,
		interactions: interactions,
		table:        DefaultWeightTable(),
		neighbor:     recall.NewNeighborScorer(interactions),
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.table.Validate(); err != nil {
		return nil, err
	}
	if err := r.neighbor.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// recommendOptions 是单次请求的选项。
type recommendOptions struct {
	excludeSeen bool
	scene       string
}

// RecommendOption 配置单次推荐请求。
type RecommendOption func(*recommendOptions)

// WithExcludeSeen 控制是否过滤用户已交互过的物品（默认 true）。
func WithExcludeSeen(exclude bool) RecommendOption {
	return func(o *recommendOptions) { o.excludeSeen = exclude }
}

// WithScene 标记请求场景（首页/详情页等），透传给 Labels 与 DSL 规则。
func WithScene(scene string) RecommendOption {
	return func(o *recommendOptions) { o.scene = scene }
}

// Recommend 为用户生成 Top-N 推荐。
//
// 流程：
//  1. 取一次交互行，写入请求上下文（InteractionCount 驱动权重分段，
//     行数据被内容源与已看过滤复用）
//  2. 并发执行 content / neighbor 两个打分源
//  3. 混合排序：blended = cw×content + nw×neighbor；
//     邻居数据不足时降级为 content-only，冷启动时内容分来自热度兜底
//  4. 排序 + 截断，输出带因子分解的推荐
//
// topN <= 0 表示不截断。
func (r *Recommender) Recommend(
	ctx context.Context,
	userID string,
	topN int,
	opts ...RecommendOption,
) ([]core.Recommendation, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInternalError,
			"cinekit: user id is required")
	}

	o := &recommendOptions{excludeSeen: true}
	for _, opt := range opts {
		opt(o)
	}

	row, err := r.interactions.Row(ctx, userID)
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{
		UserID:           userID,
		Scene:            o.scene,
		InteractionCount: len(row),
		Params: map[string]any{
			filter.RowParamKey: row,
			"top_n":            topN,
		},
	}

	hybrid, err := rank.NewHybridNode(r.table)
	if err != nil {
		return nil, err
	}

	nodes := []pipeline.Node{
		&recall.Fanout{
			Index: r.index,
			Sources: []recall.Scorer{
				&recall.ContentScorer{Index: r.index, Interactions: r.interactions},
				r.neighbor,
			},
		},
	}
	if o.excludeSeen {
		nodes = append(nodes, &filter.FilterNode{
			Filters: []filter.Filter{&filter.SeenFilter{Store: r.interactions}},
		})
	}
	nodes = append(nodes, hybrid, &rerank.TopNNode{N: topN})

	items, err := (&pipeline.Pipeline{Nodes: nodes}).Run(ctx, rctx, nil)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("recommend failed")
		return nil, err
	}

	recs := make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		recs = append(recs, core.Recommendation{
			ItemID: it.ID,
			Score:  it.Score,
			Factors: core.Factors{
				ContentScore:   it.Feature("content_score"),
				NeighborScore:  it.Feature("neighbor_score"),
				ContentWeight:  it.Feature("content_weight"),
				NeighborWeight: it.Feature("neighbor_weight"),
				IsFallback:     isFallback(it),
			},
		})
	}

	r.logger.Debug().
		Str("user_id", userID).
		Int("interaction_count", rctx.InteractionCount).
		Int("results", len(recs)).
		Msg("recommend done")

	return recs, nil
}

func isFallback(it *core.Item) bool {
	if it.Labels == nil {
		return false
	}
	lbl, ok := it.Labels["is_fallback"]
	return ok && lbl.Value == "true"
}

// DefaultWeightTable 暴露默认分段权重表，便于调用方在其上微调。
func DefaultWeightTable() rank.WeightTable {
	return rank.DefaultWeightTable()
}
