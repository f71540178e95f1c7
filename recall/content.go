package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
)

// ContentScorer 是基于内容的打分源（Content-Based Scoring）。
//
// 核心思想："用户喜欢具有某些特征的物品，给具有相似特征的其他物品打高分"
//
// 算法流程：
//  1. 取用户交互行中强度 > 0 的物品（喜欢集）
//  2. 口味向量 = 喜欢集物品向量的等权均值
//     （等权是刻意为之：与索引一起构成喜欢集的纯函数，结果可复现；
//     不做时间衰减）
//  3. 对索引内每个物品计算 cosine(口味向量, 物品向量)，负值截断为 0
//     （负相关在本域不代表"更不喜欢"，只代表无关）
//
// 冷启动：喜欢集为空时退化为热度兜底——分数 = 归一化热度 ∈ [0,1]，
// Outcome 标记为 Fallback，Blender 据此向上层透出 is_fallback。
//
// 确定性：相同喜欢集 + 相同索引 ⇒ 相同分数（喜欢集按 id 排序后求和，
// 浮点累加顺序固定）。
type ContentScorer struct {
	// Index 是特征索引句柄；每次打分取一次快照，全程使用同一份
	Index *feature.Handle

	// Interactions 提供用户交互行
	Interactions core.InteractionStore
}

func (s *ContentScorer) Name() string {
	return "content"
}

func (s *ContentScorer) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) (*Result, error) {
	if s.Index == nil || s.Interactions == nil || rctx == nil || rctx.UserID == "" {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInternalError,
			"recall: content scorer not wired")
	}
	idx := s.Index.Load()
	if idx == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInternalError,
			"recall: feature index not built")
	}

	row, err := s.Interactions.Row(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}

	// 喜欢集：强度 > 0 且仍在当前索引中（目录换代后消失的物品直接忽略）
	liked := make([]string, 0, len(row))
	for itemID, strength := range row {
		if strength > 0 && idx.Has(itemID) {
			liked = append(liked, itemID)
		}
	}

	if len(liked) == 0 {
		return s.fallback(idx), nil
	}

	sort.Strings(liked)
	taste := make(feature.SparseVector)
	for _, itemID := range liked {
		vec, err := idx.VectorOf(itemID)
		if err != nil {
			return nil, err
		}
		for id, w := range vec {
			taste[id] += w
		}
	}
	// 均值只是整体缩放，cosine 对缩放不敏感，这里除不除都不改变分数；
	// 保留除法让 taste 语义上就是质心
	n := float64(len(liked))
	for id := range taste {
		taste[id] /= n
	}

	scores := make(map[string]float64, idx.Len())
	for _, itemID := range idx.Items() {
		vec, err := idx.VectorOf(itemID)
		if err != nil {
			return nil, err
		}
		scores[itemID] = math.Max(0, feature.Cosine(taste, vec))
	}

	return &Result{Outcome: OutcomeScored, Scores: scores}, nil
}

// fallback 冷启动兜底：归一化热度即分数。
func (s *ContentScorer) fallback(idx *feature.Index) *Result {
	scores := make(map[string]float64, idx.Len())
	for _, itemID := range idx.Items() {
		scores[itemID] = idx.NormalizedPopularity(itemID)
	}
	return &Result{Outcome: OutcomeFallback, Scores: scores}
}
