package recall

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/cinekit/core"
)

// NeighborScorer 是基于用户的协同打分源（User-based Collaborative Filtering）。
//
// 核心思想："兴趣相似的用户，喜欢相似的物品"
//
// 算法流程：
//  1. 目标用户交互行 vs 其他每个用户的交互行，在共同物品上算余弦相似度
//     （零重叠 ⇒ 相似度 0，永不未定义）
//  2. 取 TopK 邻居；并列时先比重叠数（大者优先），再比用户 id（小者优先），
//     保证确定性
//  3. 候选物品分 = 邻居强度的相似度加权平均（只统计真实交互过该物品的邻居），
//     截断到 [-1,1] 后经 (s+1)/2 映射到 [0,1]
//  4. 无任何邻居覆盖的物品不出现在结果里（Blender 的内容分量仍然生效）
//
// 数据不足（目标交互数 < MinInteractions，或有历史的其他用户数 < MinUsers）
// 时返回 INSUFFICIENT_DATA，可由 Blender 降级为 content-only，不致命。
type NeighborScorer struct {
	// Interactions 提供交互矩阵
	Interactions core.InteractionStore

	// TopK 参与投票的邻居数；可调常量，必须 > 0（见 Validate）
	TopK int

	// MinInteractions 目标用户的最小交互数，低于它不做邻居打分
	MinInteractions int

	// MinUsers 有交互历史的其他用户的最小数量
	MinUsers int
}

// NewNeighborScorer 按默认配置创建邻居打分源。
func NewNeighborScorer(interactions core.InteractionStore) *NeighborScorer {
	cfg := &core.DefaultScorerConfig{}
	return &NeighborScorer{
		Interactions:    interactions,
		TopK:            cfg.DefaultTopKNeighbors(),
		MinInteractions: cfg.DefaultMinInteractions(),
		MinUsers:        cfg.DefaultMinUsers(),
	}
}

func (s *NeighborScorer) Name() string {
	return "neighbor"
}

// Validate 校验可调参数；非法配置在构造/启动期失败，不进请求路径。
func (s *NeighborScorer) Validate() error {
	if s.Interactions == nil {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"recall: neighbor scorer requires an interaction store")
	}
	if s.TopK <= 0 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("recall: top_k must be > 0, got %d", s.TopK))
	}
	if s.MinInteractions < 0 || s.MinUsers < 0 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"recall: min_interactions and min_users must be >= 0")
	}
	return nil
}

// neighbor 是一个带相似度权重的邻居。
type neighbor struct {
	userID  string
	sim     float64
	overlap int
	row     map[string]float64
}

func (s *NeighborScorer) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) (*Result, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInternalError,
			"recall: neighbor scorer needs a user")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	targetRow, err := s.Interactions.Row(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	if len(targetRow) < s.MinInteractions {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInsufficientData,
			fmt.Sprintf("recall: user %q has %d interactions, need %d",
				rctx.UserID, len(targetRow), s.MinInteractions))
	}

	users, err := s.Interactions.Users(ctx)
	if err != nil {
		return nil, err
	}

	neighbors := make([]neighbor, 0, len(users))
	others := 0
	for _, userID := range users {
		if userID == rctx.UserID {
			continue
		}
		row, err := s.Interactions.Row(ctx, userID)
		if err != nil || len(row) == 0 {
			continue
		}
		others++

		sim, overlap := rowSimilarity(targetRow, row)
		if sim > 0 {
			neighbors = append(neighbors, neighbor{
				userID:  userID,
				sim:     sim,
				overlap: overlap,
				row:     row,
			})
		}
	}
	if others < s.MinUsers {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInsufficientData,
			fmt.Sprintf("recall: only %d other users with history, need %d", others, s.MinUsers))
	}

	// TopK：相似度降序；并列先比重叠数，再比用户 id
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].sim != neighbors[j].sim {
			return neighbors[i].sim > neighbors[j].sim
		}
		if neighbors[i].overlap != neighbors[j].overlap {
			return neighbors[i].overlap > neighbors[j].overlap
		}
		return neighbors[i].userID < neighbors[j].userID
	})
	if len(neighbors) > s.TopK {
		neighbors = neighbors[:s.TopK]
	}

	// 加权投票：score = Σ(sim×strength) / Σ|sim|，只统计真实交互过的邻居
	votes := make(map[string]float64)
	weights := make(map[string]float64)
	for _, nb := range neighbors {
		for itemID, strength := range nb.row {
			votes[itemID] += nb.sim * strength
			weights[itemID] += math.Abs(nb.sim)
		}
	}

	scores := make(map[string]float64, len(votes))
	for itemID, v := range votes {
		w := weights[itemID]
		if w == 0 {
			continue
		}
		avg := v / w
		// 强度约定在 [-1, +2]，平均后截断回 [-1,1] 再线性映射到 [0,1]
		avg = math.Max(-1, math.Min(1, avg))
		scores[itemID] = (avg + 1) / 2
	}

	return &Result{Outcome: OutcomeScored, Scores: scores}, nil
}

// rowSimilarity 在两行的共同物品上计算余弦相似度，并返回重叠数。
// 没有共同物品时相似度为 0。
func rowSimilarity(a, b map[string]float64) (float64, int) {
	var dot, normA, normB float64
	overlap := 0
	for itemID, va := range a {
		vb, ok := b[itemID]
		if !ok {
			continue
		}
		overlap++
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}
	if overlap == 0 || normA == 0 || normB == 0 {
		return 0, overlap
	}
	// 单次 Sqrt：Sqrt(a)*Sqrt(b) 会引入 ULP 级误差，使完全一致的两行
	// 得到 1.0000000000000002 之类的相似度，破坏并列判定
	return dot / math.Sqrt(normA*normB), overlap
}
