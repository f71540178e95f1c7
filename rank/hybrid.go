package rank

import (
	"context"
	"fmt"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
	"github.com/rushteam/cinekit/recall"
)

// HybridNode 是混合排序 Node：
// blended = content_weight × content_score + neighbor_weight × neighbor_score。
//
// 权重对由 WeightTable 按用户交互数 n 分段给出，恒和为 1；
// 邻居源产出 InsufficientData 时强制 (1.0, 0.0)，优雅降级，请求不失败。
//
// - 写入 item.Score（混合分）与分量 features：content_weight / neighbor_weight
// - 写入 labels：weights_used、is_fallback（供 explain 与上层透出）
// - 不排序：规范排序与截断在 rerank.TopNNode（先过滤后排序）
type HybridNode struct {
	Table WeightTable
}

// NewHybridNode 创建混合排序 Node；表非法时返回 INVALID_CONFIG。
func NewHybridNode(table WeightTable) (*HybridNode, error) {
	if table == nil {
		table = DefaultWeightTable()
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &HybridNode{Table: table}, nil
}

func (n *HybridNode) Name() string        { return "rank.hybrid" }
func (n *HybridNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HybridNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	if rctx == nil {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInternalError,
			"rank: missing recommend context")
	}

	cw, nw := n.Table.WeightsFor(rctx.InteractionCount)

	// 打分源形态的穷尽分支
	isFallback := false
	if outcome, ok := recall.OutcomeOf(rctx, "content"); ok {
		switch outcome {
		case recall.OutcomeFallback:
			isFallback = true
		case recall.OutcomeScored:
		case recall.OutcomeInsufficientData:
			// 内容源没有数据不足的形态：索引在、热度在就总能打分
			return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInternalError,
				"rank: content scorer reported insufficient data")
		}
	}
	if outcome, ok := recall.OutcomeOf(rctx, "neighbor"); ok {
		switch outcome {
		case recall.OutcomeInsufficientData:
			cw, nw = 1, 0
		case recall.OutcomeScored, recall.OutcomeFallback:
		}
	}

	weightsLabel := utils.Label{
		Value:  fmt.Sprintf("content=%.2f,neighbor=%.2f", cw, nw),
		Source: "rank",
	}
	fallbackLabel := utils.Label{Value: fmt.Sprintf("%t", isFallback), Source: "rank"}

	for _, it := range items {
		if it == nil {
			continue
		}
		content := it.Feature("content_score")
		neighborScore := it.Feature("neighbor_score")

		it.Score = cw*content + nw*neighborScore
		it.PutFeature("content_weight", cw)
		it.PutFeature("neighbor_weight", nw)
		it.PutLabel("weights_used", weightsLabel)
		it.PutLabel("is_fallback", fallbackLabel)
	}
	return items, nil
}
