package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pipeline"
)

// TopNNode 是最终排序 + Top-N 截断节点，通常放在 pipeline 末尾。
//
// 排序规则（确定性，相同输入产出相同顺序）：
//  1. 混合分 Score 降序
//  2. 分数并列时按 popularity 降序
//  3. 再并列时按 ItemID 升序
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.HybridNode{...},     // 混合打分
//	        &rerank.TopNNode{N: 10},   // 排序 + 截取 Top 10
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量（Top N）
	// 如果 N <= 0，只排序不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		pa, pb := a.Popularity(), b.Popularity()
		if pa != pb {
			return pa > pb
		}
		return a.ID < b.ID
	})

	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}

	return items[:n.N], nil
}
