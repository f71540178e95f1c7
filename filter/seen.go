package filter

import (
	"context"

	"github.com/rushteam/cinekit/core"
)

// RowParamKey 是请求上下文里预取交互行的 key。
// 入口（Recommender）已经为权重分段取过一次行，SeenFilter 直接复用，
// 避免每个候选都打一次存储。
const RowParamKey = "interaction_row"

// SeenFilter 过滤用户已经交互过的物品（看过即排除，无论喜欢与否）。
//
// 交互行来源优先级：
//  1. rctx.Params[RowParamKey]（入口预取）
//  2. Store 现查
type SeenFilter struct {
	Store core.InteractionStore
}

func (f *SeenFilter) Name() string {
	return "filter.seen"
}

func (f *SeenFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	row := rowFromContext(rctx)
	if row == nil {
		if f.Store == nil {
			return false, nil
		}
		fetched, err := f.Store.Row(ctx, rctx.UserID)
		if err != nil {
			return false, err
		}
		row = fetched
		// 回写，后续候选不再查询
		if rctx.Params == nil {
			rctx.Params = make(map[string]any)
		}
		rctx.Params[RowParamKey] = row
	}

	_, seen := row[item.ID]
	return seen, nil
}

func rowFromContext(rctx *core.RecommendContext) map[string]float64 {
	if rctx.Params == nil {
		return nil
	}
	row, ok := rctx.Params[RowParamKey].(map[string]float64)
	if !ok {
		return nil
	}
	return row
}
