package filter

import (
	"context"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/pkg/dsl"
)

// RuleFilter 是表达式驱动的过滤器：CEL 表达式命中（true）的物品被剔除。
//
// 示例：
//
//	// 剔除兜底产出里混合分过低的候选
//	&filter.RuleFilter{Expr: `label.is_fallback == "true" && item.score < 0.05`}
type RuleFilter struct {
	Expr string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}
