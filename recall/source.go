package recall

import (
	"context"

	"github.com/rushteam/cinekit/core"
)

// Outcome 标记一次打分的产出形态，Blender 据此做穷尽分支，
// 不用哨兵值（比如"分数全 0"）隐式表达失败。
type Outcome string

const (
	// OutcomeScored 正常打分
	OutcomeScored Outcome = "scored"

	// OutcomeFallback 冷启动兜底：分数来自热度信号而非相似度
	OutcomeFallback Outcome = "fallback"

	// OutcomeInsufficientData 行为数据不足，本源无产出；
	// Blender 对应把权重切到 content-only
	OutcomeInsufficientData Outcome = "insufficient_data"
)

// Result 是一个 Scorer 的产出：标记形态 + 物品分数（均在 [0,1]）。
// 不在 Scores 中的物品，该源对它无话可说（Blender 按 0 处理）。
type Result struct {
	Outcome Outcome
	Scores  map[string]float64
}

// Scorer 表示一个可复用的打分源（内容相似 / 邻居投票 / ...）。
// 可以把它理解为"可并发 fan-out 的策略单元"。
//
// 约定：数据不足时返回 INSUFFICIENT_DATA 的 DomainError（而非空结果），
// 由 Fanout 翻译成 OutcomeInsufficientData；其他错误原样上抛。
type Scorer interface {
	Name() string
	Score(ctx context.Context, rctx *core.RecommendContext) (*Result, error)
}

// outcomeParamKey 是 Fanout 写入 RecommendContext.Params 的 key 前缀，
// 下游（rank.HybridNode）按源名读取 Outcome。
const outcomeParamPrefix = "scorer_outcome:"

// OutcomeOf 从请求上下文读取某个打分源的 Outcome；未记录时返回 ("", false)。
func OutcomeOf(rctx *core.RecommendContext, source string) (Outcome, bool) {
	if rctx == nil || rctx.Params == nil {
		return "", false
	}
	v, ok := rctx.Params[outcomeParamPrefix+source]
	if !ok {
		return "", false
	}
	o, ok := v.(Outcome)
	return o, ok
}

// PutOutcome 记录某个打分源的 Outcome，自定义召回 Node 也可使用。
func PutOutcome(rctx *core.RecommendContext, source string, o Outcome) {
	if rctx.Params == nil {
		rctx.Params = make(map[string]any)
	}
	rctx.Params[outcomeParamPrefix+source] = o
}
