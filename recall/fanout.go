package recall

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/utils"
)

// Fanout 是打分阶段的 Node：并发执行全部打分源，把各源分数合并到候选集上。
//
// 候选集 = 当前索引内的全部物品（目录即候选）；每个源的分数写入
// Features["{源名}_score"]，产出形态（Scored/Fallback/InsufficientData）
// 记入请求上下文，供 rank.HybridNode 做穷尽分支。
//
// INSUFFICIENT_DATA 在这里被吸收为该源的空产出 + 形态标记，不中断请求；
// 其他错误原样上抛（单用户打分失败不应被悄悄吞掉）。
type Fanout struct {
	// Index 决定候选集与热度元信息
	Index *feature.Handle

	// Sources 是参与打分的源
	Sources []Scorer

	// Timeout 单个源的超时（0 表示不限制）
	Timeout time.Duration
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if n.Index == nil || len(n.Sources) == 0 {
		return nil, nil
	}
	idx := n.Index.Load()
	if idx == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInternalError,
			"recall: feature index not built")
	}

	var (
		mu      sync.Mutex
		results = make(map[string]*Result, len(n.Sources))
		eg, _   = errgroup.WithContext(ctx)
	)

	for _, src := range n.Sources {
		s := src
		eg.Go(func() error {
			scoreCtx := ctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				scoreCtx, cancel = context.WithTimeout(ctx, n.Timeout)
				defer cancel()
			}

			res, err := s.Score(scoreCtx, rctx)
			if err != nil {
				if core.IsInsufficientData(err) {
					// 可降级：该源无产出，由 Blender 调权兜底
					res = &Result{Outcome: OutcomeInsufficientData}
				} else {
					return err
				}
			}

			mu.Lock()
			results[s.Name()] = res
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 形态记入上下文（typed Params + explain Label 双写）
	for name, res := range results {
		PutOutcome(rctx, name, res.Outcome)
		rctx.PutLabel("scorer:"+name, utils.Label{Value: string(res.Outcome), Source: "recall"})
	}

	// 合并：候选集 = 索引内全部物品，分量缺省为 0
	out := make([]*core.Item, 0, idx.Len())
	for _, itemID := range idx.Items() {
		it := core.NewItem(itemID)
		it.Meta["popularity"] = idx.PopularityOf(itemID)
		for name, res := range results {
			if res.Scores == nil {
				continue
			}
			if score, ok := res.Scores[itemID]; ok {
				it.PutFeature(name+"_score", score)
			}
		}
		out = append(out, it)
	}
	return out, nil
}
