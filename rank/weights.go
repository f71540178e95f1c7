package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/cinekit/core"
)

// Tier 是权重表的一段：交互数 n >= MinCount 时适用的权重对。
type Tier struct {
	MinCount int     `yaml:"min_count" json:"min_count"`
	Content  float64 `yaml:"content" json:"content"`
	Neighbor float64 `yaml:"neighbor" json:"neighbor"`
}

// WeightTable 是按交互数分段的显式权重表（全序、各段权重和为 1）。
// 用数据结构替代散落的 if/else，便于独立测试与配置化覆盖。
type WeightTable []Tier

// DefaultWeightTable 返回默认分段：
//
//	n < 5   → (0.9, 0.1)   冷启动，几乎只信内容
//	n < 20  → (0.6, 0.4)   有一些数据，均衡
//	n >= 20 → (0.4, 0.6)   数据充分，更信邻居
func DefaultWeightTable() WeightTable {
	return WeightTable{
		{MinCount: 0, Content: 0.9, Neighbor: 0.1},
		{MinCount: 5, Content: 0.6, Neighbor: 0.4},
		{MinCount: 20, Content: 0.4, Neighbor: 0.6},
	}
}

const weightSumEpsilon = 1e-9

// Validate 校验权重表；非法表在构造期失败（INVALID_CONFIG），不进请求路径。
func (t WeightTable) Validate() error {
	if len(t) == 0 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"rank: weight table is empty")
	}
	if t[0].MinCount != 0 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"rank: weight table must start at min_count 0")
	}
	for i, tier := range t {
		if i > 0 && tier.MinCount <= t[i-1].MinCount {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("rank: weight tiers must be strictly increasing, tier %d has min_count %d", i, tier.MinCount))
		}
		if tier.Content < 0 || tier.Neighbor < 0 {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("rank: negative weight in tier %d", i))
		}
		if math.Abs(tier.Content+tier.Neighbor-1) > weightSumEpsilon {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("rank: weights in tier %d sum to %g, want 1", i, tier.Content+tier.Neighbor))
		}
	}
	return nil
}

// WeightsFor 返回交互数 n 对应的 (content, neighbor) 权重对。
// 表已按 MinCount 升序，取最后一个 MinCount <= n 的段。
func (t WeightTable) WeightsFor(n int) (float64, float64) {
	i := sort.Search(len(t), func(i int) bool { return t[i].MinCount > n })
	if i == 0 {
		// Validate 保证首段 MinCount == 0，这里只是防御空表误用
		return 1, 0
	}
	tier := t[i-1]
	return tier.Content, tier.Neighbor
}
