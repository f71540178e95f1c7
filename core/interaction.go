package core

import "context"

// 交互强度约定（有符号）：0 / 缺失表示未看过。
const (
	StrengthLike       = 1.0  // 右滑 / 喜欢
	StrengthStrongLike = 2.0  // 强喜欢（superlike）
	StrengthDislike    = -1.0 // 左滑 / 不喜欢
)

// InteractionStore 是用户×物品有符号强度矩阵的领域接口。
//
// 语义约定：
//   - Append 对同一 (user, item) 幂等：后写覆盖先写，不累加
//     （用户对一个物品的态度是单值的）
//   - Row 对无历史用户返回空 map，不报错；"没有数据"是缺省态而非删除态
//   - 不提供删除操作
//
// 并发约定：
//   - 不同 key 的 Append 互不阻塞；同一 key 的 Append 串行化（last-write-wins）
//   - Row 返回的 map 归调用方所有，实现不得复用内部 map
type InteractionStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Append 记录一次交互；同一 (userID, itemID) 再次写入时覆盖旧强度
	Append(ctx context.Context, userID, itemID string, strength float64) error

	// Row 返回用户的稀疏交互行 map[itemID]strength；无历史返回空 map
	Row(ctx context.Context, userID string) (map[string]float64, error)

	// Count 返回用户的交互条数（权重表分段的输入 n）
	Count(ctx context.Context, userID string) (int, error)

	// Users 返回有交互记录的全部用户 ID
	Users(ctx context.Context) ([]string, error)
}
