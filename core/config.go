package core

// ScorerConfig 是打分相关的配置接口，用于提供默认值。
type ScorerConfig interface {
	// DefaultTopKNeighbors 返回默认的 TopK 相似用户数
	DefaultTopKNeighbors() int

	// DefaultMinInteractions 返回邻居打分要求的目标用户最小交互数
	DefaultMinInteractions() int

	// DefaultMinUsers 返回邻居打分要求的最小有历史用户数（不含目标用户）
	DefaultMinUsers() int
}

// DefaultScorerConfig 是默认的打分配置实现。
// 数值是可调常量：在配置驱动（config 包）下可覆盖，覆盖值在构建期校验。
type DefaultScorerConfig struct{}

func (c *DefaultScorerConfig) DefaultTopKNeighbors() int {
	return 20
}

func (c *DefaultScorerConfig) DefaultMinInteractions() int {
	return 2
}

func (c *DefaultScorerConfig) DefaultMinUsers() int {
	return 2
}
