package core

// Factors 是单个推荐结果的因子分解，用于 explain：
// 哪些信号（内容相似 / 邻居投票 / 热度兜底）以多大权重参与了混合分。
type Factors struct {
	ContentScore   float64 `json:"content_score"`
	NeighborScore  float64 `json:"neighbor_score"`
	ContentWeight  float64 `json:"content_weight"`
	NeighborWeight float64 `json:"neighbor_weight"`

	// IsFallback 表示 content_score 来自热度兜底（冷启动），而非口味向量相似度
	IsFallback bool `json:"is_fallback"`
}

// Recommendation 是输出给上层（UI/serving）的单条推荐。
type Recommendation struct {
	ItemID  string  `json:"item_id"`
	Score   float64 `json:"blended_score"`
	Factors Factors `json:"factors"`
}
