package feature

// Record 是构建索引的输入：一个物品的内容特征与热度信号。
// 由外部协作方（目录存储/ETL）提供，核心只读。
type Record struct {
	ItemID string

	// TextFeatures 自由文本特征（简介等），逐条分词
	TextFeatures []string

	// KeywordFeatures 关键词特征（策展标签），逐条分词，
	// 权重高于正文、低于类目
	KeywordFeatures []string

	// CategoricalFeatures 类目特征（类型/题材等），整体作为单个词项，
	// 且按 categoricalWeight 加权重复（类目比正文更能代表物品）
	CategoricalFeatures []string

	// Popularity 热度信号，>= 0；用于冷启动兜底打分与排序 tie-break
	Popularity float64
}

// 词频加权：类目词计 3 次、关键词计 2 次、文本词计 1 次。
// 与线上行为对齐的经验值；改动会使已有快照的 checksum 失效并触发重建。
const (
	categoricalTermWeight = 3
	keywordTermWeight     = 2
	textTermWeight        = 1
)
