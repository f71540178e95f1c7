package feast

import "context"

// Client 是 Feast Feature Store 在线服务的客户端接口。
//
// Feast 是一个开源的 Feature Store，这里只抽象推荐链路需要的在线读取能力：
// 电影目录特征（类型、关键词、简介、热度）按实体批量获取，
// 由 CatalogSource 转换为索引构建输入。
//
// 实现：
//   - GrpcClient：基于官方 SDK (github.com/feast-dev/feast/sdk/go)
//   - 测试中可用内存 fake 实现此接口
type Client interface {
	// OnlineFeatures 批量获取在线特征，每个实体行对应一个特征向量
	OnlineFeatures(ctx context.Context, req *OnlineFeaturesRequest) (*OnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// OnlineFeaturesRequest 在线特征请求。
type OnlineFeaturesRequest struct {
	// Features 特征引用列表，例如 ["movie_catalog:genres", "movie_catalog:popularity"]
	Features []string

	// EntityRows 实体行，例如 [{"movie_id": "A"}, {"movie_id": "B"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，缺省用客户端配置）
	Project string
}

// OnlineFeaturesResponse 在线特征响应。
type OnlineFeaturesResponse struct {
	// Vectors 与请求实体行一一对应
	Vectors []FeatureVector
}

// FeatureVector 单个实体的特征值集合。
type FeatureVector struct {
	// Values key 为特征引用，value 已转为 Go 原生类型
	// （string / float64 / []string）
	Values map[string]interface{}

	// EntityRow 对应的请求实体行
	EntityRow map[string]interface{}
}
