package config

import (
	"fmt"
	"time"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
	"github.com/rushteam/cinekit/filter"
	"github.com/rushteam/cinekit/pipeline"
	"github.com/rushteam/cinekit/pkg/conv"
	"github.com/rushteam/cinekit/rank"
	"github.com/rushteam/cinekit/recall"
	"github.com/rushteam/cinekit/rerank"
)

// Runtime 是配置驱动 pipeline 所需的运行期依赖。
// 配置文件只描述结构与参数，索引句柄和交互存储由进程注入。
type Runtime struct {
	Index        *feature.Handle
	Interactions core.InteractionStore
}

// Factory 返回绑定了运行期依赖的 NodeFactory，包含所有内置 Node 类型，
// 以及通过 Register 注册的自定义类型。
//
// 内置类型与配置项：
//
//	recall.fanout   sources: [content, neighbor], timeout(秒),
//	                top_k / min_interactions / min_users（neighbor 源参数）
//	rank.hybrid     tiers: [{min_count, content, neighbor}, ...]（缺省用默认表）
//	filter          exclude_seen: true, rules: ["<CEL 表达式>", ...]
//	rerank.topn     n: 10
func (r *Runtime) Factory() *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()

	f.Register("recall.fanout", r.buildFanoutNode)
	f.Register("rank.hybrid", buildHybridNode)
	f.Register("filter", r.buildFilterNode)
	f.Register("rerank.topn", buildTopNNode)

	defaultBuildersMu.RLock()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, builder)
	}
	defaultBuildersMu.RUnlock()

	return f
}

// BuildPipeline 加载 YAML 配置并构建 pipeline，构建前先做类型校验。
func (r *Runtime) BuildPipeline(path string) (*pipeline.Pipeline, error) {
	cfg, err := pipeline.LoadFromYAML(path)
	if err != nil {
		return nil, err
	}
	factory := r.Factory()
	if err := ValidatePipelineConfig(cfg, factory); err != nil {
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, err.Error())
	}
	return cfg.BuildPipeline(factory)
}

func (r *Runtime) buildFanoutNode(config map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := config["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Scorer, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		name, ok := sc.(string)
		if !ok {
			if m, isMap := sc.(map[string]interface{}); isMap {
				name = conv.ConfigGet[string](m, "type", "")
			}
		}
		switch name {
		case "content":
			sources = append(sources, &recall.ContentScorer{
				Index:        r.Index,
				Interactions: r.Interactions,
			})
		case "neighbor":
			s := recall.NewNeighborScorer(r.Interactions)
			s.TopK = conv.ConfigGetInt(config, "top_k", s.TopK)
			s.MinInteractions = conv.ConfigGetInt(config, "min_interactions", s.MinInteractions)
			s.MinUsers = conv.ConfigGetInt(config, "min_users", s.MinUsers)
			if err := s.Validate(); err != nil {
				return nil, err
			}
			sources = append(sources, s)
		default:
			return nil, fmt.Errorf("unknown source type: %s", name)
		}
	}

	fanout := &recall.Fanout{
		Index:   r.Index,
		Sources: sources,
	}
	if sec := conv.ConfigGetInt(config, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	return fanout, nil
}

func buildHybridNode(config map[string]interface{}) (pipeline.Node, error) {
	tiersConfig, ok := config["tiers"].([]interface{})
	if !ok {
		// 缺省用默认权重表
		return rank.NewHybridNode(nil)
	}

	table := make(rank.WeightTable, 0, len(tiersConfig))
	for _, tc := range tiersConfig {
		m, ok := tc.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid tier config: %v", tc)
		}
		table = append(table, rank.Tier{
			MinCount: conv.ConfigGetInt(m, "min_count", 0),
			Content:  conv.ConfigGetFloat64(m, "content", 0),
			Neighbor: conv.ConfigGetFloat64(m, "neighbor", 0),
		})
	}
	return rank.NewHybridNode(table)
}

func (r *Runtime) buildFilterNode(config map[string]interface{}) (pipeline.Node, error) {
	filters := make([]filter.Filter, 0, 2)

	if conv.ConfigGet[bool](config, "exclude_seen", true) {
		filters = append(filters, &filter.SeenFilter{Store: r.Interactions})
	}

	for _, expr := range conv.SliceAnyToString(config["rules"]) {
		if expr == "" {
			continue
		}
		filters = append(filters, &filter.RuleFilter{Expr: expr})
	}

	return &filter.FilterNode{Filters: filters}, nil
}

func buildTopNNode(config map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(config, "n", 0)}, nil
}
