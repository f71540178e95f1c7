package feast

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/cinekit/core"
	"github.com/rushteam/cinekit/feature"
)

// 默认的目录特征视图与字段约定。
const (
	DefaultEntityKey   = "movie_id"
	DefaultFeatureView = "movie_catalog"

	fieldGenres     = "genres"
	fieldKeywords   = "keywords"
	fieldOverview   = "overview"
	fieldPopularity = "popularity"
)

// CatalogSource 从 Feast 在线存储拉取电影目录特征，转换为索引构建输入。
//
// 特征视图约定四个字段：
//
//	genres      []string 或逗号分隔字符串 → 类目特征
//	keywords    []string 或逗号分隔字符串 → 关键词特征
//	overview    string                   → 文本特征
//	popularity  数值                      → 热度信号
//
// 用法：
//
//	src := &feast.CatalogSource{Client: client, Project: "movies"}
//	records, err := src.Fetch(ctx, movieIDs)
//	idx, err := feature.Build(records)
type CatalogSource struct {
	Client Client

	// Project Feast 项目名称
	Project string

	// EntityKey 实体字段名，默认 "movie_id"
	EntityKey string

	// FeatureView 特征视图名，默认 "movie_catalog"
	FeatureView string
}

func (s *CatalogSource) entityKey() string {
	if s.EntityKey != "" {
		return s.EntityKey
	}
	return DefaultEntityKey
}

func (s *CatalogSource) featureView() string {
	if s.FeatureView != "" {
		return s.FeatureView
	}
	return DefaultFeatureView
}

func (s *CatalogSource) featureRef(field string) string {
	return s.featureView() + ":" + field
}

// Fetch 批量拉取给定物品的目录特征。
// 某个物品的特征整体缺失时仍产出 Record（零特征物品在索引构建时会被
// 记为零向量并计入 skipped），拉取本身失败返回 DATA_ERROR。
func (s *CatalogSource) Fetch(ctx context.Context, itemIDs []string) ([]feature.Record, error) {
	if s.Client == nil {
		return nil, core.NewDomainError(core.ModuleFeast, core.ErrorCodeInvalidConfig,
			"feast: catalog source requires a client")
	}
	if len(itemIDs) == 0 {
		return nil, core.NewDomainError(core.ModuleFeast, core.ErrorCodeDataError,
			"feast: no item ids to fetch")
	}

	entityRows := make([]map[string]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		entityRows[i] = map[string]interface{}{s.entityKey(): id}
	}

	resp, err := s.Client.OnlineFeatures(ctx, &OnlineFeaturesRequest{
		Features: []string{
			s.featureRef(fieldGenres),
			s.featureRef(fieldKeywords),
			s.featureRef(fieldOverview),
			s.featureRef(fieldPopularity),
		},
		EntityRows: entityRows,
		Project:    s.Project,
	})
	if err != nil {
		return nil, core.NewDomainError(core.ModuleFeast, core.ErrorCodeDataError,
			fmt.Sprintf("feast: fetch catalog: %v", err))
	}
	if len(resp.Vectors) != len(itemIDs) {
		return nil, core.NewDomainError(core.ModuleFeast, core.ErrorCodeDataError,
			fmt.Sprintf("feast: catalog response has %d rows, want %d", len(resp.Vectors), len(itemIDs)))
	}

	records := make([]feature.Record, 0, len(itemIDs))
	for i, id := range itemIDs {
		values := resp.Vectors[i].Values

		rec := feature.Record{
			ItemID:              id,
			CategoricalFeatures: asStringList(values[s.featureRef(fieldGenres)]),
			KeywordFeatures:     asStringList(values[s.featureRef(fieldKeywords)]),
			Popularity:          asFloat(values[s.featureRef(fieldPopularity)]),
		}
		if overview, ok := values[s.featureRef(fieldOverview)].(string); ok && overview != "" {
			rec.TextFeatures = append(rec.TextFeatures, overview)
		}

		records = append(records, rec)
	}
	return records, nil
}

// asStringList 兼容 []string 与逗号分隔字符串两种存储形式。
func asStringList(v interface{}) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		if val == "" {
			return nil
		}
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

func asFloat(v interface{}) float64 {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return f
}
