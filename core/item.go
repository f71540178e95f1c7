package core

import "github.com/rushteam/cinekit/pkg/utils"

// Item 是推荐链路中的统一承载结构：分数分量、元信息、标签。
// Features 存放各 Scorer 写入的分量（content_score / neighbor_score 等），
// Score 是 Blender 写入的混合分，用于最终排序；Labels 用于 explain。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// Feature 读取分量，缺失时返回 0（未被某个 Scorer 覆盖的物品分量即为 0）。
func (it *Item) Feature(key string) float64 {
	if it.Features == nil {
		return 0
	}
	return it.Features[key]
}

// PutFeature 写入分量。
func (it *Item) PutFeature(key string, v float64) {
	if it.Features == nil {
		it.Features = make(map[string]float64)
	}
	it.Features[key] = v
}

// Popularity 读取物品的热度信号（由召回阶段写入 Meta）。
func (it *Item) Popularity() float64 {
	if it.Meta == nil {
		return 0
	}
	if v, ok := it.Meta["popularity"].(float64); ok {
		return v
	}
	return 0
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
