package core

import "github.com/rushteam/cinekit/pkg/utils"

// RecommendContext 承载用户/场景/请求信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string // 使用 string 类型（通用，支持所有 ID 格式）
	Scene  string

	// InteractionCount 是用户累计交互数 n，由入口统一写入。
	// Blender 的分段权重表以它为输入（而不是各 Node 重复查询存储）。
	InteractionCount int

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	// 例如：新用户、冷启动、重度用户等
	Labels map[string]utils.Label

	// Params 请求级上下文参数，例如 top_n、exclude_seen、时间戳等
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
