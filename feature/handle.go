package feature

import "sync/atomic"

// Handle 是索引的版本化句柄：重建产出新 *Index 后整体原子替换。
// 在途请求继续持有替换前取到的索引，读侧无锁、无混合态。
type Handle struct {
	ptr atomic.Pointer[Index]
}

// NewHandle 创建句柄；idx 可为 nil（尚未构建）。
func NewHandle(idx *Index) *Handle {
	h := &Handle{}
	if idx != nil {
		h.ptr.Store(idx)
	}
	return h
}

// Load 返回当前索引；请求期应取一次并全程使用同一份。
func (h *Handle) Load() *Index {
	return h.ptr.Load()
}

// Swap 原子替换为新索引，返回旧索引。
func (h *Handle) Swap(idx *Index) *Index {
	return h.ptr.Swap(idx)
}
