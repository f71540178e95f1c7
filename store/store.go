package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store（快照等 KV 产物）和 core.InteractionStore（交互矩阵）。
//
// 示例：
//   var kv core.Store = NewMemoryStore()
//   var interactions core.InteractionStore = NewMemoryStore()
