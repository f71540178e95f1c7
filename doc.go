// Package cinekit 是一个电影混合推荐工具包（Cinema Recommender Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - 双信号混合: 内容相似（TF-IDF 口味向量）+ 邻居投票（User-KNN），
//   按用户交互数分段调权，数据不足时优雅降级而非失败
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - Node 可扩展: 自定义 Node 即可插拔扩展
package cinekit

import "github.com/rushteam/cinekit/pipeline"

// 轻量 facade：便于用户直接 import "cinekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
