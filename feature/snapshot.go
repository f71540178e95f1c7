package feature

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/core"
)

// snapshotVersion 是快照格式版本；不兼容变更时递增，旧快照直接判定失效。
const snapshotVersion = 1

// Snapshot 是索引的持久化形态：词表 + 全部物品向量 + 构建元数据。
// 用于跨进程重启复用构建结果；目录 checksum 不匹配时必须整体重建，
// 绝不带着过期向量继续服务。
type Snapshot struct {
	Version    int                     `json:"version"`
	Meta       BuildMeta               `json:"meta"`
	Vocab      *Vocabulary             `json:"vocab"`
	Vectors    map[string]SparseVector `json:"vectors"`
	Popularity map[string]float64      `json:"popularity"`
	MaxPop     float64                 `json:"max_popularity"`
}

// Save 把索引序列化为 JSON 写入 Store。
func Save(ctx context.Context, st core.Store, key string, idx *Index) error {
	snap := Snapshot{
		Version:    snapshotVersion,
		Meta:       idx.meta,
		Vocab:      idx.vocab,
		Vectors:    idx.vectors,
		Popularity: idx.popularity,
		MaxPop:     idx.maxPop,
	}
	data, err := json.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := st.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Load 从 Store 读取快照并还原索引；key 不存在或格式版本不符时返回错误。
func Load(ctx context.Context, st core.Store, key string) (*Index, error) {
	data, err := st.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeDataError,
			fmt.Sprintf("feature: snapshot version %d, want %d", snap.Version, snapshotVersion))
	}
	if snap.Vocab == nil || snap.Vectors == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeDataError,
			"feature: snapshot missing vocab or vectors")
	}
	return &Index{
		vocab:      snap.Vocab,
		vectors:    snap.Vectors,
		popularity: snap.Popularity,
		maxPop:     snap.MaxPop,
		meta:       snap.Meta,
	}, nil
}

// LoadOrBuild 优先复用快照：checksum 与当前目录一致时直接还原，
// 否则（缺失/损坏/过期）全量重建并回写快照。
func LoadOrBuild(
	ctx context.Context,
	st core.Store,
	key string,
	catalog []Record,
	opts ...BuildOption,
) (*Index, error) {
	o := buildOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	want := Checksum(catalog)
	idx, err := Load(ctx, st, key)
	if err == nil && idx.meta.CatalogChecksum == want {
		o.logger.Info().Str("key", key).Msg("feature index restored from snapshot")
		return idx, nil
	}
	if err == nil {
		o.logger.Warn().
			Str("snapshot_checksum", idx.meta.CatalogChecksum).
			Str("catalog_checksum", want).
			Msg("snapshot is stale, rebuilding feature index")
	}

	idx, err = Build(catalog, opts...)
	if err != nil {
		return nil, err
	}
	if err := Save(ctx, st, key, idx); err != nil {
		// 快照只是加速手段，写失败不影响本次构建结果
		o.logger.Warn().Err(err).Str("key", key).Msg("failed to persist index snapshot")
	}
	return idx, nil
}
