package feature

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/cinekit/core"
)

// Index 是特征索引：每个物品一条 L2 单位化的 TF-IDF 稀疏向量，
// 共享同一张构建期固化的词表。
//
// 不可变：目录变化时整体重建，从不原地修改；
// 在线替换经由 Handle 的原子指针交换（读者看到旧索引或新索引，不会看到混合态）。
type Index struct {
	vocab      *Vocabulary
	vectors    map[string]SparseVector
	popularity map[string]float64
	maxPop     float64
	meta       BuildMeta
}

// BuildMeta 是索引构建元数据，随快照持久化。
type BuildMeta struct {
	CatalogChecksum string    `json:"catalog_checksum"`
	BuiltAt         time.Time `json:"built_at"`
	Items           int       `json:"items"`
	Terms           int       `json:"terms"`
	SkippedItems    int       `json:"skipped_items"` // 特征为空、落成零向量的物品数
}

// buildOptions 是 Build 的可选项。
type buildOptions struct {
	logger zerolog.Logger
}

// BuildOption 配置一次索引构建。
type BuildOption func(*buildOptions)

// WithLogger 注入构建日志（默认 Nop）。
func WithLogger(l zerolog.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = l }
}

// Build 从目录构建索引，纯函数：相同目录永远得到相同索引。
//
// 算法：分词 → 统计加权词频 tf → 全局逆频 idf（稀有词权重大）→
// weight = tf × idf → L2 单位化（相似度退化为点积）。
//
// 单个物品特征为空是预期情形（稀疏目录）：落成零向量并记日志，构建继续；
// 整个目录为空才是错误。
func Build(catalog []Record, opts ...BuildOption) (*Index, error) {
	o := buildOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if len(catalog) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeDataError,
			"feature: empty catalog")
	}

	// 逐物品词频；同一 itemID 重复出现时后者覆盖前者
	counts := make(map[string]map[string]float64, len(catalog))
	popularity := make(map[string]float64, len(catalog))
	var maxPop float64
	skipped := 0

	for _, rec := range catalog {
		if rec.ItemID == "" {
			continue
		}
		tc := termCounts(rec)
		if len(tc) == 0 {
			skipped++
			o.logger.Warn().
				Str("item_id", rec.ItemID).
				Msg("item has no usable feature text, falling back to zero vector")
		}
		counts[rec.ItemID] = tc
		pop := rec.Popularity
		if pop < 0 {
			pop = 0
		}
		popularity[rec.ItemID] = pop
		if pop > maxPop {
			maxPop = pop
		}
	}
	if len(counts) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeDataError,
			"feature: catalog has no items with ids")
	}

	// 文档频率 → 固化词表（词项排序后分配 id，保证确定性）
	docFreq := make(map[string]int)
	for _, tc := range counts {
		for term := range tc {
			docFreq[term]++
		}
	}
	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocab := &Vocabulary{
		Terms: make(map[string]int, len(terms)),
		IDF:   make([]float64, len(terms)),
	}
	for i, term := range terms {
		vocab.Terms[term] = i
		vocab.IDF[i] = idf(len(counts), docFreq[term])
	}

	// tf × idf → L2 单位化
	vectors := make(map[string]SparseVector, len(counts))
	for itemID, tc := range counts {
		vec := make(SparseVector, len(tc))
		for term, tf := range tc {
			id := vocab.Terms[term]
			vec[id] = tf * vocab.IDF[id]
		}
		vectors[itemID] = vec.Normalize()
	}

	idx := &Index{
		vocab:      vocab,
		vectors:    vectors,
		popularity: popularity,
		maxPop:     maxPop,
		meta: BuildMeta{
			CatalogChecksum: Checksum(catalog),
			BuiltAt:         time.Now().UTC(),
			Items:           len(vectors),
			Terms:           vocab.Len(),
			SkippedItems:    skipped,
		},
	}

	o.logger.Info().
		Int("items", idx.meta.Items).
		Int("terms", idx.meta.Terms).
		Int("skipped", skipped).
		Msg("feature index built")

	return idx, nil
}

// VectorOf 返回物品向量；未知 id 返回 NOT_FOUND。
func (idx *Index) VectorOf(itemID string) (SparseVector, error) {
	vec, ok := idx.vectors[itemID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeNotFound,
			fmt.Sprintf("feature: unknown item %q", itemID))
	}
	return vec, nil
}

// Items 返回索引内全部物品 id（排序，保证遍历确定性）。
func (idx *Index) Items() []string {
	ids := make([]string, 0, len(idx.vectors))
	for id := range idx.vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Has 判断物品是否在索引中。
func (idx *Index) Has(itemID string) bool {
	_, ok := idx.vectors[itemID]
	return ok
}

// Len 返回索引内物品数。
func (idx *Index) Len() int {
	return len(idx.vectors)
}

// PopularityOf 返回物品的原始热度；未知 id 返回 0。
func (idx *Index) PopularityOf(itemID string) float64 {
	return idx.popularity[itemID]
}

// NormalizedPopularity 返回缩放到 [0,1] 的热度（除以目录最大热度）。
func (idx *Index) NormalizedPopularity(itemID string) float64 {
	if idx.maxPop == 0 {
		return 0
	}
	return idx.popularity[itemID] / idx.maxPop
}

// Vocab 返回只读词表。
func (idx *Index) Vocab() *Vocabulary {
	return idx.vocab
}

// Meta 返回构建元数据。
func (idx *Index) Meta() BuildMeta {
	return idx.meta
}

// Checksum 计算目录的规范化校验和，用于判定快照是否仍然有效。
// 与物品顺序无关：按 itemID 排序后串行哈希。
func Checksum(catalog []Record) string {
	lines := make([]string, 0, len(catalog))
	for _, rec := range catalog {
		var b strings.Builder
		b.WriteString(rec.ItemID)
		b.WriteByte('\x1f')
		b.WriteString(strings.Join(rec.TextFeatures, "\x1e"))
		b.WriteByte('\x1f')
		b.WriteString(strings.Join(rec.KeywordFeatures, "\x1e"))
		b.WriteByte('\x1f')
		b.WriteString(strings.Join(rec.CategoricalFeatures, "\x1e"))
		b.WriteByte('\x1f')
		b.WriteString(strconv.FormatFloat(rec.Popularity, 'g', -1, 64))
		lines = append(lines, b.String())
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
