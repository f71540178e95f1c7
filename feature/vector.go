package feature

import "math"

// SparseVector 是词项 id → 权重的稀疏向量。
// 内存只随实际命中的词表项增长，不随词表总量增长。
type SparseVector map[int]float64

// Dot 计算点积，只遍历较小的一侧。
func (v SparseVector) Dot(other SparseVector) float64 {
	if len(other) < len(v) {
		v, other = other, v
	}
	var dot float64
	for id, w := range v {
		if ow, ok := other[id]; ok {
			dot += w * ow
		}
	}
	return dot
}

// Norm 计算 L2 范数。
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Normalize 返回单位化后的新向量；零向量返回空向量，不产生 NaN。
func (v SparseVector) Normalize() SparseVector {
	norm := v.Norm()
	out := make(SparseVector, len(v))
	if norm == 0 {
		return out
	}
	for id, w := range v {
		out[id] = w / norm
	}
	return out
}

// Cosine 计算余弦相似度，范围 [-1, 1]；任一侧为零向量时返回 0，永不未定义。
// 对称：Cosine(a, b) == Cosine(b, a)。
func Cosine(a, b SparseVector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}
