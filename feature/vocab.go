package feature

import "math"

// Vocabulary 是构建期固化的词表：词项 → 整数 id，外加全局逆频权重。
// 构建完成后只读；打分期出现的新词不在词表中，直接忽略而非报错。
type Vocabulary struct {
	Terms map[string]int `json:"terms"` // term → id，id 即 IDF 下标
	IDF   []float64      `json:"idf"`   // 逆频权重：越稀有的词权重越大
}

// ID 返回词项 id；未知词返回 (0, false)。
func (v *Vocabulary) ID(term string) (int, bool) {
	id, ok := v.Terms[term]
	return id, ok
}

// Len 返回词表大小。
func (v *Vocabulary) Len() int {
	return len(v.Terms)
}

// idf 计算平滑逆频权重：ln(1 + N/df)。
// df 越小（词越稀有）权重越大；df == N 时仍为正，不会整体清零。
func idf(totalItems, docFreq int) float64 {
	if docFreq <= 0 {
		return 0
	}
	return math.Log(1 + float64(totalItems)/float64(docFreq))
}
