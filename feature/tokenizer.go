package feature

import "strings"

// stopwords 是分词时丢弃的高频英文词。
// 不追求完备：只要高频功能词不进词表，IDF 就不会被它们稀释。
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "but": {}, "by": {}, "for": {}, "from": {}, "has": {},
	"he": {}, "her": {}, "his": {}, "in": {}, "is": {}, "it": {},
	"its": {}, "of": {}, "on": {}, "or": {}, "she": {}, "that": {},
	"the": {}, "their": {}, "this": {}, "to": {}, "was": {}, "when": {},
	"who": {}, "will": {}, "with": {},
}

// Tokenize 把一段自由文本切成规范化词项：小写、按非字母数字切分、
// 丢弃单字符与停用词。
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	terms := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if len(t) < 2 {
			continue
		}
		if _, ok := stopwords[t]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// NormalizeCategory 把类目特征整体规范化为单个词项（小写、空白折叠为 '_'）。
// 例如 "Science Fiction" → "science_fiction"，避免与正文词 "science" 串味。
func NormalizeCategory(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(fields, "_")
}

// termCounts 统计一个 Record 的加权词频。
func termCounts(rec Record) map[string]float64 {
	counts := make(map[string]float64)
	for _, c := range rec.CategoricalFeatures {
		term := NormalizeCategory(c)
		if term == "" {
			continue
		}
		counts[term] += categoricalTermWeight
	}
	for _, kw := range rec.KeywordFeatures {
		for _, term := range Tokenize(kw) {
			counts[term] += keywordTermWeight
		}
	}
	for _, txt := range rec.TextFeatures {
		for _, term := range Tokenize(txt) {
			counts[term] += textTermWeight
		}
	}
	return counts
}
