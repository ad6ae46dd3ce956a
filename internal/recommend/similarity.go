package recommend

import "strings"

// normalizeItem 比较前统一大小写并去除首尾空白
func normalizeItem(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// toSet 构建归一化后的集合，空项被忽略
func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if key := normalizeItem(item); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

// Jaccard 计算两个字符串列表的 Jaccard 相似度（大小写不敏感、去空白、去重）
// 任一方为空时返回 0
func Jaccard(a, b []string) float64 {
	return jaccardSets(toSet(a), toSet(b))
}

func jaccardSets(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for k := range small {
		if _, ok := large[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// sharedItems 返回两边都出现的条目，保留 mine 中的原始写法与顺序
// limit <= 0 表示不截断
func sharedItems(mine []string, theirs map[string]struct{}, limit int) []string {
	out := make([]string, 0)
	emitted := make(map[string]struct{})
	for _, item := range mine {
		key := normalizeItem(item)
		if key == "" {
			continue
		}
		if _, ok := theirs[key]; !ok {
			continue
		}
		if _, dup := emitted[key]; dup {
			continue
		}
		emitted[key] = struct{}{}
		out = append(out, strings.TrimSpace(item))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
