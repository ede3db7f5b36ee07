package advisor

import (
	"fmt"
	"sort"
	"strings"

	"banmaytinh/internal/domain"
)

// Criterion 用户选择的一条标准（topic, value）
type Criterion struct {
	Topic string `json:"topic"`
	Value string `json:"value"`
}

// Candidate 参与评分的整机
type Candidate struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Image string   `json:"image"`
}

// ScoredCandidate 评分结果项
type ScoredCandidate struct {
	Candidate
	MatchCount    int     `json:"match_count"`
	TotalSelected int     `json:"total_selected"`
	MatchRatio    float64 `json:"match_ratio"`
}

// Thresholds 分档阈值
type Thresholds struct {
	HighMin       int `json:"high_min"`
	MidMin        int `json:"mid_min"`
	SelectedCount int `json:"selected_count"`
}

// Tiers 三档结果：tier1 强匹配、tier2 中等、tier3 弱匹配
type Tiers struct {
	Tier1 []ScoredCandidate `json:"tier1"`
	Tier2 []ScoredCandidate `json:"tier2"`
	Tier3 []ScoredCandidate `json:"tier3"`
}

// Result suggest 输出
type Result struct {
	Tiers      Tiers      `json:"tiers"`
	Thresholds Thresholds `json:"thresholds"`
}

// NormalizeCriteria 转为规范标签名集合；topic 或 value 为空的条目被忽略，重复项合并
func NormalizeCriteria(criteria []Criterion) map[string]struct{} {
	selected := make(map[string]struct{}, len(criteria))
	for _, c := range criteria {
		topic := strings.TrimSpace(c.Topic)
		value := strings.TrimSpace(c.Value)
		if topic == "" || value == "" {
			continue
		}
		selected[CanonicalTagName(topic, value)] = struct{}{}
	}
	return selected
}

// ComputeThresholds highMin = ceil(0.8n)，midMin = max(1, ceil(0.4n))，整数运算避免浮点误差
func ComputeThresholds(n int) Thresholds {
	high := (8*n + 9) / 10
	mid := (4*n + 9) / 10
	if mid < 1 {
		mid = 1
	}
	return Thresholds{HighMin: high, MidMin: mid, SelectedCount: n}
}

// Suggest 按标签匹配数给整机分档
// productTags: 商品ID -> 该商品的标签名
func Suggest(criteria []Criterion, products []Candidate, productTags map[int64][]string) (*Result, error) {
	selected := NormalizeCriteria(criteria)
	n := len(selected)
	if n == 0 {
		return nil, domain.ErrEmptyCriteria
	}

	th := ComputeThresholds(n)
	res := &Result{
		Tiers: Tiers{
			Tier1: []ScoredCandidate{},
			Tier2: []ScoredCandidate{},
			Tier3: []ScoredCandidate{},
		},
		Thresholds: th,
	}

	for _, p := range products {
		mc := matchCount(productTags[p.ID], selected)
		if mc == 0 {
			continue
		}
		sc := ScoredCandidate{
			Candidate:     p,
			MatchCount:    mc,
			TotalSelected: n,
			MatchRatio:    float64(mc) / float64(n),
		}
		switch {
		case mc >= th.HighMin:
			res.Tiers.Tier1 = append(res.Tiers.Tier1, sc)
		case mc >= th.MidMin:
			res.Tiers.Tier2 = append(res.Tiers.Tier2, sc)
		default:
			res.Tiers.Tier3 = append(res.Tiers.Tier3, sc)
		}
	}

	sortTier(res.Tiers.Tier1)
	sortTier(res.Tiers.Tier2)
	sortTier(res.Tiers.Tier3)
	return res, nil
}

// matchCount 商品标签与已选标签的交集大小（商品重复标签只计一次）
func matchCount(tags []string, selected map[string]struct{}) int {
	seen := make(map[string]struct{}, len(tags))
	count := 0
	for _, t := range tags {
		name := normalizeTagName(t)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := selected[name]; ok {
			count++
		}
	}
	return count
}

// sortTier match_count 降序，价格升序（无价格按 0），最后按 ID 保证稳定
func sortTier(items []ScoredCandidate) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.MatchCount != b.MatchCount {
			return a.MatchCount > b.MatchCount
		}
		pa, pb := priceOf(a.Price), priceOf(b.Price)
		if pa != pb {
			return pa < pb
		}
		return a.ID < b.ID
	})
}

func priceOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// String 便于日志输出
func (t Thresholds) String() string {
	return fmt.Sprintf("n=%d high>=%d mid>=%d", t.SelectedCount, t.HighMin, t.MidMin)
}
