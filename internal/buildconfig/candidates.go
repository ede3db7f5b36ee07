package buildconfig

import (
	"strings"

	"banmaytinh/internal/domain"
)

// groupCategoryRule 配件组名关键字 -> 候选分类名关键字（按优先级）
type groupCategoryRule struct {
	groupKeywords    []string
	categoryKeywords []string
}

var groupCategoryRules = []groupCategoryRule{
	{[]string{"cpu", "processor"}, []string{"cpu"}},
	{[]string{"ram", "memory"}, []string{"ram"}},
	{[]string{"vga", "gpu", "card"}, []string{"vga"}},
	{[]string{"ssd", "hdd", "storage", "ổ cứng"}, []string{"ssd", "hdd", "ổ cứng"}},
	{[]string{"main", "motherboard", "bo mạch"}, []string{"mainboard", "bo mạch chủ"}},
	{[]string{"psu", "power", "nguồn"}, []string{"nguồn", "psu"}},
	{[]string{"case", "vỏ"}, []string{"case", "vỏ"}},
}

// CategoryKeywords 根据配件组名推断候选分类关键字；无法推断时返回 nil（不按分类过滤）
func CategoryKeywords(groupName string) []string {
	name := strings.ToLower(groupName)
	for _, rule := range groupCategoryRules {
		for _, kw := range rule.groupKeywords {
			if strings.Contains(name, kw) {
				return rule.categoryKeywords
			}
		}
	}
	return nil
}

// MatchCategory 按关键字优先级选出第一个名称包含关键字的分类
func MatchCategory(groupName string, categories []domain.Category) *domain.Category {
	for _, kw := range CategoryKeywords(groupName) {
		for i := range categories {
			if strings.Contains(strings.ToLower(categories[i].Name), kw) {
				return &categories[i]
			}
		}
	}
	return nil
}
