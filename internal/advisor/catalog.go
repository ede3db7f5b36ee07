// Package advisor 选购顾问：标签话题目录 + 按标签匹配度给整机分档排序
package advisor

import (
	"sort"
	"strings"

	"banmaytinh/internal/domain"
)

// TagDelimiter 标签名中 topic 与 value 的分隔符
const TagDelimiter = "<>"

// OtherTopic 不符合 "<topic> <> <value>" 格式的标签归入此话题
const OtherTopic = "Khác"

// ParseTagName 拆分标签名；exactly 两段时返回 (topic, value, true)，否则返回 (OtherTopic, 原名, false)
func ParseTagName(name string) (topic, value string, ok bool) {
	parts := strings.Split(name, TagDelimiter)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
	}
	return OtherTopic, name, false
}

// CanonicalTagName 组装规范标签名 "<topic> <> <value>"
func CanonicalTagName(topic, value string) string {
	return strings.TrimSpace(topic) + " " + TagDelimiter + " " + strings.TrimSpace(value)
}

// normalizeTagName 将库中标签名规范化，使 "Mục đích<>Gaming" 与 "Mục đích <> Gaming" 等价
func normalizeTagName(name string) string {
	if topic, value, ok := ParseTagName(name); ok {
		return CanonicalTagName(topic, value)
	}
	return name
}

// TopicCatalog topic -> 去重且排序后的 value 列表
type TopicCatalog map[string][]string

// GroupByTopic 按话题归类标签值；纯函数，与输入顺序无关
func GroupByTopic(tags []domain.Tag) TopicCatalog {
	sets := make(map[string]map[string]struct{})
	for _, t := range tags {
		topic, value, _ := ParseTagName(t.TagName)
		if sets[topic] == nil {
			sets[topic] = make(map[string]struct{})
		}
		sets[topic][value] = struct{}{}
	}

	out := make(TopicCatalog, len(sets))
	for topic, values := range sets {
		list := make([]string, 0, len(values))
		for v := range values {
			list = append(list, v)
		}
		sort.Strings(list)
		out[topic] = list
	}
	return out
}

// Topics 返回排序后的话题列表
func (c TopicCatalog) Topics() []string {
	topics := make([]string, 0, len(c))
	for t := range c {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}
