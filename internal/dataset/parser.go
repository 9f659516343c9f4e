package dataset

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/user/reelrec/internal/model"
)

// ParseNameList 解析字符串化的嵌套记录列（genres/cast 等），返回名称列表
// 总函数：任何输入都不报错，解析失败时退化为分隔符切分（有损，但尽量保留数据）
func ParseNameList(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []interface{}:
		return namesFromItems(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}
		}
		if items, ok := parseLiteralList(v); ok {
			return namesFromItems(items)
		}
		// 退化方案：去掉括号引号后按逗号切分
		return naiveSplit(v)
	default:
		return []string{}
	}
}

// ParseCrewList 解析剧组列，保留 name/job 结构（导演筛选依赖 job 字段）
func ParseCrewList(raw interface{}) []model.CrewMember {
	var items []interface{}
	switch v := raw.(type) {
	case nil:
		return []model.CrewMember{}
	case []interface{}:
		items = v
	case string:
		if strings.TrimSpace(v) == "" {
			return []model.CrewMember{}
		}
		parsed, ok := parseLiteralList(v)
		if !ok {
			// 切分结果只有名字，拿不到 job
			out := []model.CrewMember{}
			for _, name := range naiveSplit(v) {
				out = append(out, model.CrewMember{Name: name})
			}
			return out
		}
		items = parsed
	default:
		return []model.CrewMember{}
	}

	out := make([]model.CrewMember, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			member := model.CrewMember{Name: displayName(m)}
			if job, ok := m["job"].(string); ok {
				member.Job = job
			}
			if member.Name != "" {
				out = append(out, member)
			}
			continue
		}
		out = append(out, model.CrewMember{Name: fmt.Sprint(item)})
	}
	return out
}

// parseLiteralList 尝试把字符串当作嵌套列表字面量解析
// TMDB 导出通常是合法 JSON；单引号风格的再做一次引号替换后重试
func parseLiteralList(s string) ([]interface{}, bool) {
	var items []interface{}
	if err := json.Unmarshal([]byte(s), &items); err == nil {
		return items, true
	}
	swapped := strings.ReplaceAll(s, "'", `"`)
	if err := json.Unmarshal([]byte(swapped), &items); err == nil {
		return items, true
	}
	return nil, false
}

// namesFromItems 从记录列表中提取展示名：优先 name，其次 original_name，否则原值
func namesFromItems(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			if name := displayName(m); name != "" {
				out = append(out, name)
			}
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func displayName(m map[string]interface{}) string {
	if name, ok := m["name"].(string); ok && name != "" {
		return name
	}
	if name, ok := m["original_name"].(string); ok && name != "" {
		return name
	}
	return ""
}

// naiveSplit 有损兜底：去掉括号和引号后按逗号切分
func naiveSplit(s string) []string {
	s = strings.NewReplacer("[", "", "]", "", "{", "", "}", "", "'", "", `"`, "").Replace(s)
	parts := strings.Split(s, ",")
	out := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
