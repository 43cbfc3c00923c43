// Package binding 负责场景文字中的 ${path} 数据插值。
//
// 数据通常来自 JSON（map[string]any / []any），路径写法为 a.b[0].c，
// 可以用 ${path|默认值} 指定路径缺失时的替代文本。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 路径不存在时使用 | 后的默认值；没有默认值则保留原占位符。
func Interpolate(text string, data any) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path, def, hasDefault := splitExpr(match)
		if path == "" {
			return match
		}
		if val, ok := Lookup(data, path); ok {
			return format(val)
		}
		if hasDefault {
			return def
		}
		return match
	})
}

// Missing 返回 text 中无法解析且没有默认值的路径，按出现顺序去重。
func Missing(text string, data any) []string {
	var out []string
	seen := map[string]bool{}
	for _, match := range exprPattern.FindAllString(text, -1) {
		path, _, hasDefault := splitExpr(match)
		if path == "" || hasDefault || seen[path] {
			continue
		}
		if _, ok := Lookup(data, path); !ok {
			seen[path] = true
			out = append(out, path)
		}
	}
	return out
}

// Lookup 按 a.b[0].c 形式的路径在 data 中取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(strings.TrimSpace(path), ".") {
		name, indexes := parseSegment(segment)
		if name == "" && len(indexes) == 0 {
			return nil, false
		}
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func splitExpr(match string) (path, def string, hasDefault bool) {
	groups := exprPattern.FindStringSubmatch(match)
	if len(groups) < 2 {
		return "", "", false
	}
	expr := groups[1]
	if i := strings.IndexByte(expr, '|'); i >= 0 {
		return strings.TrimSpace(expr[:i]), strings.TrimSpace(expr[i+1:]), true
	}
	return strings.TrimSpace(expr), "", false
}

// JSON 数字解码为 float64，整数值不带小数点输出。
func format(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return strings.TrimSpace(name), indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
