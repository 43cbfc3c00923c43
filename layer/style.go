package layer

import (
	"fmt"
	"strings"
)

// FontStyle 是图层字体样式的封闭枚举，每个图层同一时间只有一个取值。
// 渲染端对它做穷举分派，新增样式只需要在这里和配方表里各加一项。
type FontStyle int

const (
	StyleNormal FontStyle = iota
	StyleItalic
	StyleOblique
	StyleSmallCaps
	StyleAllCaps
	StyleUnderline
	StyleStrikethrough
	StyleBold
	StyleLight
	StyleMedium
	StyleCondensed
	StyleExpanded
	StyleShadow
	StyleOutline
	StyleSuperscript
	StyleSubscript
	StyleHighlight
	StyleRaised
	StyleLowered

	numFontStyles
)

var fontStyleLabels = [numFontStyles]string{
	StyleNormal:        "Normal",
	StyleItalic:        "Italic",
	StyleOblique:       "Oblique",
	StyleSmallCaps:     "Small Caps",
	StyleAllCaps:       "All Caps",
	StyleUnderline:     "Underline",
	StyleStrikethrough: "Strikethrough",
	StyleBold:          "Bold",
	StyleLight:         "Light",
	StyleMedium:        "Medium",
	StyleCondensed:     "Condensed",
	StyleExpanded:      "Expanded",
	StyleShadow:        "Shadow",
	StyleOutline:       "Outline",
	StyleSuperscript:   "Superscript",
	StyleSubscript:     "Subscript",
	StyleHighlight:     "Highlight",
	StyleRaised:        "Raised",
	StyleLowered:       "Lowered",
}

// FontStyles 按展示顺序返回全部样式。
func FontStyles() []FontStyle {
	out := make([]FontStyle, 0, numFontStyles)
	for s := StyleNormal; s < numFontStyles; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is one of the declared styles.
func (s FontStyle) Valid() bool { return s >= StyleNormal && s < numFontStyles }

// String 返回样式的展示名，例如 "Small Caps"。
func (s FontStyle) String() string {
	if !s.Valid() {
		return fmt.Sprintf("FontStyle(%d)", int(s))
	}
	return fontStyleLabels[s]
}

// Italic 报告该样式是否使用斜体字形。
func (s FontStyle) Italic() bool { return s == StyleItalic || s == StyleOblique }

// WeightOverride 返回 Bold/Light/Medium 这类样式隐含的字重；其余样式返回 0，沿用图层的数值字重。
func (s FontStyle) WeightOverride() int {
	switch s {
	case StyleBold:
		return 700
	case StyleLight:
		return 300
	case StyleMedium:
		return 500
	default:
		return 0
	}
}

// ParseFontStyle 解析样式名，忽略大小写、空格、连字符与下划线。空串视为 Normal。
func ParseFontStyle(v string) (FontStyle, error) {
	key := normalizeStyleKey(v)
	if key == "" {
		return StyleNormal, nil
	}
	for s, label := range fontStyleLabels {
		if normalizeStyleKey(label) == key {
			return FontStyle(s), nil
		}
	}
	return StyleNormal, fmt.Errorf("未知的字体样式 %q", v)
}

func normalizeStyleKey(v string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(v)) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MarshalText 以展示名序列化，保持与编辑器保存格式一致。
func (s FontStyle) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("无效的字体样式 %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText 接受任意 ParseFontStyle 能识别的写法。
func (s *FontStyle) UnmarshalText(text []byte) error {
	v, err := ParseFontStyle(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
