package layer

import (
	"fmt"
	"strconv"
	"strings"
)

// Key 标识 TextLayer 上可修改的属性，是一个封闭集合（id 不可修改）。
type Key int

const (
	KeyText Key = iota
	KeyFontFamily
	KeyFontSize
	KeyFontWeight
	KeyFontStyle
	KeyColor
	KeyOpacity
	KeyStrokeColor
	KeyStrokeSize
	KeyStrokeOpacity
	KeyIsStroke
	KeyTop
	KeyLeft
	KeyRotation
	KeyZIndex
	KeyIsFront
	KeyVisible

	numKeys
)

var keyNames = [numKeys]string{
	KeyText:          "text",
	KeyFontFamily:    "fontFamily",
	KeyFontSize:      "fontSize",
	KeyFontWeight:    "fontWeight",
	KeyFontStyle:     "fontStyle",
	KeyColor:         "color",
	KeyOpacity:       "opacity",
	KeyStrokeColor:   "strokeColor",
	KeyStrokeSize:    "strokeSize",
	KeyStrokeOpacity: "strokeOpacity",
	KeyIsStroke:      "isStroke",
	KeyTop:           "top",
	KeyLeft:          "left",
	KeyRotation:      "rotation",
	KeyZIndex:        "zIndex",
	KeyIsFront:       "isFront",
	KeyVisible:       "visible",
}

// String returns the JSON field name of the key.
func (k Key) String() string {
	if k < 0 || k >= numKeys {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// ParseKey 按 JSON 字段名查找属性，大小写与 '-'/'_' 不敏感（font-size、font_size 都可以）。
func ParseKey(name string) (Key, error) {
	want := normalizeStyleKey(name)
	for k, n := range keyNames {
		if strings.ToLower(n) == want {
			return Key(k), nil
		}
	}
	return 0, fmt.Errorf("未知的图层属性 %q", name)
}

// Attribute 是一次类型化的属性赋值：Key 决定哪一个值字段有效。
// 通过 TextAttr、FontSizeAttr 等构造函数创建。
type Attribute struct {
	key   Key
	text  string
	num   float64
	flag  bool
	color Color
	style FontStyle
}

// Key 返回该赋值对应的属性。
func (a Attribute) Key() Key { return a.key }

func TextAttr(v string) Attribute { return Attribute{key: KeyText, text: v} }
func FontFamilyAttr(v string) Attribute { return Attribute{key: KeyFontFamily, text: v} }
func FontSizeAttr(v float64) Attribute { return Attribute{key: KeyFontSize, num: v} }
func FontWeightAttr(v int) Attribute { return Attribute{key: KeyFontWeight, num: float64(v)} }
func FontStyleAttr(v FontStyle) Attribute { return Attribute{key: KeyFontStyle, style: v} }
func ColorAttr(v Color) Attribute { return Attribute{key: KeyColor, color: v} }
func OpacityAttr(v float64) Attribute { return Attribute{key: KeyOpacity, num: v} }
func StrokeColorAttr(v Color) Attribute { return Attribute{key: KeyStrokeColor, color: v} }
func StrokeSizeAttr(v float64) Attribute { return Attribute{key: KeyStrokeSize, num: v} }
func StrokeOpacityAttr(v float64) Attribute { return Attribute{key: KeyStrokeOpacity, num: v} }
func IsStrokeAttr(v bool) Attribute { return Attribute{key: KeyIsStroke, flag: v} }
func TopAttr(v float64) Attribute { return Attribute{key: KeyTop, num: v} }
func LeftAttr(v float64) Attribute { return Attribute{key: KeyLeft, num: v} }
func RotationAttr(v float64) Attribute { return Attribute{key: KeyRotation, num: v} }
func ZIndexAttr(v int) Attribute { return Attribute{key: KeyZIndex, num: float64(v)} }
func IsFrontAttr(v bool) Attribute { return Attribute{key: KeyIsFront, flag: v} }
func VisibleAttr(v bool) Attribute { return Attribute{key: KeyVisible, flag: v} }

// Apply 返回赋值后的新图层，入参不会被修改。
func (a Attribute) Apply(l TextLayer) TextLayer {
	switch a.key {
	case KeyText:
		l.Text = a.text
	case KeyFontFamily:
		l.FontFamily = a.text
	case KeyFontSize:
		l.FontSize = a.num
	case KeyFontWeight:
		l.FontWeight = int(a.num)
	case KeyFontStyle:
		l.FontStyle = a.style
	case KeyColor:
		l.Color = a.color
	case KeyOpacity:
		l.Opacity = a.num
	case KeyStrokeColor:
		l.StrokeColor = a.color
	case KeyStrokeSize:
		l.StrokeSize = a.num
	case KeyStrokeOpacity:
		l.StrokeOpacity = a.num
	case KeyIsStroke:
		l.IsStroke = a.flag
	case KeyTop:
		l.Top = a.num
	case KeyLeft:
		l.Left = a.num
	case KeyRotation:
		l.Rotation = a.num
	case KeyZIndex:
		l.ZIndex = int(a.num)
	case KeyIsFront:
		l.IsFront = a.flag
	case KeyVisible:
		l.Visible = a.flag
	}
	return l
}

// Clamped 把字号、字重夹取到 [MinFontSize, MaxFontSize]、[MinWeight, MaxWeight]，
// 透明度夹取到 [0, 1]；其余属性原样返回。Store 不会自动调用它。
func (a Attribute) Clamped() Attribute {
	switch a.key {
	case KeyFontSize:
		a.num = min(max(a.num, MinFontSize), MaxFontSize)
	case KeyFontWeight:
		a.num = float64(min(max(int(a.num), MinWeight), MaxWeight))
	case KeyOpacity, KeyStrokeOpacity:
		a.num = clamp01(a.num)
	}
	return a
}

// ParseAttribute 把字符串形式的键值（场景文件、命令行）转换为类型化的赋值。
// 数值可以带 px、deg、% 后缀；布尔值接受 true/false/on/off/yes/no/1/0。
// 这里只做语法检查，不夹取范围。
func ParseAttribute(key, raw string) (Attribute, error) {
	k, err := ParseKey(key)
	if err != nil {
		return Attribute{}, err
	}
	raw = strings.TrimSpace(raw)
	switch k {
	case KeyText:
		return TextAttr(raw), nil
	case KeyFontFamily:
		return FontFamilyAttr(raw), nil
	case KeyFontStyle:
		s, err := ParseFontStyle(raw)
		if err != nil {
			return Attribute{}, err
		}
		return FontStyleAttr(s), nil
	case KeyColor, KeyStrokeColor:
		c, err := ParseColor(raw)
		if err != nil {
			return Attribute{}, fmt.Errorf("属性 %s: %w", k, err)
		}
		return Attribute{key: k, color: c}, nil
	case KeyIsStroke, KeyIsFront, KeyVisible:
		b, err := parseFlag(raw)
		if err != nil {
			return Attribute{}, fmt.Errorf("属性 %s: %w", k, err)
		}
		return Attribute{key: k, flag: b}, nil
	case KeyFontWeight, KeyZIndex:
		n, err := parseNumber(raw)
		if err != nil {
			return Attribute{}, fmt.Errorf("属性 %s: %w", k, err)
		}
		return Attribute{key: k, num: float64(int(n))}, nil
	default:
		n, err := parseNumber(raw)
		if err != nil {
			return Attribute{}, fmt.Errorf("属性 %s: %w", k, err)
		}
		return Attribute{key: k, num: n}, nil
	}
}

func parseNumber(raw string) (float64, error) {
	v := strings.ToLower(raw)
	for _, suf := range []string{"px", "deg", "%"} {
		if strings.HasSuffix(v, suf) {
			v = strings.TrimSpace(strings.TrimSuffix(v, suf))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("数值 %q 无法解析", raw)
	}
	return f, nil
}

func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("布尔值 %q 无法解析", raw)
	}
}
