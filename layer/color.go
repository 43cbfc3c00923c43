package layer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color 采用 0-255 的不透明 RGB 数值，透明度由图层的 opacity 字段单独控制。
// JSON 中以 #rrggbb 字符串出现（见 MarshalText）。
type Color struct {
	R, G, B uint8
}

var (
	White = Color{R: 255, G: 255, B: 255}
	Black = Color{}
)

// Hex 返回 #rrggbb 形式。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

// RGBA 返回预乘 alpha 后的颜色，alpha 取值 [0,1]，超出部分被截断。
func (c Color) RGBA(alpha float64) color.RGBA {
	a := clamp01(alpha)
	return color.RGBA{
		R: uint8(float64(c.R)*a + 0.5),
		G: uint8(float64(c.G)*a + 0.5),
		B: uint8(float64(c.B)*a + 0.5),
		A: uint8(255*a + 0.5),
	}
}

// ParseColor 支持 #rgb、#rrggbb、#rrggbbaa（忽略 alpha）以及 CSS 颜色名（white、red ...）。
func ParseColor(value string) (Color, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return Color{}, fmt.Errorf("颜色值为空")
	}
	if !strings.HasPrefix(v, "#") {
		if named, ok := colornames.Map[strings.ToLower(v)]; ok {
			return Color{R: named.R, G: named.G, B: named.B}, nil
		}
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	hex := v[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	case 8:
		hex = hex[:6]
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// MarshalText 输出 #rrggbb。
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText 接受 ParseColor 支持的全部写法。
func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
