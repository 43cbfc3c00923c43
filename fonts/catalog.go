// Package fonts 管理可用的字体族，并把图层的 (family, weight, italic) 解析为 canvas 字体面。
package fonts

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
)

// ErrNoFallback 表示请求的字体族不存在，且回退字体族也不可用。
var ErrNoFallback = errors.New("没有可用的回退字体")

// Catalog 是按名称索引的字体族集合，可以并发使用。
type Catalog struct {
	mu       sync.Mutex
	families map[string]*familyEntry // 以小写名称为键
	fallback string
}

type faceKey struct {
	weight int
	italic bool
}

type familyEntry struct {
	name   string
	family *canvas.FontFamily
	loaded map[faceKey]bool
}

// Resolved 描述一次解析的结果：实际使用的字体族与字形。
type Resolved struct {
	Family   string
	Weight   int
	Italic   bool
	Fallback bool // 请求的字体族不存在，使用了回退字体族
}

// NewCatalog 返回只包含内置 Go 字体族的目录，回退字体族为 "Go"。
func NewCatalog() (*Catalog, error) {
	c := &Catalog{families: map[string]*familyEntry{}, fallback: FamilyGo}
	for _, f := range builtinFaces {
		if err := c.Register(f.family, f.weight, f.italic, f.data); err != nil {
			return nil, fmt.Errorf("加载内置字体失败: %w", err)
		}
	}
	return c, nil
}

// Register 把一份字体数据登记到 family 下的指定字重与斜体。重复登记时后者覆盖前者。
func (c *Catalog) Register(family string, weight int, italic bool, data []byte) error {
	name := strings.TrimSpace(family)
	if name == "" {
		return fmt.Errorf("字体族名称为空")
	}
	weight = bucketWeight(weight)
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(name)
	entry, ok := c.families[key]
	if !ok {
		entry = &familyEntry{name: name, family: canvas.NewFontFamily(name), loaded: map[faceKey]bool{}}
	}
	if err := entry.family.LoadFont(data, 0, canvasStyle(weight, italic)); err != nil {
		return fmt.Errorf("加载字体 %s %d 失败: %w", name, weight, err)
	}
	entry.loaded[faceKey{weight, italic}] = true
	c.families[key] = entry
	return nil
}

// RegisterFile 从字体文件登记字形。字体族与字形由文件名推断：
// "Inter-BoldItalic.ttf" 登记为 Inter / 700 / italic，没有后缀的文件视为 Regular。
func (c *Catalog) RegisterFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	family, weight, italic := parseFontFileName(filepath.Base(path))
	return c.Register(family, weight, italic, data)
}

// RegisterDir 登记目录（不递归）下全部 .ttf/.otf/.woff/.woff2 文件，返回成功登记的数量。
func (c *Catalog) RegisterDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("读取字体目录 %s 失败: %w", dir, err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !isFontFile(e.Name()) {
			continue
		}
		if err := c.RegisterFile(filepath.Join(dir, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// SetFallback 指定回退字体族，它必须已经登记。
func (c *Catalog) SetFallback(family string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.families[strings.ToLower(strings.TrimSpace(family))]; !ok {
		return fmt.Errorf("回退字体族 %s 未登记", family)
	}
	c.fallback = family
	return nil
}

// Families 按名称排序返回已登记的字体族。
func (c *Catalog) Families() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.families))
	for _, e := range c.families {
		out = append(out, e.name)
	}
	sort.Strings(out)
	return out
}

// Face 返回 sizePt 点大小的字体面。找不到字体族时使用回退字体族；
// 找不到精确字重时选择最接近的已登记字形。
func (c *Catalog) Face(family string, weight int, italic bool, sizePt float64) (*canvas.FontFace, Resolved, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, fellBack := c.families[strings.ToLower(strings.TrimSpace(family))], false
	if entry == nil {
		entry = c.families[strings.ToLower(c.fallback)]
		fellBack = true
	}
	if entry == nil || len(entry.loaded) == 0 {
		return nil, Resolved{}, fmt.Errorf("字体族 %s: %w", family, ErrNoFallback)
	}
	key := nearest(entry.loaded, faceKey{bucketWeight(weight), italic})
	face := entry.family.Face(sizePt, color.Black, canvasStyle(key.weight, key.italic), canvas.FontNormal)
	return face, Resolved{Family: entry.name, Weight: key.weight, Italic: key.italic, Fallback: fellBack}, nil
}

// nearest 优先匹配斜体，再选字重差最小者；差值相同时，目标 ≥500 取较重的，否则取较轻的。
func nearest(loaded map[faceKey]bool, want faceKey) faceKey {
	best, bestScore := faceKey{}, -1
	for k := range loaded {
		score := abs(k.weight - want.weight)
		if k.italic != want.italic {
			score += 1000
		}
		better := bestScore < 0 || score < bestScore
		if !better && score == bestScore {
			if want.weight >= 500 {
				better = k.weight > best.weight
			} else {
				better = k.weight < best.weight
			}
		}
		if better {
			best, bestScore = k, score
		}
	}
	return best
}

func canvasStyle(weight int, italic bool) canvas.FontStyle {
	var style canvas.FontStyle
	switch {
	case weight <= 350:
		style = canvas.FontLight
	case weight <= 450:
		style = canvas.FontRegular
	case weight <= 550:
		style = canvas.FontMedium
	case weight <= 650:
		style = canvas.FontSemiBold
	case weight <= 750:
		style = canvas.FontBold
	case weight <= 850:
		style = canvas.FontExtraBold
	default:
		style = canvas.FontBlack
	}
	if italic {
		style |= canvas.FontItalic
	}
	return style
}

// parseFontFileName 从 "Family-StyleSuffix.ext" 推断字体族、字重与斜体。
func parseFontFileName(name string) (family string, weight int, italic bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	family, suffix := base, ""
	if i := strings.LastIndexAny(base, "-_"); i > 0 {
		family, suffix = base[:i], base[i+1:]
	}
	weight, italic, ok := parseStyleSuffix(suffix)
	if !ok {
		// 后缀不是样式名（例如 "Open_Sans"），整个文件名就是族名
		return base, 400, false
	}
	return family, weight, italic
}

func parseStyleSuffix(suffix string) (weight int, italic bool, ok bool) {
	s := strings.ToLower(suffix)
	if s == "" {
		return 400, false, true
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		italic = true
		s = strings.NewReplacer("italic", "", "oblique", "").Replace(s)
	}
	switch s {
	case "thin", "hairline":
		weight = 100
	case "extralight", "ultralight":
		weight = 200
	case "light":
		weight = 300
	case "", "regular", "normal", "book":
		weight = 400
	case "medium":
		weight = 500
	case "semibold", "demibold":
		weight = 600
	case "bold":
		weight = 700
	case "extrabold", "ultrabold":
		weight = 800
	case "black", "heavy":
		weight = 900
	default:
		return 0, false, false
	}
	return weight, italic, true
}

func isFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf", ".woff", ".woff2":
		return true
	}
	return false
}

// bucketWeight 把数值字重归并到 canvas 能区分的档位（300..900，步长 100）。
func bucketWeight(w int) int {
	switch {
	case w <= 0:
		return 400
	case w <= 350:
		return 300
	case w >= 850:
		return 900
	}
	return (w + 50) / 100 * 100
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
