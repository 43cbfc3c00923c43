// Package scene 把场景文件（dsl）构建成照片来源与一组文字图层。
//
// 场景文件示例：
//
//	scene Poster v1 {
//	  source { photo: "beach.jpg"; segment: "rembg i {in} {out}" }
//	  palette { sun: #F9DB43 }
//	  style Title { fontSize: 240; fontWeight: 900; color: sun }
//	  layer Title back stroke { "HELLO ${user.name}"; top: -10 }
//	}
package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/textbehind/binding"
	"github.com/ByLCY/textbehind/dsl"
	"github.com/ByLCY/textbehind/layer"
	"github.com/ByLCY/textbehind/layout"
	"github.com/ByLCY/textbehind/logging"
)

// Source 描述照片与抠图的来源。路径已经相对 BaseDir 解析。
type Source struct {
	Photo   string
	Cutout  string
	Segment string
	Data    string
	Fonts   []string
}

// Scene 是构建结果。
type Scene struct {
	Name    string
	Version string
	Source  Source
	Layers  []layer.TextLayer

	// Missing 记录文字中没有解析到数据、也没有默认值的 ${path}。
	Missing []string
}

// Options 控制场景构建。
type Options struct {
	// Data 用于 ${path} 插值；为 nil 时尝试读取 source.data 指向的 JSON 文件。
	Data any

	// BaseDir 是 source 中相对路径的基准目录。
	BaseDir string
}

type style struct {
	Name    string
	Extends string
	Props   map[string]string
	Line    int
}

// Load 读取并构建场景文件，BaseDir 为空时使用文件所在目录。
func Load(path string, opts Options) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开场景文件失败: %w", err)
	}
	defer f.Close()

	doc, err := dsl.Parse(path, f)
	if err != nil {
		return nil, fmt.Errorf("解析场景文件失败: %w", err)
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	return Build(doc, opts)
}

// Build 根据 AST 生成场景。图层按文件中的顺序创建，id 从 1 开始。
func Build(doc *dsl.Document, opts Options) (*Scene, error) {
	if doc == nil {
		return nil, fmt.Errorf("场景为空")
	}
	sc := &Scene{Name: doc.Name, Version: doc.Version}

	palette := map[string]string{}
	rawStyles := map[string]style{}
	for _, section := range doc.Sections {
		switch {
		case section.Source != nil:
			src, err := parseSource(section.Source.Block, opts.BaseDir)
			if err != nil {
				return nil, err
			}
			sc.Source = src
		case section.Palette != nil:
			if err := collectPalette(section.Palette.Block, palette); err != nil {
				return nil, err
			}
		case section.Style != nil:
			st := parseStyle(section.Style)
			if _, dup := rawStyles[st.Name]; dup {
				return nil, fmt.Errorf("第 %d 行: style %s 重复定义", st.Line, st.Name)
			}
			rawStyles[st.Name] = st
		}
	}

	styles, err := resolveStyles(rawStyles)
	if err != nil {
		return nil, err
	}

	data := opts.Data
	if data == nil && sc.Source.Data != "" {
		if data, err = readData(sc.Source.Data); err != nil {
			return nil, err
		}
	}

	b := &builder{
		store:   layer.NewStore(),
		styles:  styles,
		palette: palette,
		data:    data,
	}
	for _, section := range doc.Sections {
		if section.Layer == nil {
			continue
		}
		if err := b.addLayer(section.Layer); err != nil {
			return nil, err
		}
	}
	sc.Layers = b.store.Layers()
	sc.Missing = b.missing
	if len(sc.Missing) > 0 {
		logging.Logger().Warn("场景文字中存在未解析的数据路径", "scene", sc.Name, "paths", sc.Missing)
	}
	return sc, nil
}

type builder struct {
	store   *layer.Store
	styles  map[string]style
	palette map[string]string
	data    any
	missing []string
}

func (b *builder) addLayer(sec *dsl.LayerSection) error {
	line := sec.Pos.Line
	styleName, flags, err := b.parseArgs(sec.Args)
	if err != nil {
		return err
	}

	props := map[string]string{}
	if styleName != "" {
		for k, v := range b.styles[styleName].Props {
			props[k] = v
		}
	}
	if sec.Block != nil {
		for _, stmt := range sec.Block.Statements {
			if stmt.Assignment != nil {
				props[stmt.Assignment.Key] = stmt.Assignment.Value.Raw()
			}
		}
	}
	if text := extractText(sec.Block); text != "" {
		props["text"] = text
	}

	attrs, err := b.attributes(props, line)
	if err != nil {
		return err
	}
	attrs = append(attrs, flags...)

	l := b.store.Create()
	b.store.Set(l.ID, attrs...)
	return nil
}

// 参数依次为可选的 style 名与若干开关：front、back、hidden、visible、stroke、nostroke。
func (b *builder) parseArgs(args []*dsl.Lexeme) (string, []layer.Attribute, error) {
	var styleName string
	var flags []layer.Attribute
	for i, arg := range args {
		switch strings.ToLower(arg.Value) {
		case "front":
			flags = append(flags, layer.IsFrontAttr(true), layer.ZIndexAttr(1))
			continue
		case "back":
			flags = append(flags, layer.IsFrontAttr(false), layer.ZIndexAttr(0))
			continue
		case "hidden":
			flags = append(flags, layer.VisibleAttr(false))
			continue
		case "visible":
			flags = append(flags, layer.VisibleAttr(true))
			continue
		case "stroke":
			flags = append(flags, layer.IsStrokeAttr(true))
			continue
		case "nostroke":
			flags = append(flags, layer.IsStrokeAttr(false))
			continue
		}
		if i == 0 && arg.Type == "Ident" {
			if _, ok := b.styles[arg.Value]; !ok {
				return "", nil, fmt.Errorf("第 %d 行: style %s 未定义", arg.Pos.Line, arg.Value)
			}
			styleName = arg.Value
			continue
		}
		return "", nil, fmt.Errorf("第 %d 行: 无法识别的 layer 参数 %s", arg.Pos.Line, arg.Raw)
	}
	return styleName, flags, nil
}

func (b *builder) attributes(props map[string]string, line int) ([]layer.Attribute, error) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]layer.Attribute, 0, len(keys))
	for _, k := range keys {
		raw := props[k]
		key, err := layer.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		switch key {
		case layer.KeyText:
			b.noteMissing(raw)
			raw = binding.Interpolate(raw, b.data)
		case layer.KeyColor, layer.KeyStrokeColor:
			if hex, ok := b.palette[raw]; ok {
				raw = hex
			}
		case layer.KeyFontSize, layer.KeyStrokeSize:
			// 图层尺寸以像素保存，pt 在这里换算。
			if l, ok := layout.ParseLength(raw); ok && l.Unit == layout.UnitPT {
				raw = strconv.FormatFloat(l.PX(), 'f', -1, 64)
				logging.Logger().Debug("字号单位换算", "key", k, "from", l.String(), "px", raw)
			}
		}
		attr, err := layer.ParseAttribute(k, raw)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		attrs = append(attrs, attr.Clamped())
	}
	return attrs, nil
}

func (b *builder) noteMissing(text string) {
	for _, p := range binding.Missing(text, b.data) {
		dup := false
		for _, seen := range b.missing {
			if seen == p {
				dup = true
				break
			}
		}
		if !dup {
			b.missing = append(b.missing, p)
		}
	}
}

func parseSource(block *dsl.Block, baseDir string) (Source, error) {
	var src Source
	if block == nil {
		return src, nil
	}
	for _, stmt := range block.Statements {
		a := stmt.Assignment
		if a == nil {
			continue
		}
		switch a.Key {
		case "photo":
			src.Photo = resolvePath(baseDir, a.Value.Raw())
		case "cutout":
			src.Cutout = resolvePath(baseDir, a.Value.Raw())
		case "segment":
			src.Segment = a.Value.Raw()
		case "data":
			src.Data = resolvePath(baseDir, a.Value.Raw())
		case "fonts":
			for _, p := range a.Value.Strings() {
				src.Fonts = append(src.Fonts, resolvePath(baseDir, p))
			}
		default:
			return src, fmt.Errorf("第 %d 行: source 不支持字段 %s", a.Pos.Line, a.Key)
		}
	}
	return src, nil
}

func collectPalette(block *dsl.Block, palette map[string]string) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		a := stmt.Assignment
		if a == nil {
			continue
		}
		raw := a.Value.Raw()
		if _, err := layer.ParseColor(raw); err != nil {
			return fmt.Errorf("第 %d 行: palette %s: %w", a.Pos.Line, a.Key, err)
		}
		palette[a.Key] = raw
	}
	return nil
}

func parseStyle(sec *dsl.StyleSection) style {
	st := style{
		Name:    sec.Name,
		Extends: sec.Extends,
		Props:   map[string]string{},
		Line:    sec.Pos.Line,
	}
	if sec.Block == nil {
		return st
	}
	for _, stmt := range sec.Block.Statements {
		if stmt.Assignment != nil {
			st.Props[stmt.Assignment.Key] = stmt.Assignment.Value.Raw()
		}
	}
	if text := extractText(sec.Block); text != "" {
		st.Props["text"] = text
	}
	return st
}

func resolveStyles(styles map[string]style) (map[string]style, error) {
	resolved := map[string]style{}
	visiting := map[string]bool{}

	var dfs func(name string) (style, error)
	dfs = func(name string) (style, error) {
		if st, ok := resolved[name]; ok {
			return st, nil
		}
		st, ok := styles[name]
		if !ok {
			return style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if st.Extends != "" {
			parent, err := dfs(st.Extends)
			if err != nil {
				return style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range st.Props {
			props[k] = v
		}
		st.Props = props
		resolved[name] = st
		delete(visiting, name)
		return st, nil
	}

	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

func resolvePath(baseDir, p string) string {
	if p == "" || baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func readData(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析数据文件 %s 失败: %w", path, err)
	}
	return data, nil
}
