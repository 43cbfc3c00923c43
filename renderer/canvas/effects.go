package canvasrenderer

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/textbehind/layer"
	"github.com/ByLCY/textbehind/layout"
)

// recipe 描述一种字体样式在基础绘制（填充 + 可选描边）之上的附加效果。
// 字重与斜体已在选择字体面时处理，这里只关心几何与装饰。
type recipe struct {
	transform func(string) string
	size      float64 // 字号系数，0 视为 1
	shift     float64 // 基线偏移（em），负值向上
	scaleX    float64 // 水平缩放，0 视为 1

	underline bool
	strike    bool
	shadow    bool
	outline   bool // 只描轮廓，不填充
	highlight bool // 在文字后方绘制底色条
}

// recipes 覆盖 layer.FontStyles() 的每一项。
var recipes = map[layer.FontStyle]recipe{
	layer.StyleNormal:        {},
	layer.StyleItalic:        {},
	layer.StyleOblique:       {},
	layer.StyleBold:          {},
	layer.StyleLight:         {},
	layer.StyleMedium:        {},
	layer.StyleSmallCaps:     {transform: strings.ToUpper, size: 0.8},
	layer.StyleAllCaps:       {transform: strings.ToUpper},
	layer.StyleUnderline:     {underline: true},
	layer.StyleStrikethrough: {strike: true},
	layer.StyleCondensed:     {scaleX: 0.8},
	layer.StyleExpanded:      {scaleX: 1.2},
	layer.StyleShadow:        {shadow: true},
	layer.StyleOutline:       {outline: true},
	layer.StyleSuperscript:   {size: 0.6, shift: -0.35},
	layer.StyleSubscript:     {size: 0.6, shift: 0.2},
	layer.StyleHighlight:     {highlight: true},
	layer.StyleRaised:        {shift: -0.15},
	layer.StyleLowered:       {shift: 0.15},
}

const (
	shadowRings      = 3
	shadowDirections = 8
	shadowAlpha      = 0.08
	highlightPadding = 0.1 // em
)

// glyphs 是一个图层在本地坐标系（y 向下，原点为锚点）中的字形轮廓与度量。
type glyphs struct {
	path     *canvas.Path
	width    float64
	em       float64
	ascent   float64
	descent  float64
	baseline float64 // 基线相对原点的 y，使 em 框垂直居中
}

// drawLayer 在当前上下文上绘制一个图层：平移到投影点、旋转，再按配方依次
// 绘制 底色条 → 填充 → 下划线/删除线 → 阴影与二次填充 → 描边。
// 状态在所有返回路径上都会恢复。
func (r *Renderer) drawLayer(ctx *canvas.Context, l layer.TextLayer, p layout.Projection) error {
	rec, ok := recipes[l.FontStyle]
	if !ok {
		return fmt.Errorf("图层 %d 的字体样式 %v 无法渲染", l.ID, l.FontStyle)
	}
	text := l.Text
	if rec.transform != nil {
		text = rec.transform(text)
	}
	if text == "" {
		return nil
	}

	sizePx := l.FontSize * p.Scale * orOne(rec.size)
	g, err := r.shape(l, text, sizePx)
	if err != nil {
		return err
	}

	ctx.Push()
	defer ctx.Pop()

	ctx.Translate(p.X, p.Y)
	ctx.Rotate(p.Degrees()) // CartesianIV 下正角度在屏幕上为顺时针
	if rec.shift != 0 {
		ctx.Translate(0, rec.shift*g.em/orOne(rec.size))
	}
	if sx := orOne(rec.scaleX); sx != 1 {
		ctx.Scale(sx, 1)
	}

	fill := l.Color.RGBA(l.Opacity)

	if rec.highlight {
		pad := highlightPadding * g.em
		band := canvas.Rectangle(g.width+2*pad, g.ascent+g.descent)
		fillOnly(ctx, l.StrokeColor.RGBA(l.StrokeOpacity))
		ctx.DrawPath(-g.width/2-pad, -(g.ascent+g.descent)/2, band)
	}

	paintGlyphs := func(dx, dy float64, col color.RGBA) {
		if rec.outline {
			strokeOnly(ctx, col, math.Max(1, g.em/30))
		} else {
			fillOnly(ctx, col)
		}
		ctx.DrawPath(dx, dy, g.path)
	}

	paintGlyphs(0, 0, fill)

	if rec.underline || rec.strike {
		thickness := math.Max(1, g.em/20)
		bar := canvas.Rectangle(g.width, thickness)
		fillOnly(ctx, fill)
		if rec.underline {
			ctx.DrawPath(-g.width/2, g.baseline+0.1*g.em-thickness/2, bar)
		}
		if rec.strike {
			ctx.DrawPath(-g.width/2, -thickness/2, bar)
		}
	}

	if rec.shadow {
		radius := r.shadowBlur * p.Scale
		shade := l.Color.RGBA(l.Opacity * shadowAlpha)
		for ring := 1; ring <= shadowRings; ring++ {
			d := radius * float64(ring) / shadowRings
			for k := 0; k < shadowDirections; k++ {
				a := 2 * math.Pi * float64(k) / shadowDirections
				paintGlyphs(d*math.Cos(a), d*math.Sin(a), shade)
			}
		}
		paintGlyphs(0, 0, fill)
	}

	if l.StrokePass() {
		strokeOnly(ctx, l.StrokeColor.RGBA(l.StrokeOpacity), l.StrokeSize*p.Scale)
		ctx.DrawPath(0, 0, g.path)
	}
	return nil
}

// shape 生成居中的字形轮廓：水平方向以文本宽度居中，垂直方向以 em 框居中（middle baseline）。
func (r *Renderer) shape(l layer.TextLayer, text string, sizePx float64) (glyphs, error) {
	face, err := r.fontFace(l, sizePx)
	if err != nil {
		return glyphs{}, err
	}
	path, width, err := face.ToPath(text)
	if err != nil {
		return glyphs{}, fmt.Errorf("生成图层 %d 字形失败: %w", l.ID, err)
	}
	m := face.Metrics()
	ascent, descent := math.Abs(m.Ascent), math.Abs(m.Descent)
	baseline := (ascent - descent) / 2
	// 字体轮廓为 y 向上，翻转到 y 向下的本地坐标系后再居中
	path = path.Transform(canvas.Identity.Translate(-width/2, baseline).ReflectY())
	return glyphs{
		path:     path,
		width:    width,
		em:       sizePx,
		ascent:   ascent,
		descent:  descent,
		baseline: baseline,
	}, nil
}

func fillOnly(ctx *canvas.Context, col color.Color) {
	ctx.SetFillColor(col)
	ctx.SetStrokeColor(canvas.Transparent)
}

func strokeOnly(ctx *canvas.Context, col color.Color, width float64) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(width)
	ctx.SetStrokeJoiner(canvas.RoundJoin)
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
