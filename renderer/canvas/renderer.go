package canvasrenderer

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/textbehind/fonts"
	"github.com/ByLCY/textbehind/layer"
	"github.com/ByLCY/textbehind/layout"
	"github.com/ByLCY/textbehind/logging"
	"github.com/ByLCY/textbehind/renderer"
)

// DefaultShadowBlur 是 Shadow 样式的模糊半径（参照宽度下的布局像素）。
const DefaultShadowBlur = 10.0

// Renderer composites layers via github.com/tdewolff/canvas and rasterizes the result.
// It holds no per-render state and can be shared between goroutines.
type Renderer struct {
	fonts      *fonts.Catalog
	shadowBlur float64
	logger     *slog.Logger
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	Fonts      *fonts.Catalog // 为空时使用只含内置 Go 字体的目录
	ShadowBlur float64        // 为 0 时使用 DefaultShadowBlur
	Logger     *slog.Logger   // 为空时使用 logging.Logger()
}

// NewRenderer creates a canvas-based renderer.
func NewRenderer(opts Options) (*Renderer, error) {
	r := &Renderer{
		fonts:      opts.Fonts,
		shadowBlur: opts.ShadowBlur,
		logger:     opts.Logger,
	}
	if r.fonts == nil {
		catalog, err := fonts.NewCatalog()
		if err != nil {
			return nil, err
		}
		r.fonts = catalog
	}
	if r.shadowBlur <= 0 {
		r.shadowBlur = DefaultShadowBlur
	}
	if r.logger == nil {
		r.logger = logging.Logger()
	}
	return r, nil
}

// Render 按 照片 → 背面图层 → 抠图 → 正面图层 的顺序合成并栅格化。
func (r *Renderer) Render(comp renderer.Composition) (*image.RGBA, error) {
	c, err := r.Record(comp)
	if err != nil {
		return nil, err
	}
	return rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace), nil
}

// Record 把合成的全部绘制操作记录到一个 canvas.Canvas 中（画布单位 = 输出像素），
// 之后可以栅格化，也可以交给任意 canvas.Renderer 重放。
func (r *Renderer) Record(comp renderer.Composition) (*canvas.Canvas, error) {
	w, h := comp.Size()
	if comp.Photo == nil || w <= 0 || h <= 0 {
		return nil, renderer.ErrNoSurface
	}
	width, height := float64(w), float64(h)
	opts := layout.Options{ReferenceWidth: comp.ReferenceWidth}
	if opts.ReferenceWidth <= 0 {
		opts.ReferenceWidth = width
	}

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，y 向下，与布局空间一致

	drawSurface(ctx, comp.Photo, w, h)

	back, front := layer.Partition(comp.Layers)
	for _, l := range back {
		if err := r.drawLayer(ctx, l, layout.Project(l, width, height, opts)); err != nil {
			return nil, err
		}
	}
	if comp.Cutout != nil {
		drawSurface(ctx, comp.Cutout, w, h)
	}
	for _, l := range front {
		if err := r.drawLayer(ctx, l, layout.Project(l, width, height, opts)); err != nil {
			return nil, err
		}
	}
	r.logger.Debug("合成完成", "width", w, "height", h, "back", len(back), "front", len(front), "cutout", comp.Cutout != nil)
	return c, nil
}

func (r *Renderer) fontFace(l layer.TextLayer, sizePx float64) (*canvas.FontFace, error) {
	weight := l.FontWeight
	if w := l.FontStyle.WeightOverride(); w > 0 {
		weight = w
	}
	face, res, err := r.fonts.Face(l.FontFamily, weight, l.FontStyle.Italic(), layout.PxToPt(sizePx))
	if err != nil {
		return nil, fmt.Errorf("图层 %d 字体解析失败: %w", l.ID, err)
	}
	if res.Fallback {
		r.logger.Debug("字体回退", "layer", l.ID, "requested", l.FontFamily, "using", res.Family)
	}
	return face, nil
}
