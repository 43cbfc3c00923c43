package canvasrenderer

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/ByLCY/textbehind/layer"
	"github.com/ByLCY/textbehind/renderer"
)

var (
	photoColor  = color.RGBA{R: 20, G: 40, B: 120, A: 255}
	cutoutColor = color.RGBA{R: 30, G: 160, B: 60, A: 255}
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(Options{})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return r
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// leftHalf 返回左半边不透明、右半边全透明的抠图。
func leftHalf(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, image.Rect(0, 0, w/2, h), &image.Uniform{C: cutoutColor}, image.Point{}, draw.Src)
	return img
}

func hello() layer.TextLayer {
	l := layer.Default(1)
	l.Text = "HELLO"
	l.Color = layer.White
	return l
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func sameColor(a, b color.RGBA, tol int) bool {
	return near(a.R, b.R, tol) && near(a.G, b.G, tol) && near(a.B, b.B, tol) && near(a.A, b.A, tol)
}

func isWhite(c color.RGBA) bool { return c.R > 240 && c.G > 240 && c.B > 240 && c.A == 255 }

// whiteBounds 返回白色像素的包围盒与数量。
func whiteBounds(img *image.RGBA) (image.Rectangle, int) {
	var box image.Rectangle
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isWhite(img.RGBAAt(x, y)) {
				continue
			}
			p := image.Rect(x, y, x+1, y+1)
			if n == 0 {
				box = p
			} else {
				box = box.Union(p)
			}
			n++
		}
	}
	return box, n
}

func TestRenderNoSurface(t *testing.T) {
	r := newRenderer(t)
	if _, err := r.Render(renderer.Composition{}); !errors.Is(err, renderer.ErrNoSurface) {
		t.Fatalf("缺少照片时期望 ErrNoSurface, got %v", err)
	}
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := r.Render(renderer.Composition{Photo: empty}); !errors.Is(err, renderer.ErrNoSurface) {
		t.Fatalf("空照片时期望 ErrNoSurface, got %v", err)
	}
}

// TestHelloCentredBehindCutout 白色 HELLO 以 (500,500) 为中心，被左半边的抠图完全遮住。
func TestHelloCentredBehindCutout(t *testing.T) {
	r := newRenderer(t)
	photo := solid(1000, 1000, photoColor)

	bare, err := r.Render(renderer.Composition{Photo: photo, Layers: []layer.TextLayer{hello()}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if bare.Bounds().Dx() != 1000 || bare.Bounds().Dy() != 1000 {
		t.Fatalf("输出尺寸应为照片原始尺寸, got %v", bare.Bounds())
	}
	box, n := whiteBounds(bare)
	if n < 500 {
		t.Fatalf("白色字形像素过少: %d", n)
	}
	cx, cy := (box.Min.X+box.Max.X)/2, (box.Min.Y+box.Max.Y)/2
	if math.Abs(float64(cx-500)) > 15 || math.Abs(float64(cy-500)) > 15 {
		t.Fatalf("字形中心偏离 (500,500): box=%v", box)
	}

	withCutout, err := r.Render(renderer.Composition{Photo: photo, Cutout: leftHalf(1000, 1000), Layers: []layer.TextLayer{hello()}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < 490; x++ {
			if got := withCutout.RGBAAt(x, y); !sameColor(got, cutoutColor, 2) {
				t.Fatalf("(%d,%d) 应被抠图覆盖, got %v", x, y, got)
			}
		}
	}
	if _, right := whiteBounds(withCutout); right == 0 {
		t.Fatalf("抠图透明区域中应仍可见文字")
	}
}

func TestFrontLayerAboveCutout(t *testing.T) {
	r := newRenderer(t)
	l := hello()
	l.IsFront = true
	img, err := r.Render(renderer.Composition{Photo: solid(1000, 1000, photoColor), Cutout: leftHalf(1000, 1000), Layers: []layer.TextLayer{l}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	box, n := whiteBounds(img)
	if n == 0 || box.Min.X >= 500 {
		t.Fatalf("正面图层应画在抠图之上: box=%v n=%d", box, n)
	}
}

// TestEmptyLayersEqualsPhotoAndCutout 没有图层时输出就是照片叠加抠图。
func TestEmptyLayersEqualsPhotoAndCutout(t *testing.T) {
	r := newRenderer(t)
	photo := solid(64, 48, photoColor)
	cutout := leftHalf(64, 48)
	hidden := hello()
	hidden.Visible = false

	got, err := r.Render(renderer.Composition{Photo: photo, Cutout: cutout, Layers: []layer.TextLayer{hidden}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := image.NewRGBA(photo.Bounds())
	draw.Draw(want, want.Bounds(), photo, image.Point{}, draw.Src)
	draw.Draw(want, want.Bounds(), cutout, image.Point{}, draw.Over)
	// 跳过边框与抠图接缝处可能存在的插值像素
	for y := 1; y < 47; y++ {
		for x := 1; x < 63; x++ {
			if x == 31 || x == 32 {
				continue
			}
			if !sameColor(got.RGBAAt(x, y), want.RGBAAt(x, y), 2) {
				t.Fatalf("(%d,%d) got %v want %v", x, y, got.RGBAAt(x, y), want.RGBAAt(x, y))
			}
		}
	}
}

// TestStrokeToggleLeavesFillIdentical 打开再关闭描边后，输出与从未开启描边完全一致。
func TestStrokeToggleLeavesFillIdentical(t *testing.T) {
	r := newRenderer(t)
	photo := solid(400, 200, photoColor)

	s := layer.NewStore()
	l := s.Create()
	s.Set(l.ID, layer.TextAttr("HELLO"), layer.ColorAttr(layer.White), layer.FontSizeAttr(60),
		layer.StrokeSizeAttr(4), layer.StrokeColorAttr(layer.Color{R: 0xFF}), layer.StrokeOpacityAttr(1))
	plain, err := r.Render(renderer.Composition{Photo: photo, Layers: s.Layers()})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	s.ToggleStroke(l.ID, true)
	stroked, err := r.Render(renderer.Composition{Photo: photo, Layers: s.Layers()})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	red := 0
	for i := 0; i < len(stroked.Pix); i += 4 {
		if stroked.Pix[i] > 200 && stroked.Pix[i+1] < 60 && stroked.Pix[i+2] < 60 {
			red++
		}
	}
	if red == 0 {
		t.Fatalf("描边开启后应出现红色像素")
	}

	s.ToggleStroke(l.ID, false)
	again, err := r.Render(renderer.Composition{Photo: photo, Layers: s.Layers()})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if string(again.Pix) != string(plain.Pix) {
		t.Fatalf("关闭描边后像素与从未开启时不一致")
	}
}

func TestPreviewSurfaceResamples(t *testing.T) {
	r := newRenderer(t)
	photo := solid(200, 100, photoColor)
	img, err := r.Render(renderer.Composition{Photo: photo, Width: 100, Height: 50, ReferenceWidth: 200, Layers: []layer.TextLayer{hello()}})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Fatalf("预览尺寸不符: %v", img.Bounds())
	}
	if got := img.RGBAAt(2, 2); !sameColor(got, photoColor, 2) {
		t.Fatalf("缩放后的照片颜色不符: %v", got)
	}
}

// TestEveryStyleRenders 每一种字体样式都能完成渲染，并且都有对应的配方。
func TestEveryStyleRenders(t *testing.T) {
	r := newRenderer(t)
	photo := solid(300, 150, photoColor)
	for _, style := range layer.FontStyles() {
		if _, ok := recipes[style]; !ok {
			t.Fatalf("样式 %v 缺少配方", style)
		}
		l := hello()
		l.FontSize = 40
		l.FontStyle = style
		l.Rotation = 15
		img, err := r.Render(renderer.Composition{Photo: photo, Layers: []layer.TextLayer{l}})
		if err != nil {
			t.Fatalf("样式 %v 渲染失败: %v", style, err)
		}
		if _, n := whiteBounds(img); n == 0 && style != layer.StyleOutline {
			t.Fatalf("样式 %v 没有画出文字", style)
		}
		l.IsStroke = true
		if _, err := r.Render(renderer.Composition{Photo: photo, Layers: []layer.TextLayer{l}}); err != nil {
			t.Fatalf("样式 %v 带描边渲染失败: %v", style, err)
		}
	}
}

func TestUnknownStyleIsError(t *testing.T) {
	r := newRenderer(t)
	l := hello()
	l.FontStyle = layer.FontStyle(99)
	if _, err := r.Render(renderer.Composition{Photo: solid(10, 10, photoColor), Layers: []layer.TextLayer{l}}); err == nil {
		t.Fatalf("未知样式应当报错")
	}
}
